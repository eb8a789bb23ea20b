// Copyright 2026 The Gitzilla Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"io"
	"os"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	"github.com/nuclio/zap"
)

// NewLogger returns a logger writing to the configured logfile. Without
// one it logs to stderr when verbose, and nowhere otherwise. The returned
// closer releases the logfile.
func (c *Config) NewLogger(name string, verbose bool, stderr io.Writer) (logger.Logger, io.Closer, error) {
	logFile := stringValue(c.Site.LogFile, "")
	if logFile == "" {
		loggerInstance, err := NewStderrLogger(name, verbose, stderr)
		return loggerInstance, io.NopCloser(nil), err
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "Failed to open log file %s", logFile)
	}

	level := nucliozap.DebugLevel
	if stringValue(c.Site.LogLevel, "debug") == "info" {
		level = nucliozap.InfoLevel
	}

	loggerInstance, err := nucliozap.NewNuclioZap(name,
		"console",
		nucliozap.NewEncoderConfig(),
		file,
		file,
		level)
	if err != nil {
		file.Close()
		return nil, nil, errors.Wrap(err, "Failed to create logger")
	}
	return loggerInstance, file, nil
}

// NewStderrLogger returns a debug logger on stderr when verbose, or a
// logger that discards everything.
func NewStderrLogger(name string, verbose bool, stderr io.Writer) (logger.Logger, error) {
	if verbose {
		loggerInstance, err := nucliozap.NewNuclioZapCmd(name, nucliozap.DebugLevel, stderr)
		if err != nil {
			return nil, errors.Wrap(err, "Failed to create logger")
		}
		return loggerInstance, nil
	}

	loggerInstance, err := nucliozap.NewNuclioZap(name,
		"console",
		nucliozap.NewEncoderConfig(),
		io.Discard,
		io.Discard,
		nucliozap.ErrorLevel)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create logger")
	}
	return loggerInstance, nil
}
