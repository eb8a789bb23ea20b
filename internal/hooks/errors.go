// Copyright 2026 The Gitzilla Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hooks

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

const bannerRule = "======================================================================"

// ConfigurationError reports settings that cannot work together,
// found before any commit is looked at.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Message
}

// Rejection is a refused ref update. Message is shown to the pusher.
type Rejection struct {
	Message string
	Err     error
}

func newRejection(err error, format string, args ...interface{}) *Rejection {
	return &Rejection{Message: fmt.Sprintf(format, args...), Err: err}
}

func (r *Rejection) Error() string {
	return r.Message
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

// WriteBanner writes the rejection notice git relays to the pusher.
func WriteBanner(w io.Writer, message string, colorize bool) error {
	emphasis := color.New(color.FgRed, color.Bold)
	if colorize {
		emphasis.EnableColor()
	} else {
		emphasis.DisableColor()
	}

	var b strings.Builder
	b.WriteString("\n\n" + bannerRule + "\n")
	b.WriteString(emphasis.Sprint("Cannot accept commit.") + "\n\n")
	b.WriteString(message + "\n\n")
	b.WriteString(bannerRule + "\n\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// formatStatuses renders statuses the way rejection notices list them,
// e.g. ['NEW', 'ASSIGNED'].
func formatStatuses(statuses []string) string {
	quoted := make([]string, len(statuses))
	for i, status := range statuses {
		quoted[i] = "'" + status + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
