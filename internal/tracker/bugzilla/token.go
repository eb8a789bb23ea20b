// Copyright 2026 The Gitzilla Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bugzilla

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/nuclio/errors"
)

// DefaultTokenFile is where gencookie stores login tokens, one
// "<url>\t<token>" line per Bugzilla installation.
const DefaultTokenFile = "~/.gitzilla-token"

// LoadToken returns the token stored in file for the installation at u,
// or "" if there is none. A missing file is not an error.
func LoadToken(file, u string) (string, error) {
	path, err := homedir.Expand(file)
	if err != nil {
		return "", errors.Wrapf(err, "Failed to expand %s", file)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "Failed to read %s", path)
	}

	u = BaseURL(u)
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		f := strings.Split(strings.TrimSpace(line), "\t")
		if len(f) >= 2 && BaseURL(f[0]) == u {
			return strings.TrimSpace(f[1]), nil
		}
	}
	return "", nil
}

// SaveToken stores token for the installation at u in file, replacing any
// token already stored for it. The file is readable by its owner only.
func SaveToken(file, u, token string) error {
	path, err := homedir.Expand(file)
	if err != nil {
		return errors.Wrapf(err, "Failed to expand %s", file)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "Failed to read %s", path)
	}

	u = BaseURL(u)
	var kept []string
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		f := strings.Split(strings.TrimSpace(line), "\t")
		if len(f) >= 2 && BaseURL(f[0]) == u {
			continue
		}
		kept = append(kept, line)
	}
	kept = append(kept, u+"\t"+token)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "Failed to create directory for %s", path)
	}
	if err := os.WriteFile(path, []byte(strings.Join(kept, "\n")+"\n"), 0o600); err != nil {
		return errors.Wrapf(err, "Failed to write %s", path)
	}
	return nil
}
