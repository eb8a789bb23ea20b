// Copyright 2026 The Gitzilla Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hooks

import (
	"bufio"
	"io"
	"strings"

	"github.com/gitzilla/gitzilla/internal/changes"

	"github.com/nuclio/errors"
)

// ReadRefUpdates parses the "<old> <new> <ref>" lines git feeds the
// post-receive and pre-receive hooks on stdin. Blank lines are ignored.
func ReadRefUpdates(r io.Reader) ([]changes.RefUpdate, error) {
	var updates []changes.RefUpdate

	scanner := bufio.NewScanner(r)
	for lineNumber := 1; scanner.Scan(); lineNumber++ {
		f := strings.Fields(scanner.Text())
		if len(f) == 0 {
			continue
		}
		if len(f) != 3 {
			return nil, errors.Errorf("Malformed ref update on line %d: %q", lineNumber, scanner.Text())
		}
		updates = append(updates, changes.RefUpdate{
			OldRevision: f[0],
			NewRevision: f[1],
			RefName:     f[2],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "Failed to read ref updates")
	}
	return updates, nil
}
