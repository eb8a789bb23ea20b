// Copyright 2026 The Gitzilla Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package changes

import "strings"

// Commit is one record of formatted log output.
type Commit struct {
	Message string
}

// Parse splits raw log output into commits, oldest first.
//
// git log prints newest first and separator precedes every record, so
// the fragment before the first separator is always empty and is dropped.
// An empty separator selects DefaultSeparator.
func Parse(raw, separator string) []Commit {
	if separator == "" {
		separator = DefaultSeparator
	}

	fragments := strings.Split(raw, separator)[1:]

	var commits []Commit
	for i := len(fragments) - 1; i >= 0; i-- {
		commits = append(commits, Commit{Message: fragments[i]})
	}
	return commits
}
