// Copyright 2026 The Gitzilla Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hooks implements what gitzilla does when git runs it as a
// server-side hook: Receiver comments on bugs after a push lands,
// Admitter decides whether a push may land at all.
package hooks

import (
	"github.com/gitzilla/gitzilla/internal/changes"
)

// CommitSource lists the commits a ref update introduces, oldest first.
type CommitSource interface {
	Resolve(update changes.RefUpdate, refPrefix string, includeDiffStat bool) ([]changes.Commit, error)
}

// Options are the resolved per-repository hook settings.
type Options struct {

	// RefPrefix limits exclusion of already-seen commits to refs under it.
	// Empty disables exclusion.
	RefPrefix string

	// IncludeDiffStat appends the changed files to posted comments.
	// Admission always checks the bare log message.
	IncludeDiffStat bool

	// RequireBugRef rejects commits that reference no bug
	RequireBugRef bool

	// AllowedStatuses, if not nil, is the set of bug statuses a
	// referenced bug must be in for its commit to be admitted
	AllowedStatuses []string
}

// StatusGating reports whether bug statuses are checked on admission.
func (o Options) StatusGating() bool {
	return o.AllowedStatuses != nil
}
