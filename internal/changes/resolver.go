// Copyright 2026 The Gitzilla Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package changes computes the commits a ref update introduces.
package changes

import (
	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

// ZeroRevision stands for a ref that did not exist before an update
// (old side) or no longer exists after it (new side).
const ZeroRevision = "0000000000000000000000000000000000000000"

// RefUpdate is one ref moving from OldRevision to NewRevision.
type RefUpdate struct {
	OldRevision string
	NewRevision string
	RefName     string
}

// IsCreate reports whether u creates its ref.
func (u RefUpdate) IsCreate() bool {
	return u.OldRevision == ZeroRevision
}

// IsDelete reports whether u deletes its ref.
func (u RefUpdate) IsDelete() bool {
	return u.NewRevision == ZeroRevision
}

// Range returns the revision range u introduces.
func (u RefUpdate) Range() string {
	switch {
	case u.IsCreate():
		return u.NewRevision
	case u.IsDelete():
		return u.OldRevision
	}
	return u.OldRevision + ".." + u.NewRevision
}

// Repository is what the resolver needs from version control.
type Repository interface {
	ListCommits(revisionRange string, excluded []string, format string, includeDiffStat bool) (string, error)
	ListOtherRefs(prefix, excluding string) ([]string, error)
	ResolveExcludedRanges(refs []string) ([]string, error)
}

// Resolver lists the commits of ref updates.
type Resolver struct {
	logger     logger.Logger
	repository Repository
	separator  string
	formatSpec string
}

// NewResolver returns a resolver formatting each commit with formatSpec.
// Empty separator or formatSpec select the defaults.
func NewResolver(parentLogger logger.Logger, repository Repository, separator, formatSpec string) *Resolver {
	if separator == "" {
		separator = DefaultSeparator
	}
	if formatSpec == "" {
		formatSpec = DefaultFormatSpec
	}
	return &Resolver{
		logger:     parentLogger.GetChild("resolver"),
		repository: repository,
		separator:  separator,
		formatSpec: NormalizeFormatSpec(formatSpec),
	}
}

// Resolve returns the commits update introduces, oldest first.
//
// When update names its ref and refPrefix is set, commits reachable from
// any other ref matching refPrefix are left out: they were already seen
// when that ref was pushed. The set of other refs is read afresh on
// every call.
func (r *Resolver) Resolve(update RefUpdate, refPrefix string, includeDiffStat bool) ([]Commit, error) {
	var excluded []string

	if update.RefName != "" && refPrefix != "" {
		otherRefs, err := r.repository.ListOtherRefs(refPrefix, update.RefName)
		if err != nil {
			return nil, errors.Wrap(err, "Failed to list other refs")
		}

		if len(otherRefs) > 0 {
			excluded, err = r.repository.ResolveExcludedRanges(otherRefs)
			if err != nil {
				return nil, errors.Wrap(err, "Failed to resolve excluded refs")
			}
		}
	}

	r.logger.DebugWith("Resolving commits",
		"range", update.Range(),
		"refName", update.RefName,
		"excluded", excluded)

	raw, err := r.repository.ListCommits(update.Range(), excluded, r.separator+r.formatSpec, includeDiffStat)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to list commits in %s", update.Range())
	}

	commits := Parse(raw, r.separator)

	r.logger.DebugWith("Resolved commits", "range", update.Range(), "count", len(commits))

	return commits, nil
}
