// Copyright 2026 The Gitzilla Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hooks

import (
	"github.com/gitzilla/gitzilla/internal/bugref"
	"github.com/gitzilla/gitzilla/internal/changes"
	"github.com/gitzilla/gitzilla/internal/tracker"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

// Receiver posts each pushed commit as a comment on every bug it references.
// Posting is best effort: a failed comment is logged and the rest proceed.
type Receiver struct {
	logger       logger.Logger
	commitSource CommitSource
	extractor    *bugref.Extractor
	tracker      tracker.Tracker
	options      Options
}

// NewReceiver returns a Receiver for the tracker at credentials.URL,
// which must be set.
func NewReceiver(parentLogger logger.Logger,
	commitSource CommitSource,
	extractor *bugref.Extractor,
	factory tracker.Factory,
	credentials tracker.Credentials,
	options Options) (*Receiver, error) {

	if credentials.URL == "" {
		return nil, &ConfigurationError{Message: "a Bugzilla URL is required to post comments"}
	}

	bugTracker, err := factory(credentials)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create tracker")
	}

	return &Receiver{
		logger:       parentLogger.GetChild("receive"),
		commitSource: commitSource,
		extractor:    extractor,
		tracker:      bugTracker,
		options:      options,
	}, nil
}

// Process handles updates in order. It fails only if the tracker login
// or a commit listing fails; comment failures are logged.
func (r *Receiver) Process(updates []changes.RefUpdate) error {
	if err := r.tracker.Authenticate(); err != nil {
		return errors.Wrap(err, "Failed to authenticate to Bugzilla")
	}

	for _, update := range updates {
		if err := r.processUpdate(update); err != nil {
			return err
		}
	}
	return nil
}

func (r *Receiver) processUpdate(update changes.RefUpdate) error {
	r.logger.DebugWith("Processing ref update",
		"oldRevision", update.OldRevision,
		"newRevision", update.NewRevision,
		"refName", update.RefName)

	if update.IsDelete() {
		r.logger.DebugWith("Skipping ref deletion", "refName", update.RefName)
		return nil
	}

	commits, err := r.commitSource.Resolve(update, r.options.RefPrefix, r.options.IncludeDiffStat)
	if err != nil {
		return errors.Wrapf(err, "Failed to resolve commits of %s", update.RefName)
	}

	for _, commit := range commits {
		r.logger.DebugWith("Considering commit", "message", commit.Message)

		if _, found := r.extractor.First(commit.Message); !found {
			r.logger.InfoWith("Bug id not found in commit", "message", commit.Message)
			continue
		}

		for _, bugID := range r.extractor.All(commit.Message) {
			r.logger.DebugWith("Found bug id", "bugID", bugID)

			if err := r.tracker.AddComment(bugID, commit.Message); err != nil {
				r.logger.WarnWith("Could not add comment to bug",
					"bugID", bugID,
					"err", errors.GetErrorStackString(err, 10))
			}
		}
	}
	return nil
}
