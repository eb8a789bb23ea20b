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
	"github.com/samber/lo"
)

// Admitter decides whether ref updates may land. Any violation rejects
// the whole update; the first rejection ends the check.
type Admitter struct {
	logger        logger.Logger
	commitSource  CommitSource
	extractor     *bugref.Extractor
	tracker       tracker.Tracker
	options       Options
	authenticated bool
}

// NewAdmitter returns an Admitter. The tracker is only created, and
// credentials.URL only required, when options gate on bug status.
func NewAdmitter(parentLogger logger.Logger,
	commitSource CommitSource,
	extractor *bugref.Extractor,
	factory tracker.Factory,
	credentials tracker.Credentials,
	options Options) (*Admitter, error) {

	admitter := &Admitter{
		logger:       parentLogger.GetChild("admission"),
		commitSource: commitSource,
		extractor:    extractor,
		options:      options,
	}

	if !options.StatusGating() {
		return admitter, nil
	}

	if credentials.URL == "" {
		return nil, &ConfigurationError{Message: "Bugzilla info required for status checks"}
	}

	bugTracker, err := factory(credentials)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create tracker")
	}
	admitter.tracker = bugTracker

	return admitter, nil
}

// Admit returns nil if update may land, a *Rejection if policy refuses it,
// or any other error if it could not be checked.
func (a *Admitter) Admit(update changes.RefUpdate) error {
	a.logger.DebugWith("Checking ref update",
		"oldRevision", update.OldRevision,
		"newRevision", update.NewRevision,
		"refName", update.RefName)

	if update.IsDelete() {
		a.logger.DebugWith("Admitting ref deletion", "refName", update.RefName)
		return nil
	}

	if err := a.authenticate(); err != nil {
		return err
	}

	commits, err := a.commitSource.Resolve(update, a.options.RefPrefix, false)
	if err != nil {
		return errors.Wrapf(err, "Failed to resolve commits of %s", update.RefName)
	}

	for _, commit := range commits {
		if err := a.admitCommit(commit); err != nil {
			return err
		}
	}
	return nil
}

// AdmitAll checks updates in order and stops at the first one refused.
func (a *Admitter) AdmitAll(updates []changes.RefUpdate) error {
	for _, update := range updates {
		if err := a.Admit(update); err != nil {
			return err
		}
	}
	return nil
}

func (a *Admitter) authenticate() error {
	if a.tracker == nil || a.authenticated {
		return nil
	}

	if err := a.tracker.Authenticate(); err != nil {
		a.logger.ErrorWith("Could not login to Bugzilla", "err", errors.GetErrorStackString(err, 10))
		return newRejection(err, "Could not login to Bugzilla. Check your auth details and settings")
	}

	a.authenticated = true
	return nil
}

func (a *Admitter) admitCommit(commit changes.Commit) error {
	a.logger.DebugWith("Checking for bug refs in commit", "message", commit.Message)

	if _, found := a.extractor.First(commit.Message); !found {
		if !a.options.RequireBugRef {
			return nil
		}
		a.logger.WarnWith("No bug ref found in commit", "message", commit.Message)
		return newRejection(nil, "No bug ref found in commit:\n%s", commit.Message)
	}

	if !a.options.StatusGating() {
		return nil
	}

	for _, bugID := range a.extractor.All(commit.Message) {
		status, found, err := a.tracker.Status(bugID)
		if err != nil {
			a.logger.WarnWith("Could not get status for bug",
				"bugID", bugID,
				"err", errors.GetErrorStackString(err, 10))
			return newRejection(err, "Could not get status for bug %d", bugID)
		}
		if !found {
			return newRejection(nil, "Bug %d does not exist", bugID)
		}

		a.logger.DebugWith("Got bug status", "bugID", bugID, "status", status)

		if !lo.Contains(a.options.AllowedStatuses, status) {
			a.logger.InfoWith("Cannot accept commit for bug", "bugID", bugID, "status", status)
			return newRejection(nil, "Bug %d['%s'] is not in %s",
				bugID,
				status,
				formatStatuses(a.options.AllowedStatuses))
		}
	}
	return nil
}
