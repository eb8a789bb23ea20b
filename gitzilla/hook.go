// Copyright 2026 The Gitzilla Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/gitzilla/gitzilla/internal/changes"
	"github.com/gitzilla/gitzilla/internal/hooks"
	"github.com/gitzilla/gitzilla/internal/tracker"

	"github.com/nuclio/errors"
	"github.com/spf13/cobra"
)

type postReceiveCommandeer struct {
	cmd            *cobra.Command
	rootCommandeer *rootCommandeer
}

func newPostReceiveCommandeer(rootCommandeer *rootCommandeer) *postReceiveCommandeer {
	commandeer := &postReceiveCommandeer{
		rootCommandeer: rootCommandeer,
	}

	cmd := &cobra.Command{
		Use:   "post-receive",
		Short: "Comment on referenced bugs (git post-receive hook)",
		Long: `Reads "<old> <new> <ref>" lines from stdin, as git passes them to the
post-receive hook, and adds each new commit as a comment to every bug
its message references. Failing to comment on one bug does not stop the
others.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootCommandeer.initialize(); err != nil {
				return errors.Wrap(err, "Failed to initialize root")
			}

			updates, err := hooks.ReadRefUpdates(rootCommandeer.stdin)
			if err != nil {
				return err
			}

			return commandeer.process(updates)
		},
	}

	commandeer.cmd = cmd

	return commandeer
}

func (c *postReceiveCommandeer) process(updates []changes.RefUpdate) error {
	rc := c.rootCommandeer

	credentials, err := rc.config.Credentials()
	if err != nil {
		return errors.Wrap(err, "Failed to resolve Bugzilla credentials")
	}

	resolver, extractor, err := rc.newPipeline(rc.config.FormatSpec())
	if err != nil {
		return err
	}

	receiver, err := hooks.NewReceiver(rc.loggerInstance,
		resolver,
		extractor,
		rc.trackerFactory(),
		credentials,
		rc.config.HookOptions())
	if err != nil {
		return err
	}

	return receiver.Process(updates)
}

type updateCommandeer struct {
	cmd            *cobra.Command
	rootCommandeer *rootCommandeer
}

func newUpdateCommandeer(rootCommandeer *rootCommandeer) *updateCommandeer {
	commandeer := &updateCommandeer{
		rootCommandeer: rootCommandeer,
	}

	cmd := &cobra.Command{
		Use:   "update <ref> <old> <new>",
		Short: "Refuse commits without valid bug references (git update hook)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootCommandeer.initialize(); err != nil {
				return errors.Wrap(err, "Failed to initialize root")
			}

			admitter, err := rootCommandeer.newAdmitter()
			if err != nil {
				return err
			}

			return admitter.Admit(changes.RefUpdate{
				RefName:     args[0],
				OldRevision: args[1],
				NewRevision: args[2],
			})
		},
	}

	commandeer.cmd = cmd

	return commandeer
}

type preReceiveCommandeer struct {
	cmd            *cobra.Command
	rootCommandeer *rootCommandeer
}

func newPreReceiveCommandeer(rootCommandeer *rootCommandeer) *preReceiveCommandeer {
	commandeer := &preReceiveCommandeer{
		rootCommandeer: rootCommandeer,
	}

	cmd := &cobra.Command{
		Use:   "pre-receive",
		Short: "Refuse pushes without valid bug references (git pre-receive hook)",
		Long: `Reads "<old> <new> <ref>" lines from stdin, as git passes them to the
pre-receive hook, and refuses the whole push if any ref update would be
refused by the update hook.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootCommandeer.initialize(); err != nil {
				return errors.Wrap(err, "Failed to initialize root")
			}

			updates, err := hooks.ReadRefUpdates(rootCommandeer.stdin)
			if err != nil {
				return err
			}

			admitter, err := rootCommandeer.newAdmitter()
			if err != nil {
				return err
			}

			return admitter.AdmitAll(updates)
		},
	}

	commandeer.cmd = cmd

	return commandeer
}

// newAdmitter builds the admission check. Credentials are only resolved
// when bug statuses are checked. Commits are always formatted with the
// default format spec, so references in the body are never hidden by
// the formatspec setting.
func (rc *rootCommandeer) newAdmitter() (*hooks.Admitter, error) {
	options := rc.config.HookOptions()

	var credentials tracker.Credentials
	if options.StatusGating() {
		var err error

		credentials, err = rc.config.Credentials()
		if err != nil {
			return nil, errors.Wrap(err, "Failed to resolve Bugzilla credentials")
		}
	}

	resolver, extractor, err := rc.newPipeline("")
	if err != nil {
		return nil, err
	}

	return hooks.NewAdmitter(rc.loggerInstance,
		resolver,
		extractor,
		rc.trackerFactory(),
		credentials,
		options)
}
