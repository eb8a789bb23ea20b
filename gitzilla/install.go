// Copyright 2026 The Gitzilla Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gitzilla/gitzilla/internal/config"
	"github.com/gitzilla/gitzilla/internal/vcs"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	"github.com/spf13/cobra"
)

var hookScript = `#!/bin/sh
exec gitzilla %s "$@"
`

type hooksCommandeer struct {
	cmd            *cobra.Command
	rootCommandeer *rootCommandeer
	preReceive     bool
}

func newHooksCommandeer(rootCommandeer *rootCommandeer) *hooksCommandeer {
	commandeer := &hooksCommandeer{
		rootCommandeer: rootCommandeer,
	}

	cmd := &cobra.Command{
		Use:   "hooks",
		Short: "Install the gitzilla hooks into the repository",
		Long: `Installs post-receive and update hooks that run gitzilla. With
--pre-receive, a pre-receive hook checks the whole push instead of the
update hook checking each ref. Existing hooks are never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loggerInstance, err := config.NewStderrLogger("gitzilla", rootCommandeer.verbose, rootCommandeer.stderr)
			if err != nil {
				return err
			}

			repo := rootCommandeer.repo
			if repo == "" {
				repo = "."
			}

			git, err := vcs.NewGit(loggerInstance, repo)
			if err != nil {
				return errors.Wrap(err, "Failed to open repository")
			}

			hooksDir, err := git.HooksDir()
			if err != nil {
				return err
			}

			return installHooks(loggerInstance, hooksDir, commandeer.hookFiles())
		},
	}

	cmd.Flags().BoolVar(&commandeer.preReceive, "pre-receive", false, "Check pushes in a pre-receive hook instead of an update hook")

	commandeer.cmd = cmd

	return commandeer
}

func (c *hooksCommandeer) hookFiles() []string {
	if c.preReceive {
		return []string{"post-receive", "pre-receive"}
	}
	return []string{"post-receive", "update"}
}

// installHooks writes a shim running gitzilla for each of hookFiles.
// Hooks already holding the shim are left alone. Any other existing
// hook is an error, reported after the rest are installed.
func installHooks(loggerInstance logger.Logger, hooksDir string, hookFiles []string) error {
	var existingHooks []string

	for _, hookFile := range hookFiles {
		filename := filepath.Join(hooksDir, hookFile)
		hookContent := fmt.Sprintf(hookScript, hookFile)

		data, err := os.ReadFile(filename)
		if err == nil {
			if string(data) != hookContent {
				loggerInstance.DebugWith("Unexpected hook content", "filename", filename)
				existingHooks = append(existingHooks, filename)
			}
			continue
		}
		if !os.IsNotExist(err) {
			return errors.Wrap(err, "Failed to check hook")
		}

		if err := os.MkdirAll(hooksDir, 0777); err != nil {
			return errors.Wrap(err, "Failed to create hooks directory")
		}

		loggerInstance.DebugWith("Installing hook", "filename", filename)
		if err := os.WriteFile(filename, []byte(hookContent), 0755); err != nil {
			return errors.Wrap(err, "Failed to write hook")
		}
	}

	switch {
	case len(existingHooks) == 1:
		return errors.Errorf("Hooks file %s already exists."+
			"\nTo install gitzilla hooks, delete that"+
			" file and re-run 'gitzilla hooks'.",
			existingHooks[0])
	case len(existingHooks) > 1:
		return errors.Errorf("Hooks files %s already exist."+
			"\nTo install gitzilla hooks, delete these"+
			" files and re-run 'gitzilla hooks'.",
			strings.Join(existingHooks, ", "))
	}
	return nil
}
