// Copyright 2026 The Gitzilla Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gitzilla/gitzilla/internal/bugref"
	"github.com/gitzilla/gitzilla/internal/changes"
	"github.com/gitzilla/gitzilla/internal/config"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nuclio/errors"
	"github.com/spf13/cobra"
)

type configCommandeer struct {
	cmd            *cobra.Command
	rootCommandeer *rootCommandeer
}

func newConfigCommandeer(rootCommandeer *rootCommandeer) *configCommandeer {
	commandeer := &configCommandeer{
		rootCommandeer: rootCommandeer,
	}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the configuration in effect for the repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootCommandeer.initialize(); err != nil {
				return errors.Wrap(err, "Failed to initialize root")
			}

			records, err := configRecords(rootCommandeer.config)
			if err != nil {
				return err
			}

			renderTable(rootCommandeer.stdout, []interface{}{"Setting", "Value"}, records)
			return nil
		},
	}

	commandeer.cmd = cmd

	return commandeer
}

// configRecords lists the resolved settings. The password is never shown.
func configRecords(cfg *config.Config) ([][]interface{}, error) {
	credentials, err := cfg.Credentials()
	if err != nil {
		return nil, errors.Wrap(err, "Failed to resolve Bugzilla credentials")
	}

	options := cfg.HookOptions()

	password := ""
	if credentials.Password != "" {
		password = "********"
	}

	bugPattern := cfg.BugPattern()
	if bugPattern == "" {
		bugPattern = bugref.DefaultPattern
	}

	allowedStatuses := "(not checked)"
	if options.StatusGating() {
		allowedStatuses = strings.Join(options.AllowedStatuses, ", ")
	}

	logFile := "(none)"
	if cfg.Site.LogFile != nil {
		logFile = *cfg.Site.LogFile
	}

	return [][]interface{}{
		{"repository", cfg.Repo},
		{"site config", cfg.SitePath},
		{"user config", cfg.UserPath},
		{"bugzilla_url", credentials.URL},
		{"bugzilla_user", credentials.User},
		{"bugzilla_password", password},
		{"credentials from", string(credentials.Source)},
		{"user_config", string(cfg.UserConfigPolicy())},
		{"logfile", logFile},
		{"bug_regex", bugPattern},
		{"git_ref_prefix", options.RefPrefix},
		{"separator", cfg.Separator()},
		{"formatspec", changes.NormalizeFormatSpec(cfg.FormatSpec())},
		{"include_diffstat", strconv.FormatBool(options.IncludeDiffStat)},
		{"require_bug_ref", strconv.FormatBool(options.RequireBugRef)},
		{"allowed_bug_states", allowedStatuses},
	}, nil
}

func renderTable(output io.Writer, header []interface{}, records [][]interface{}) {
	tw := table.NewWriter()
	tw.SetOutputMirror(output)
	tw.SetStyle(table.Style{
		Name: "Gitzilla",
		Box: table.BoxStyle{
			MiddleVertical: "|",
			PaddingLeft:    " ",
			PaddingRight:   " ",
		},
		Options: table.Options{
			DoNotColorBordersAndSeparators: true,
			DrawBorder:                     false,
			SeparateColumns:                true,
			SeparateFooter:                 false,
			SeparateHeader:                 false,
			SeparateRows:                   false,
		},
		Color:  table.ColorOptionsDefault,
		Format: table.FormatOptionsDefault,
		HTML:   table.DefaultHTMLOptions,
		Title:  table.TitleOptionsDefault,
	})

	tw.AppendHeader(table.Row(header))
	for _, record := range records {
		tw.AppendRow(table.Row(record))
	}
	tw.Render()

	fmt.Fprintln(output) // nolint: errcheck
}
