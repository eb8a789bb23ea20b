// Copyright 2026 The Gitzilla Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/gitzilla/gitzilla/internal/config"
	"github.com/gitzilla/gitzilla/internal/tracker"
	"github.com/gitzilla/gitzilla/internal/tracker/bugzilla"

	"github.com/nuclio/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type gencookieCommandeer struct {
	cmd            *cobra.Command
	rootCommandeer *rootCommandeer
	user           string
}

func newGencookieCommandeer(rootCommandeer *rootCommandeer) *gencookieCommandeer {
	commandeer := &gencookieCommandeer{
		rootCommandeer: rootCommandeer,
	}

	cmd := &cobra.Command{
		Use:   "gencookie <bugzilla-url>",
		Short: "Log in to Bugzilla and store the login token",
		Long: `Prompts for a Bugzilla username and password, logs in, and stores the
resulting token in the token file. The hooks use the stored token when
no bugzilla_user and bugzilla_password are configured.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commandeer.generate(args[0])
		},
	}

	cmd.Flags().StringVarP(&commandeer.user, "user", "u", "", "Bugzilla username (prompted for if empty)")

	commandeer.cmd = cmd

	return commandeer
}

func (c *gencookieCommandeer) generate(url string) error {
	rc := c.rootCommandeer

	loggerInstance, err := config.NewStderrLogger("gitzilla", rc.verbose, rc.stderr)
	if err != nil {
		return err
	}

	input := bufio.NewReader(rc.stdin)

	username := c.user
	if username == "" {
		defaultUsername := ""
		if current, err := user.Current(); err == nil {
			defaultUsername = current.Username
		}

		fmt.Fprintf(rc.stdout, "Bugzilla username [%s]: ", defaultUsername) // nolint: errcheck
		line, err := input.ReadString('\n')
		if err != nil && line == "" {
			return errors.Wrap(err, "Failed to read username")
		}
		if username = strings.TrimSpace(line); username == "" {
			username = defaultUsername
		}
	}
	if username == "" {
		return errors.New("A Bugzilla username is required")
	}

	fmt.Fprint(rc.stdout, "Bugzilla password: ") // nolint: errcheck
	password, err := c.readPassword(input)
	fmt.Fprintln(rc.stdout) // nolint: errcheck
	if err != nil {
		return errors.Wrap(err, "Failed to read password")
	}

	client := bugzilla.NewClient(loggerInstance, tracker.Credentials{
		URL:      url,
		User:     username,
		Password: password,
		Source:   tracker.CredentialSourceUser,
	})
	if err := client.Authenticate(); err != nil {
		return err
	}

	if err := bugzilla.SaveToken(rc.tokenFile, url, client.Token()); err != nil {
		return err
	}

	fmt.Fprintf(rc.stdout, "Stored login token for %s in %s\n", bugzilla.BaseURL(url), rc.tokenFile) // nolint: errcheck
	return nil
}

// readPassword reads without echo from a terminal, or a plain line otherwise.
func (c *gencookieCommandeer) readPassword(input *bufio.Reader) (string, error) {
	if file, ok := c.rootCommandeer.stdin.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		password, err := term.ReadPassword(int(file.Fd()))
		return string(password), err
	}

	line, err := input.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
