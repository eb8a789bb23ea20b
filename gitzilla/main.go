// Copyright 2026 The Gitzilla Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gitzilla/gitzilla/internal/bugref"
	"github.com/gitzilla/gitzilla/internal/changes"
	"github.com/gitzilla/gitzilla/internal/config"
	"github.com/gitzilla/gitzilla/internal/hooks"
	"github.com/gitzilla/gitzilla/internal/tracker"
	"github.com/gitzilla/gitzilla/internal/tracker/bugzilla"
	"github.com/gitzilla/gitzilla/internal/vcs"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	os.Exit(newRootCommandeer(os.Stdin, os.Stdout, os.Stderr).execute(os.Args[1:]))
}

type rootCommandeer struct {
	cmd *cobra.Command

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	verbose   bool
	repo      string
	sitePath  string
	userPath  string
	tokenFile string

	// newTracker creates the Bugzilla client; replaced in tests
	newTracker func(parentLogger logger.Logger, tokenFile string) tracker.Factory

	loggerInstance logger.Logger
	closeLogger    io.Closer
	config         *config.Config
	git            *vcs.Git
}

func newRootCommandeer(stdin io.Reader, stdout, stderr io.Writer) *rootCommandeer {
	commandeer := &rootCommandeer{
		stdin:      stdin,
		stdout:     stdout,
		stderr:     stderr,
		newTracker: bugzilla.NewFactory,
	}

	cmd := &cobra.Command{
		Use:           "gitzilla [command]",
		Short:         "Connect git server hooks to Bugzilla",
		Long:          longHelp,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultSitePath := os.Getenv("GITZILLA_SITE_CONFIG")
	if defaultSitePath == "" {
		defaultSitePath = config.DefaultSitePath
	}

	defaultUserPath := os.Getenv("GITZILLA_USER_CONFIG")
	if defaultUserPath == "" {
		defaultUserPath = config.DefaultUserPath
	}

	cmd.PersistentFlags().BoolVarP(&commandeer.verbose, "verbose", "v", false, "Log to stderr")
	cmd.PersistentFlags().StringVarP(&commandeer.repo, "repo", "", "", "Repository path (default: current directory)")
	cmd.PersistentFlags().StringVarP(&commandeer.sitePath, "site-config", "", defaultSitePath, "Site configuration file")
	cmd.PersistentFlags().StringVarP(&commandeer.userPath, "user-config", "", defaultUserPath, "User configuration file")
	cmd.PersistentFlags().StringVarP(&commandeer.tokenFile, "token-file", "", bugzilla.DefaultTokenFile, "Stored Bugzilla login tokens")

	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.AddCommand(
		newPostReceiveCommandeer(commandeer).cmd,
		newUpdateCommandeer(commandeer).cmd,
		newPreReceiveCommandeer(commandeer).cmd,
		newHooksCommandeer(commandeer).cmd,
		newGencookieCommandeer(commandeer).cmd,
		newConfigCommandeer(commandeer).cmd,
	)

	commandeer.cmd = cmd

	return commandeer
}

// execute runs the command line and returns the process exit status.
// A rejection prints the notice git relays to the pusher.
func (rc *rootCommandeer) execute(args []string) int {
	rc.cmd.SetArgs(args)

	err := rc.cmd.Execute()
	if rc.closeLogger != nil {
		rc.closeLogger.Close() // nolint: errcheck
	}
	if err == nil {
		return 0
	}

	if rejection, ok := err.(*hooks.Rejection); ok {
		writeBanner(rc.stdout, rejection.Message)
		return 1
	}

	fmt.Fprintf(rc.stderr, "gitzilla: %s\n", errors.GetErrorStackString(err, 10)) // nolint: errcheck
	return 1
}

// writeBanner prints a rejection, in color when stdout is a terminal.
func writeBanner(w io.Writer, message string) {
	colorize := false
	if file, ok := w.(*os.File); ok {
		colorize = term.IsTerminal(int(file.Fd()))
	}
	hooks.WriteBanner(w, message, colorize) // nolint: errcheck
}

// initialize loads the configuration for the repository and sets up logging.
func (rc *rootCommandeer) initialize() error {
	repo := rc.repo
	if repo == "" {
		wd, err := os.Getwd()
		if err != nil {
			return errors.Wrap(err, "Failed to get working directory")
		}
		repo = wd
	}

	repo, err := filepath.Abs(repo)
	if err != nil {
		return errors.Wrapf(err, "Failed to resolve %s", repo)
	}

	rc.config, err = config.Load(rc.sitePath, rc.userPath, repo)
	if err != nil {
		return errors.Wrap(err, "Failed to load configuration")
	}

	rc.loggerInstance, rc.closeLogger, err = rc.config.NewLogger("gitzilla", rc.verbose, rc.stderr)
	if err != nil {
		return errors.Wrap(err, "Failed to create logger")
	}

	rc.loggerInstance.DebugWith("Loaded configuration",
		"repo", repo,
		"siteConfig", rc.sitePath,
		"userConfig", rc.userPath)

	return nil
}

// openRepository opens the configured repository. Requires initialize.
func (rc *rootCommandeer) openRepository() error {
	var err error

	rc.git, err = vcs.NewGit(rc.loggerInstance, rc.config.Repo)
	if err != nil {
		return errors.Wrap(err, "Failed to open repository")
	}
	return nil
}

// newPipeline builds what both hook flavors share: the commit resolver
// over the repository and the bug reference extractor. An empty
// formatSpec selects changes.DefaultFormatSpec.
func (rc *rootCommandeer) newPipeline(formatSpec string) (*changes.Resolver, *bugref.Extractor, error) {
	if err := rc.openRepository(); err != nil {
		return nil, nil, err
	}

	extractor, err := bugref.Compile(rc.config.BugPattern())
	if err != nil {
		return nil, nil, &hooks.ConfigurationError{Message: "bad bug_regex: " + err.Error()}
	}

	resolver := changes.NewResolver(rc.loggerInstance,
		rc.git,
		rc.config.Separator(),
		formatSpec)

	return resolver, extractor, nil
}

func (rc *rootCommandeer) trackerFactory() tracker.Factory {
	return rc.newTracker(rc.loggerInstance, rc.tokenFile)
}

const longHelp = `Gitzilla connects the server side of a git repository to Bugzilla.

Installed as the post-receive hook, it adds every pushed commit as a
comment to each bug the commit message references. Installed as the
update or pre-receive hook, it refuses pushes whose commits reference no
bug, or reference bugs that are not in an allowed state.

Run "gitzilla hooks" inside a repository to install the hooks.`
