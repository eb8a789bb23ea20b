// Copyright 2026 The Gitzilla Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vcs answers the questions the hooks ask of a git repository:
// which commits lie in a range, and which other refs exist.
package vcs

import (
	"bytes"
	"fmt"
	"os/exec"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	"github.com/samber/lo"
)

// CommandError reports a git invocation that exited unsuccessfully.
// Output holds whatever the command wrote, for diagnosis.
type CommandError struct {
	Args   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("git %s: %v\n%s", strings.Join(e.Args, " "), e.Err, strings.TrimSpace(e.Output))
}

// Git is a repository on local disk. Commit listings go through the git
// binary so that format specs and diffstats behave exactly as operators
// expect; ref enumeration is done in-process.
type Git struct {
	logger     logger.Logger
	dir        string
	repository *git.Repository
}

// NewGit opens the repository at dir, which may be a bare repository,
// a work tree, or any directory below a work tree.
func NewGit(parentLogger logger.Logger, dir string) (*Git, error) {
	repository, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open git repository at %s", dir)
	}

	return &Git{
		logger:     parentLogger.GetChild("git"),
		dir:        dir,
		repository: repository,
	}, nil
}

// ListCommits runs git log over revisionRange, excluding every revision
// expression in excluded, and returns the raw formatted output.
func (g *Git) ListCommits(revisionRange string,
	excluded []string,
	format string,
	includeDiffStat bool) (string, error) {

	args := []string{"log", "--topo-order", "--format=format:" + format}
	if includeDiffStat {
		args = append(args, "--stat")
	}
	args = append(args, excluded...)
	args = append(args, revisionRange, "--")

	return g.output(args...)
}

// ListOtherRefs returns the names of all refs matching prefix except
// excluding, sorted. Matching follows git for-each-ref: a pattern matches
// a ref literally, up to a slash, or as a glob.
func (g *Git) ListOtherRefs(prefix, excluding string) ([]string, error) {
	iter, err := g.repository.References()
	if err != nil {
		return nil, errors.Wrap(err, "Failed to list references")
	}
	defer iter.Close()

	var names []string
	if err := iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().String())
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "Failed to iterate references")
	}

	others := lo.Filter(lo.Uniq(names), func(name string, _ int) bool {
		return strings.HasPrefix(name, "refs/") &&
			name != excluding &&
			matchRefPattern(prefix, name)
	})
	sort.Strings(others)

	g.logger.DebugWith("Listed other refs", "prefix", prefix, "excluding", excluding, "refs", others)

	return others, nil
}

// ResolveExcludedRanges turns refs into negative revision expressions
// (^<hash>), the equivalent of git rev-parse --not.
func (g *Git) ResolveExcludedRanges(refs []string) ([]string, error) {
	var excluded []string
	for _, name := range refs {
		ref, err := g.repository.Reference(plumbing.ReferenceName(name), true)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to resolve reference %s", name)
		}
		excluded = append(excluded, "^"+ref.Hash().String())
	}
	return excluded, nil
}

// HooksDir returns the directory git runs hooks from, honoring
// core.hooksPath.
func (g *Git) HooksDir() (string, error) {
	out, err := g.output("rev-parse", "--git-path", "hooks")
	if err != nil {
		return "", errors.Wrap(err, "Failed to locate hooks directory")
	}

	hooksDir := strings.TrimSpace(out)
	if !filepath.IsAbs(hooksDir) {
		hooksDir = filepath.Join(g.dir, hooksDir)
	}
	return filepath.Clean(hooksDir), nil
}

func (g *Git) output(args ...string) (string, error) {
	g.logger.DebugWith("Executing", "command", "git "+strings.Join(args, " "), "dir", g.dir)

	var stdout, stderr bytes.Buffer
	cmd := exec.Command("git", args...)
	cmd.Dir = g.dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		g.logger.DebugWith("Failed to execute command",
			"stdout", stdout.String(),
			"stderr", stderr.String(),
			"err", err)
		return "", &CommandError{
			Args:   args,
			Output: stderr.String() + stdout.String(),
			Err:    err,
		}
	}
	return stdout.String(), nil
}

func matchRefPattern(pattern, name string) bool {
	if pattern == "" || pattern == name {
		return true
	}
	if strings.ContainsAny(pattern, "*?[") {
		matched, _ := path.Match(pattern, name)
		return matched
	}
	if !strings.HasPrefix(name, pattern) {
		return false
	}
	return strings.HasSuffix(pattern, "/") || name[len(pattern)] == '/'
}
