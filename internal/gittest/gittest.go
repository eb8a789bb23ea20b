// Copyright 2026 The Gitzilla Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gittest builds throwaway git repositories for tests.
package gittest

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// Repo is a non-bare repository in a temporary directory, standing in
// for the server side of a push.
type Repo struct {
	Dir string

	ncommit int
}

// NewRepo creates a repository whose master branch holds a single
// commit with subject "initial commit".
func NewRepo(t testing.TB) *Repo {
	dir := t.TempDir()

	Run(t, dir, "git", "-c", "init.defaultBranch=master", "init", "-q", ".")
	Run(t, dir, "git", "config", "user.name", "gopher")
	Run(t, dir, "git", "config", "user.email", "gopher@example.com")
	Run(t, dir, "git", "config", "commit.gpgsign", "false")
	Write(t, filepath.Join(dir, ".gitattributes"), "* -text\n")
	Run(t, dir, "git", "add", ".gitattributes")
	Run(t, dir, "git", "commit", "-q", "-m", "initial commit")

	return &Repo{Dir: dir}
}

// Commit commits a change to a file on the current branch and
// returns the new commit hash.
func (r *Repo) Commit(t testing.TB, message string) string {
	r.ncommit++
	Write(t, filepath.Join(r.Dir, "file"), fmt.Sprintf("content %d", r.ncommit))
	Run(t, r.Dir, "git", "add", "file")
	Run(t, r.Dir, "git", "commit", "-q", "-m", message)
	return r.Head(t)
}

// Head returns the hash HEAD points at.
func (r *Repo) Head(t testing.TB) string {
	return r.RevParse(t, "HEAD")
}

// RevParse resolves rev to a full hash.
func (r *Repo) RevParse(t testing.TB, rev string) string {
	return strings.TrimSpace(Run(t, r.Dir, "git", "rev-parse", rev))
}

// Checkout switches to branch, creating it at the current commit if create is set.
func (r *Repo) Checkout(t testing.TB, branch string, create bool) {
	if create {
		Run(t, r.Dir, "git", "checkout", "-q", "-b", branch)
		return
	}
	Run(t, r.Dir, "git", "checkout", "-q", branch)
}

// Run runs cmdline in dir and fails the test if it does not succeed.
func Run(t testing.TB, dir string, cmdline ...string) string {
	cmd := exec.Command(cmdline[0], cmdline[1:]...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("in %s/, ran %s: %v\n%s", filepath.Base(dir), cmdline, err, out)
	}
	return string(out)
}

// Write writes data to file.
func Write(t testing.TB, file, data string) {
	if err := os.WriteFile(file, []byte(data), 0666); err != nil {
		t.Fatal(err)
	}
}
