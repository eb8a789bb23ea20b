// Copyright 2026 The Gitzilla Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vcs

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/gitzilla/gitzilla/internal/gittest"

	"github.com/nuclio/logger"
	"github.com/nuclio/zap"
	"github.com/stretchr/testify/suite"
)

type GitTestSuite struct {
	suite.Suite
	logger logger.Logger
	repo   *gittest.Repo
	git    *Git
}

func (suite *GitTestSuite) SetupTest() {
	var err error

	suite.logger, err = nucliozap.NewNuclioZapTest("test")
	suite.Require().NoError(err)

	suite.repo = gittest.NewRepo(suite.T())
	suite.git, err = NewGit(suite.logger, suite.repo.Dir)
	suite.Require().NoError(err)
}

func (suite *GitTestSuite) TestListOtherRefs() {
	suite.repo.Checkout(suite.T(), "feature", true)
	suite.repo.Checkout(suite.T(), "feature-two", true)
	suite.repo.Checkout(suite.T(), "dev/one", true)
	gittest.Run(suite.T(), suite.repo.Dir, "git", "tag", "v1")

	refs, err := suite.git.ListOtherRefs("refs/heads/", "refs/heads/master")
	suite.Require().NoError(err)
	suite.Require().Equal([]string{"refs/heads/dev/one", "refs/heads/feature", "refs/heads/feature-two"}, refs)

	refs, err = suite.git.ListOtherRefs("refs/heads", "refs/heads/feature")
	suite.Require().NoError(err)
	suite.Require().Equal([]string{"refs/heads/dev/one", "refs/heads/feature-two", "refs/heads/master"}, refs)

	refs, err = suite.git.ListOtherRefs("refs/heads/feature", "")
	suite.Require().NoError(err)
	suite.Require().Equal([]string{"refs/heads/feature"}, refs)

	refs, err = suite.git.ListOtherRefs("refs/heads/dev", "")
	suite.Require().NoError(err)
	suite.Require().Equal([]string{"refs/heads/dev/one"}, refs)

	refs, err = suite.git.ListOtherRefs("refs/*/v*", "")
	suite.Require().NoError(err)
	suite.Require().Equal([]string{"refs/tags/v1"}, refs)
}

func (suite *GitTestSuite) TestResolveExcludedRanges() {
	head := suite.repo.Head(suite.T())
	suite.repo.Checkout(suite.T(), "feature", true)

	excluded, err := suite.git.ResolveExcludedRanges([]string{"refs/heads/feature"})
	suite.Require().NoError(err)
	suite.Require().Equal([]string{"^" + head}, excluded)

	_, err = suite.git.ResolveExcludedRanges([]string{"refs/heads/missing"})
	suite.Require().Error(err)
}

func (suite *GitTestSuite) TestListCommits() {
	base := suite.repo.Head(suite.T())
	suite.repo.Commit(suite.T(), "first")
	suite.repo.Commit(suite.T(), "second")

	output, err := suite.git.ListCommits(base+".."+suite.repo.Head(suite.T()), nil, "@@%s", false)
	suite.Require().NoError(err)
	suite.Require().Equal("@@second\n@@first", output)

	output, err = suite.git.ListCommits(base+".."+suite.repo.Head(suite.T()), nil, "@@%s", true)
	suite.Require().NoError(err)
	suite.Require().Contains(output, "1 file changed")
}

func (suite *GitTestSuite) TestListCommitsFailure() {
	_, err := suite.git.ListCommits("no-such-revision", nil, "%s", false)
	suite.Require().Error(err)

	commandError, ok := err.(*CommandError)
	suite.Require().True(ok)
	suite.Require().NotEmpty(commandError.Output)
	suite.Require().True(strings.Contains(commandError.Error(), "no-such-revision"))
}

func (suite *GitTestSuite) TestHooksDir() {
	hooksDir, err := suite.git.HooksDir()
	suite.Require().NoError(err)
	suite.Require().Equal(filepath.Join(suite.repo.Dir, ".git", "hooks"), hooksDir)

	gittest.Run(suite.T(), suite.repo.Dir, "git", "config", "core.hooksPath", "/srv/hooks")
	hooksDir, err = suite.git.HooksDir()
	suite.Require().NoError(err)
	suite.Require().Equal("/srv/hooks", hooksDir)
}

func TestMatchRefPattern(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"", "refs/heads/master", true},
		{"refs/heads/", "refs/heads/master", true},
		{"refs/heads", "refs/heads/master", true},
		{"refs/head", "refs/heads/master", false},
		{"refs/heads/master", "refs/heads/master", true},
		{"refs/heads/mast", "refs/heads/master", false},
		{"refs/heads/*", "refs/heads/master", true},
		{"refs/heads/*", "refs/heads/dev/x", false},
		{"refs/tags/", "refs/heads/master", false},
	}

	for _, test := range tests {
		if got := matchRefPattern(test.pattern, test.name); got != test.want {
			t.Errorf("matchRefPattern(%q, %q) = %t, want %t", test.pattern, test.name, got, test.want)
		}
	}
}

func TestGitTestSuite(t *testing.T) {
	suite.Run(t, new(GitTestSuite))
}
