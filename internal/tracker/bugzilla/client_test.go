// Copyright 2026 The Gitzilla Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bugzilla

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gitzilla/gitzilla/internal/tracker"

	"github.com/jarcoal/httpmock"
	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	"github.com/nuclio/zap"
	"github.com/stretchr/testify/suite"
)

const testURL = "https://bugzilla.example.com"

type ClientTestSuite struct {
	suite.Suite
	logger logger.Logger
}

func (suite *ClientTestSuite) SetupSuite() {
	suite.logger, _ = nucliozap.NewNuclioZapTest("test")
}

func (suite *ClientTestSuite) SetupTest() {
	httpmock.Activate()
}

func (suite *ClientTestSuite) TearDownTest() {
	httpmock.DeactivateAndReset()
}

func (suite *ClientTestSuite) newClient(user string) *Client {
	return NewClient(suite.logger, tracker.Credentials{
		URL:      testURL + "/xmlrpc.cgi",
		User:     user,
		Password: "secret",
	})
}

func (suite *ClientTestSuite) registerLogin() {
	httpmock.RegisterResponder("GET", testURL+"/rest/login",
		func(req *http.Request) (*http.Response, error) {
			query := req.URL.Query()
			if query.Get("login") != "alice" || query.Get("password") != "secret" {
				return httpmock.NewStringResponse(401,
					`{"error":true,"code":300,"message":"The username or password you entered is not valid."}`), nil
			}
			return httpmock.NewStringResponse(200, `{"id":3,"token":"3-abc"}`), nil
		})
}

func (suite *ClientTestSuite) TestAuthenticateOnce() {
	suite.registerLogin()
	client := suite.newClient("alice")

	suite.Require().NoError(client.Authenticate())
	suite.Require().NoError(client.Authenticate())
	suite.Require().Equal("3-abc", client.Token())
	suite.Require().Equal(1, httpmock.GetTotalCallCount())
}

func (suite *ClientTestSuite) TestAuthenticateBadPassword() {
	suite.registerLogin()
	client := NewClient(suite.logger, tracker.Credentials{URL: testURL, User: "alice", Password: "wrong"})

	err := client.Authenticate()
	suite.Require().Error(err)

	authError, ok := err.(*tracker.AuthError)
	suite.Require().True(ok)
	suite.Require().Equal("alice", authError.User)

	apiError, ok := authError.Err.(*APIError)
	suite.Require().True(ok)
	suite.Require().Equal(300, apiError.Code)
	suite.Require().Equal(http.StatusUnauthorized, apiError.StatusCode)
}

func (suite *ClientTestSuite) TestAnonymous() {
	httpmock.RegisterResponder("GET", testURL+"/rest/bug/7",
		func(req *http.Request) (*http.Response, error) {
			suite.Require().Empty(req.URL.Query().Get("token"))
			suite.Require().Equal("status", req.URL.Query().Get("include_fields"))
			return httpmock.NewStringResponse(200, `{"bugs":[{"status":"NEW"}],"faults":[]}`), nil
		})

	client := suite.newClient("")
	suite.Require().NoError(client.Authenticate())

	status, found, err := client.Status(7)
	suite.Require().NoError(err)
	suite.Require().True(found)
	suite.Require().Equal("NEW", status)
	suite.Require().Equal(1, httpmock.GetTotalCallCount())
}

func (suite *ClientTestSuite) TestStatus() {
	suite.registerLogin()
	httpmock.RegisterResponder("GET", testURL+"/rest/bug/7",
		func(req *http.Request) (*http.Response, error) {
			suite.Require().Equal("3-abc", req.URL.Query().Get("token"))
			return httpmock.NewStringResponse(200, `{"bugs":[{"status":"RESOLVED"}],"faults":[]}`), nil
		})

	client := suite.newClient("alice")
	status, found, err := client.Status(7)
	suite.Require().NoError(err)
	suite.Require().True(found)
	suite.Require().Equal("RESOLVED", status)
}

func (suite *ClientTestSuite) TestStatusNotFound() {
	httpmock.RegisterResponder("GET", testURL+"/rest/bug/99",
		httpmock.NewStringResponder(404, `{"error":true,"code":101,"message":"Bug #99 does not exist."}`))
	httpmock.RegisterResponder("GET", testURL+"/rest/bug/98",
		httpmock.NewStringResponder(200, `{"error":true,"code":101,"message":"Bug #98 does not exist."}`))
	httpmock.RegisterResponder("GET", testURL+"/rest/bug/97",
		httpmock.NewStringResponder(200, `{"bugs":[],"faults":[]}`))

	client := suite.newClient("")
	for _, bugID := range []int{99, 98, 97} {
		_, found, err := client.Status(bugID)
		suite.Require().NoError(err)
		suite.Require().False(found, bugID)
	}
}

func (suite *ClientTestSuite) TestStatusFailure() {
	httpmock.RegisterResponder("GET", testURL+"/rest/bug/7",
		httpmock.NewStringResponder(500, `Internal Server Error`))
	httpmock.RegisterResponder("GET", testURL+"/rest/bug/8",
		httpmock.NewStringResponder(200, `{"bugs":`))
	httpmock.RegisterResponder("GET", testURL+"/rest/bug/9",
		httpmock.NewErrorResponder(errors.New("connection refused")))

	client := suite.newClient("")
	for _, bugID := range []int{7, 8, 9} {
		_, found, err := client.Status(bugID)
		suite.Require().Error(err, bugID)
		suite.Require().False(found)
	}
}

func (suite *ClientTestSuite) TestAddComment() {
	suite.registerLogin()

	var posted map[string]string
	httpmock.RegisterResponder("POST", testURL+"/rest/bug/7/comment",
		func(req *http.Request) (*http.Response, error) {
			suite.Require().Equal("3-abc", req.URL.Query().Get("token"))
			suite.Require().Equal("application/json", req.Header.Get("Content-Type"))

			body, err := io.ReadAll(req.Body)
			suite.Require().NoError(err)
			suite.Require().NoError(json.Unmarshal(body, &posted))
			return httpmock.NewStringResponse(201, `{"id":1234}`), nil
		})

	client := suite.newClient("alice")
	suite.Require().NoError(client.AddComment(7, "commit abc\n\nfix bug 7"))
	suite.Require().Equal(map[string]string{"comment": "commit abc\n\nfix bug 7"}, posted)
}

func (suite *ClientTestSuite) TestAddCommentFailure() {
	httpmock.RegisterResponder("POST", testURL+"/rest/bug/7/comment",
		httpmock.NewStringResponder(400, `{"error":true,"code":54,"message":"You must log in."}`))

	client := suite.newClient("")
	err := client.AddComment(7, "text")
	suite.Require().Error(err)

	apiError, ok := errors.RootCause(err).(*APIError)
	suite.Require().True(ok)
	suite.Require().Equal(54, apiError.Code)
	suite.Require().False(apiError.NotFound())
}

func (suite *ClientTestSuite) TestFactoryUsesStoredToken() {
	tokenFile := filepath.Join(suite.T().TempDir(), "token")
	suite.Require().NoError(SaveToken(tokenFile, testURL+"/", "5-stored"))

	httpmock.RegisterResponder("GET", testURL+"/rest/bug/7",
		func(req *http.Request) (*http.Response, error) {
			suite.Require().Equal("5-stored", req.URL.Query().Get("token"))
			return httpmock.NewStringResponse(200, `{"bugs":[{"status":"NEW"}]}`), nil
		})

	factory := NewFactory(suite.logger, tokenFile)
	bugTracker, err := factory(tracker.Credentials{URL: testURL})
	suite.Require().NoError(err)

	status, found, err := bugTracker.Status(7)
	suite.Require().NoError(err)
	suite.Require().True(found)
	suite.Require().Equal("NEW", status)
}

func (suite *ClientTestSuite) TestFactoryRequiresURL() {
	_, err := NewFactory(suite.logger, "")(tracker.Credentials{User: "alice"})
	suite.Require().Error(err)
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func TestBaseURL(t *testing.T) {
	for _, test := range []struct {
		in, want string
	}{
		{"https://bz.example.com", "https://bz.example.com"},
		{"https://bz.example.com/", "https://bz.example.com"},
		{"https://bz.example.com/xmlrpc.cgi", "https://bz.example.com"},
		{"https://example.com/bugzilla/jsonrpc.cgi", "https://example.com/bugzilla"},
		{"https://example.com/bugzilla/rest/", "https://example.com/bugzilla"},
	} {
		if got := BaseURL(test.in); got != test.want {
			t.Errorf("BaseURL(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}

func TestTokenFile(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "nested", "token")

	token, err := LoadToken(tokenFile, testURL)
	if err != nil || token != "" {
		t.Fatalf("LoadToken on missing file = %q, %v, want empty", token, err)
	}

	for _, step := range []struct {
		url, token string
	}{
		{testURL, "1-first"},
		{"https://other.example.com", "2-other"},
		{testURL + "/xmlrpc.cgi", "3-replaced"},
	} {
		if err := SaveToken(tokenFile, step.url, step.token); err != nil {
			t.Fatalf("SaveToken(%q): %v", step.url, err)
		}
	}

	for url, want := range map[string]string{
		testURL:                     "3-replaced",
		"https://other.example.com": "2-other",
		"https://unknown.example":   "",
	} {
		if got, err := LoadToken(tokenFile, url); err != nil || got != want {
			t.Errorf("LoadToken(%q) = %q, %v, want %q", url, got, err, want)
		}
	}

	info, err := os.Stat(tokenFile)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("token file mode = %v, want 0600", perm)
	}
}
