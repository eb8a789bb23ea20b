// Copyright 2026 The Gitzilla Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bugzilla is a tracker.Tracker speaking the Bugzilla REST API.
package bugzilla

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gitzilla/gitzilla/internal/tracker"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

// codeBugDoesNotExist is the Bugzilla fault code for an unknown bug id.
const codeBugDoesNotExist = 101

// APIError is an error response served by Bugzilla.
type APIError struct {
	URL        string
	StatusCode int
	Status     string
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (code %d)", e.Status, e.Message, e.Code)
	}
	return e.Status
}

// NotFound reports whether e says the bug does not exist.
func (e *APIError) NotFound() bool {
	return e.Code == codeBugDoesNotExist || (e.Code == 0 && e.StatusCode == http.StatusNotFound)
}

// Client is a session with one Bugzilla installation.
type Client struct {
	logger     logger.Logger
	httpClient *http.Client

	url      string // "https://bugzilla.example.com", no trailing slash
	user     string
	password string

	authenticated bool
	token         string
}

// NewClient returns a client for credentials. Nothing is sent until
// the first call.
func NewClient(parentLogger logger.Logger, credentials tracker.Credentials) *Client {
	return &Client{
		logger:     parentLogger.GetChild("bugzilla"),
		httpClient: http.DefaultClient,
		url:        BaseURL(credentials.URL),
		user:       credentials.User,
		password:   credentials.Password,
	}
}

// NewFactory returns the default tracker.Factory. When credentials carry
// no user, a token previously stored in tokenFile for the same URL is used
// instead.
func NewFactory(parentLogger logger.Logger, tokenFile string) tracker.Factory {
	return func(credentials tracker.Credentials) (tracker.Tracker, error) {
		if credentials.URL == "" {
			return nil, errors.New("Bugzilla URL is not configured")
		}

		client := NewClient(parentLogger, credentials)
		if credentials.User != "" || tokenFile == "" {
			return client, nil
		}

		token, err := LoadToken(tokenFile, client.url)
		if err != nil {
			return nil, errors.Wrap(err, "Failed to load Bugzilla token")
		}
		if token != "" {
			client.logger.DebugWith("Using stored token", "tokenFile", tokenFile)
			client.authenticated = true
			client.token = token
		}
		return client, nil
	}
}

// BaseURL strips the trailing slash and any RPC endpoint from a configured URL,
// so both "https://bz/" and "https://bz/xmlrpc.cgi" name the same installation.
func BaseURL(u string) string {
	u = strings.TrimRight(u, "/")
	for _, endpoint := range []string{"/xmlrpc.cgi", "/jsonrpc.cgi", "/rest.cgi", "/rest"} {
		u = strings.TrimSuffix(u, endpoint)
	}
	return u
}

// Token returns the session token, if logged in with one.
func (c *Client) Token() string {
	return c.token
}

// Authenticate logs in once. Without a user it does nothing, leaving
// requests anonymous or bound to a stored token.
func (c *Client) Authenticate() error {
	if c.authenticated {
		return nil
	}

	if c.user == "" {
		c.logger.Debug("No Bugzilla user configured, not logging in")
		c.authenticated = true
		return nil
	}

	query := url.Values{}
	query.Set("login", c.user)
	query.Set("password", c.password)

	var response struct {
		ID    int    `json:"id"`
		Token string `json:"token"`
	}
	if err := c.api("GET", "/rest/login", query, nil, &response); err != nil {
		return &tracker.AuthError{URL: c.url, User: c.user, Err: err}
	}

	c.logger.DebugWith("Logged in", "user", c.user, "id", response.ID)
	c.authenticated = true
	c.token = response.Token
	return nil
}

// Status returns the status of bugID.
func (c *Client) Status(bugID int) (string, bool, error) {
	if err := c.Authenticate(); err != nil {
		return "", false, err
	}

	query := c.tokenQuery()
	query.Set("include_fields", "status")

	var response struct {
		Bugs []struct {
			Status string `json:"status"`
		} `json:"bugs"`
	}
	if err := c.api("GET", "/rest/bug/"+strconv.Itoa(bugID), query, nil, &response); err != nil {
		if apiError, ok := err.(*APIError); ok && apiError.NotFound() {
			return "", false, nil
		}
		return "", false, errors.Wrapf(err, "Failed to get bug %d", bugID)
	}

	if len(response.Bugs) == 0 {
		return "", false, nil
	}
	return response.Bugs[0].Status, true, nil
}

// AddComment posts text as a new comment on bugID.
func (c *Client) AddComment(bugID int, text string) error {
	if err := c.Authenticate(); err != nil {
		return err
	}

	body, err := json.Marshal(struct {
		Comment string `json:"comment"`
	}{text})
	if err != nil {
		return errors.Wrap(err, "Failed to encode comment")
	}

	var response struct {
		ID int `json:"id"`
	}
	if err := c.api("POST", "/rest/bug/"+strconv.Itoa(bugID)+"/comment", c.tokenQuery(), body, &response); err != nil {
		return errors.Wrapf(err, "Failed to add comment to bug %d", bugID)
	}

	c.logger.DebugWith("Added comment", "bugID", bugID, "commentID", response.ID)
	return nil
}

func (c *Client) tokenQuery() url.Values {
	query := url.Values{}
	if c.token != "" {
		query.Set("token", c.token)
	}
	return query
}

// api executes a GET or POST request against a Bugzilla REST endpoint.
// It uses GET when requestBody is nil, otherwise POST. A 2xx response
// body is decoded into target; anything else becomes an *APIError.
func (c *Client) api(method, path string, query url.Values, requestBody []byte, target interface{}) error {
	u := c.url + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if requestBody != nil {
		reader = bytes.NewReader(requestBody)
	}
	req, err := http.NewRequest(method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if requestBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return errors.Wrap(err, "Failed to read response body")
	}

	// Bugzilla reports faults as {"error": true, "code": N, "message": "..."},
	// usually with a matching HTTP status.
	var fault struct {
		Error   bool   `json:"error"`
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &fault)

	if resp.StatusCode < 200 || resp.StatusCode > 299 || fault.Error {
		return &APIError{
			URL:        c.url + path,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Code:       fault.Code,
			Message:    fault.Message,
		}
	}

	if target != nil {
		if err := json.Unmarshal(body, target); err != nil {
			return errors.Wrapf(err, "%s: malformed json response", c.url+path)
		}
	}
	return nil
}
