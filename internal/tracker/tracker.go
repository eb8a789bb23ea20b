// Copyright 2026 The Gitzilla Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tracker defines what the hooks need from an issue tracker.
package tracker

import "fmt"

// Tracker is a session with an issue tracker. Implementations
// authenticate at most once and reuse the session for later calls.
type Tracker interface {

	// Authenticate logs in, unless already logged in
	Authenticate() error

	// Status returns the status of a bug; found is false if no such bug exists
	Status(bugID int) (status string, found bool, err error)

	// AddComment posts text as a new comment on a bug
	AddComment(bugID int, text string) error
}

// CredentialSource records where credentials came from.
type CredentialSource string

const (
	CredentialSourceNone CredentialSource = "none"
	CredentialSourceSite CredentialSource = "site"
	CredentialSourceUser CredentialSource = "user"
)

// Credentials locate and authenticate against a tracker.
// User and Password are either both set or both empty.
type Credentials struct {
	URL      string
	User     string
	Password string
	Source   CredentialSource
}

// Factory creates a Tracker. Any fallback for missing credentials
// is the factory's business.
type Factory func(credentials Credentials) (Tracker, error)

// AuthError reports a failed login.
type AuthError struct {
	URL  string
	User string
	Err  error
}

func (e *AuthError) Error() string {
	if e.User == "" {
		return fmt.Sprintf("authentication to %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("authentication to %s as %s failed: %v", e.URL, e.User, e.Err)
}
