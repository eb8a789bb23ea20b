// Copyright 2026 The Gitzilla Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tracker

import (
	"github.com/stretchr/testify/mock"
)

type MockTracker struct {
	mock.Mock
}

func NewMockTracker() *MockTracker {
	return &MockTracker{}
}

func (m *MockTracker) Authenticate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTracker) Status(bugID int) (string, bool, error) {
	args := m.Called(bugID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockTracker) AddComment(bugID int, text string) error {
	args := m.Called(bugID, text)
	return args.Error(0)
}

// Factory returns a Factory that hands out m and records the credentials it was given.
func (m *MockTracker) Factory(received *Credentials) Factory {
	return func(credentials Credentials) (Tracker, error) {
		if received != nil {
			*received = credentials
		}
		return m, nil
	}
}
