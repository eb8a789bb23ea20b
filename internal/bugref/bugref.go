// Copyright 2026 The Gitzilla Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bugref finds bug references in commit messages.
package bugref

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/nuclio/errors"
)

// DefaultPattern matches "bug 123", "bug#123", "Bug # 123", "BUG123" and so on.
const DefaultPattern = `bug\s*(?:#|)\s*(?P<bug>\d+)`

// GroupName is the capture group every pattern must define. It must
// only ever capture decimal digits.
const GroupName = "bug"

// Extractor applies one compiled pattern to messages.
// Matching is case-insensitive and spans lines.
type Extractor struct {
	re    *regexp.Regexp
	group int
}

// Compile compiles pattern, or DefaultPattern if pattern is empty.
func Compile(pattern string) (*Extractor, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}

	re, err := regexp.Compile("(?ims)" + pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "Invalid bug pattern %q", pattern)
	}

	group := re.SubexpIndex(GroupName)
	if group < 0 {
		return nil, errors.Errorf("Bug pattern %q has no named group %q", pattern, GroupName)
	}

	return &Extractor{re: re, group: group}, nil
}

// MustCompile is like Compile but panics on a bad pattern.
func MustCompile(pattern string) *Extractor {
	e, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return e
}

// First reports the first bug id in message, if any.
func (e *Extractor) First(message string) (int, bool) {
	for _, m := range e.re.FindAllStringSubmatch(message, -1) {
		if id, ok := bugID(m[e.group]); ok {
			return id, true
		}
	}
	return 0, false
}

// All returns every bug id in message, left to right.
// Repeated references yield repeated ids. Numbers too large for an
// int are not references.
func (e *Extractor) All(message string) []int {
	var ids []int
	for _, m := range e.re.FindAllStringSubmatch(message, -1) {
		if id, ok := bugID(m[e.group]); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// ExtractAll is All with a freshly compiled pattern.
func ExtractAll(message, pattern string) ([]int, error) {
	e, err := Compile(pattern)
	if err != nil {
		return nil, err
	}
	return e.All(message), nil
}

// ExtractFirst is First with a freshly compiled pattern.
func ExtractFirst(message, pattern string) (int, bool, error) {
	e, err := Compile(pattern)
	if err != nil {
		return 0, false, err
	}
	id, ok := e.First(message)
	return id, ok, nil
}

func bugID(s string) (int, bool) {
	id, err := strconv.Atoi(s)
	if err != nil {
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return 0, false
		}
		panic(fmt.Sprintf("bug pattern captured %q, not a bug number", s))
	}
	return id, true
}
