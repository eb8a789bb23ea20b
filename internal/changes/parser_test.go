// Copyright 2026 The Gitzilla Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package changes

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	const sep = "~.~"

	tests := []struct {
		name string
		raw  string
		want []Commit
	}{
		{
			name: "empty range",
			raw:  "",
			want: nil,
		},
		{
			name: "single commit",
			raw:  sep + "only",
			want: []Commit{{Message: "only"}},
		},
		{
			name: "newest first becomes oldest first",
			raw:  sep + "third\n" + sep + "second\n" + sep + "first",
			want: []Commit{{Message: "first"}, {Message: "second\n"}, {Message: "third\n"}},
		},
		{
			name: "empty message survives",
			raw:  sep + sep + "first",
			want: []Commit{{Message: "first"}, {Message: ""}},
		},
	}

	for _, test := range tests {
		got := Parse(test.raw, sep)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("%s: Parse mismatch (-want +got):\n%s", test.name, diff)
		}
	}
}

func TestParseEmptySeparator(t *testing.T) {
	if got := Parse("", ""); got != nil {
		t.Errorf("Parse of empty output = %v, want nil", got)
	}

	raw := DefaultSeparator + "second" + DefaultSeparator + "first"
	want := []Commit{{Message: "first"}, {Message: "second"}}
	if diff := cmp.Diff(want, Parse(raw, "")); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeFormatSpec(t *testing.T) {
	tests := []struct {
		spec string
		want string
	}{
		{"%H", "%H"},
		{"\n%H\n%s\n", "%H%n%s"},
		{"\n\ncommit %H\n\n%b\n\n", "commit %H%n%n%b"},
	}

	for _, test := range tests {
		if got := NormalizeFormatSpec(test.spec); got != test.want {
			t.Errorf("NormalizeFormatSpec(%q) = %q, want %q", test.spec, got, test.want)
		}
	}
}
