// Copyright 2026 The Gitzilla Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package changes

import "strings"

// DefaultSeparator delimits commit records in raw log output.
// It must never occur inside a commit message.
const DefaultSeparator = "~.~.~.~.~.~.~.~.~.~.~.~.~.~.~.~."

// DefaultFormatSpec is the per-commit git pretty format posted to bugs.
const DefaultFormatSpec = `
commit      %H
parents     %P
Author      %aN (%aE)
Date        %aD
Commit By   %cN (%cE)
Commit Date %cD

%s

%b
`

// NormalizeFormatSpec trims surrounding newlines from spec and turns the
// remaining ones into %n, so that spec fits on a git command line.
func NormalizeFormatSpec(spec string) string {
	return strings.ReplaceAll(strings.Trim(spec, "\n"), "\n", "%n")
}
