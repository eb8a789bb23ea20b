// Copyright 2026 The Gitzilla Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Gitzilla connects the server side of a git repository to Bugzilla.

It runs as one or more of the repository's hooks:

	gitzilla post-receive
	gitzilla update <ref> <old> <new>
	gitzilla pre-receive

The post-receive hook adds every newly pushed commit as a comment to each
bug its message references. The update and pre-receive hooks refuse
pushes whose commits reference no bug, or reference bugs whose status is
not one of the allowed ones. A refused push prints a notice that git
relays to the pusher:

	======================================================================
	Cannot accept commit.

	Bug 7['RESOLVED'] is not in ['NEW', 'ASSIGNED']

	======================================================================

Installing

Inside the repository on the server, run

	gitzilla hooks

to install post-receive and update hooks that exec gitzilla. With
--pre-receive, a pre-receive hook replaces the update hook and checks the
whole push at once. Existing hooks are never overwritten; merge them by
hand instead.

Bug References

A commit references a bug when its message matches bug_regex, whose
``bug'' capture group holds the bug number. The default pattern matches
``bug 123'', ``Bug #123'', ``BUG123'' and similar spellings, in any case
and across line breaks.

Commits Already Seen

With git_ref_prefix set (usually refs/heads/), commits already reachable
from another ref under that prefix are skipped: they were commented on
or checked when that ref was pushed. Merging a topic branch does not
post its commits a second time.

Configuration

Settings are read from the site configuration file, /etc/gitzilla.yaml by
default. The defaults block applies to every repository; a block under
repos, keyed by repository path, overrides it key by key:

	defaults:
	  bugzilla_url: https://bugzilla.example.com
	  bugzilla_user: hooks@example.com
	  bugzilla_password: secret
	  user_config: allow
	  logfile: /var/log/gitzilla.log
	  loglevel: info
	repos:
	  /srv/git/product.git:
	    allowed_bug_states: NEW, ASSIGNED, REOPENED
	    require_bug_ref: true

The user configuration file, ~/.gitzilla.yaml of the user running the
hook, may supply bugzilla_url, bugzilla_user and bugzilla_password. The
site's user_config setting decides how the two combine: allow prefers
complete user credentials, force only uses the user's, and deny refuses
to fall back to them.

Run

	gitzilla config

to print the configuration in effect for the current repository.

Login Tokens

Instead of storing a password, run

	gitzilla gencookie https://bugzilla.example.com

as the user the hooks run as. It prompts for a username and password,
logs in, and stores the login token in ~/.gitzilla-token. Hooks with a
bugzilla_url but no bugzilla_user use the stored token.
*/
package main
