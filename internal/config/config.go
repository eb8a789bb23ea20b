// Copyright 2026 The Gitzilla Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads gitzilla's site and user configuration.
//
// Both are YAML files of the form
//
//	defaults:
//	  bugzilla_url: https://bugzilla.example.com
//	  allowed_bug_states: NEW, ASSIGNED
//	repos:
//	  /srv/git/project.git:
//	    require_bug_ref: false
//
// where each key set in the block for the repository being pushed to,
// if any, replaces the default. Hook behavior comes from the site file only. The
// user file may supply the Bugzilla URL and credentials, subject to the
// site's user_config policy.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gitzilla/gitzilla/internal/changes"
	"github.com/gitzilla/gitzilla/internal/hooks"
	"github.com/gitzilla/gitzilla/internal/tracker"

	"github.com/mitchellh/go-homedir"
	"github.com/nuclio/errors"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSitePath = "/etc/gitzilla.yaml"
	DefaultUserPath = "~/.gitzilla.yaml"
)

// UserConfigPolicy says whether credentials in the user file may be used.
type UserConfigPolicy string

const (
	UserConfigAllow UserConfigPolicy = "allow"
	UserConfigDeny  UserConfigPolicy = "deny"
	UserConfigForce UserConfigPolicy = "force"
)

// Settings is one block of configuration. Nil fields are unset.
type Settings struct {
	BugzillaURL      *string    `yaml:"bugzilla_url,omitempty"`
	BugzillaUser     *string    `yaml:"bugzilla_user,omitempty"`
	BugzillaPassword *string    `yaml:"bugzilla_password,omitempty"`
	UserConfig       *string    `yaml:"user_config,omitempty"`
	LogFile          *string    `yaml:"logfile,omitempty"`
	LogLevel         *string    `yaml:"loglevel,omitempty"`
	BugRegex         *string    `yaml:"bug_regex,omitempty"`
	RefPrefix        *string    `yaml:"git_ref_prefix,omitempty"`
	Separator        *string    `yaml:"separator,omitempty"`
	FormatSpec       *string    `yaml:"formatspec,omitempty"`
	IncludeDiffStat  *bool      `yaml:"include_diffstat,omitempty"`
	RequireBugRef    *bool      `yaml:"require_bug_ref,omitempty"`
	AllowedBugStates StatusList `yaml:"allowed_bug_states,omitempty"`
}

// StatusList is a list of bug statuses, written either as a YAML
// sequence or as a comma separated string.
type StatusList []string

func (s *StatusList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		statuses := lo.Map(strings.Split(value.Value, ","), func(status string, _ int) string {
			return strings.TrimSpace(status)
		})
		*s = lo.Filter(statuses, func(status string, _ int) bool {
			return status != ""
		})
		return nil
	}

	var statuses []string
	if err := value.Decode(&statuses); err != nil {
		return err
	}
	*s = statuses
	return nil
}

// File is the parsed contents of one configuration file. Blocks are
// kept as raw YAML so that For can tell an unset key from a false or
// empty one.
type File struct {
	Defaults map[string]yaml.Node            `yaml:"defaults"`
	Repos    map[string]map[string]yaml.Node `yaml:"repos"`
}

// ReadFile parses the file at path. A missing file yields an empty File
// unless required is set.
func ReadFile(path string, required bool) (*File, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to expand %s", path)
	}

	data, err := os.ReadFile(expanded)
	if os.IsNotExist(err) && !required {
		return &File{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read config file %s", expanded)
	}

	return ParseFile(data)
}

// ParseFile parses configuration file contents.
func ParseFile(data []byte) (*File, error) {
	file := &File{}
	if err := yaml.Unmarshal(data, file); err != nil {
		return nil, errors.Wrap(err, "Failed to parse config")
	}

	// catch bad values now rather than when a repository is selected
	if _, err := decodeSettings(file.Defaults); err != nil {
		return nil, errors.Wrap(err, "Invalid defaults")
	}
	for repo, block := range file.Repos {
		if _, err := decodeSettings(block); err != nil {
			return nil, errors.Wrapf(err, "Invalid settings for %s", repo)
		}
	}
	return file, nil
}

// For returns the settings for repo: its block, if any, over the defaults.
// Repository keys may use ~ and need not be clean.
func (f *File) For(repo string) (Settings, error) {
	merged := map[string]yaml.Node{}

	repo = filepath.Clean(repo)
	for key, block := range f.Repos {
		expanded, err := homedir.Expand(key)
		if err != nil {
			return Settings{}, errors.Wrapf(err, "Failed to expand repository %s", key)
		}
		if filepath.Clean(expanded) == repo {
			for name, value := range block {
				merged[name] = value
			}
			break
		}
	}

	// keys set for the repository take precedence
	for name, value := range f.Defaults {
		if _, found := merged[name]; !found {
			merged[name] = value
		}
	}

	return decodeSettings(merged)
}

func decodeSettings(block map[string]yaml.Node) (Settings, error) {
	var settings Settings

	mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for name, value := range block {
		value := value
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			&value)
	}

	if err := mapping.Decode(&settings); err != nil {
		return Settings{}, errors.Wrap(err, "Failed to decode settings")
	}
	return settings, nil
}

// Config is the configuration in effect for one repository.
type Config struct {
	Repo     string
	SitePath string
	UserPath string

	// Site holds every hook setting; User only contributes the Bugzilla
	// URL and credentials
	Site Settings
	User Settings
}

// Load reads the site file, which must exist, and the user file, which
// need not, and selects the settings for repo.
func Load(sitePath, userPath, repo string) (*Config, error) {
	siteFile, err := ReadFile(sitePath, true)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to load site config")
	}

	userFile, err := ReadFile(userPath, false)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to load user config")
	}

	config := &Config{
		Repo:     repo,
		SitePath: sitePath,
		UserPath: userPath,
	}

	if config.Site, err = siteFile.For(repo); err != nil {
		return nil, err
	}
	if config.User, err = userFile.For(repo); err != nil {
		return nil, err
	}
	return config, nil
}

// Credentials resolves the Bugzilla URL and credentials.
func (c *Config) Credentials() (tracker.Credentials, error) {
	return ResolveCredentials(c.Site, c.User)
}

// UserConfigPolicy returns the site's policy on user credentials.
// Unknown values mean allow.
func (c *Config) UserConfigPolicy() UserConfigPolicy {
	return userConfigPolicy(c.Site)
}

// BugPattern returns the configured bug reference pattern, "" for the default.
func (c *Config) BugPattern() string {
	return stringValue(c.Site.BugRegex, "")
}

func (c *Config) Separator() string {
	return stringValue(c.Site.Separator, changes.DefaultSeparator)
}

func (c *Config) FormatSpec() string {
	return stringValue(c.Site.FormatSpec, changes.DefaultFormatSpec)
}

// HookOptions returns the settings steering the hooks.
func (c *Config) HookOptions() hooks.Options {
	options := hooks.Options{
		RefPrefix:       stringValue(c.Site.RefPrefix, ""),
		IncludeDiffStat: boolValue(c.Site.IncludeDiffStat, true),
		RequireBugRef:   boolValue(c.Site.RequireBugRef, true),
	}
	if c.Site.AllowedBugStates != nil {
		options.AllowedStatuses = []string(c.Site.AllowedBugStates)
	}
	return options
}

// ResolveCredentials picks the Bugzilla URL and credentials from site and
// user settings. The URL comes from the site when set there. The site's
// user_config policy decides the credentials:
//
//	force  user credentials only
//	deny   site credentials only, which must be complete
//	allow  complete user credentials, else site credentials
//
// User and password count only when both are set.
func ResolveCredentials(site, user Settings) (tracker.Credentials, error) {
	credentials := tracker.Credentials{
		URL:    stringValue(site.BugzillaURL, stringValue(user.BugzillaURL, "")),
		Source: tracker.CredentialSourceNone,
	}

	siteUser, sitePassword, siteComplete := auth(site)
	userUser, userPassword, userComplete := auth(user)

	switch userConfigPolicy(site) {
	case UserConfigForce:
		if userComplete {
			credentials.User, credentials.Password = userUser, userPassword
			credentials.Source = tracker.CredentialSourceUser
		}
	case UserConfigDeny:
		if !siteComplete {
			return tracker.Credentials{}, errors.New("No default Bugzilla auth found. " +
				"Cannot use user-auth because user_config is set to 'deny'")
		}
		credentials.User, credentials.Password = siteUser, sitePassword
		credentials.Source = tracker.CredentialSourceSite
	default:
		if userComplete {
			credentials.User, credentials.Password = userUser, userPassword
			credentials.Source = tracker.CredentialSourceUser
		} else if siteComplete {
			credentials.User, credentials.Password = siteUser, sitePassword
			credentials.Source = tracker.CredentialSourceSite
		}
	}

	return credentials, nil
}

func auth(settings Settings) (string, string, bool) {
	if settings.BugzillaUser == nil || settings.BugzillaPassword == nil {
		return "", "", false
	}
	return *settings.BugzillaUser, *settings.BugzillaPassword, true
}

func userConfigPolicy(site Settings) UserConfigPolicy {
	switch policy := UserConfigPolicy(stringValue(site.UserConfig, "")); policy {
	case UserConfigDeny, UserConfigForce:
		return policy
	}
	return UserConfigAllow
}

func stringValue(value *string, defaultValue string) string {
	if value == nil {
		return defaultValue
	}
	return *value
}

func boolValue(value *bool, defaultValue bool) bool {
	if value == nil {
		return defaultValue
	}
	return *value
}
