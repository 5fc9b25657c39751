// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// =============================================================================
// PROFILE ERRORS
// =============================================================================

var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrProfileExists      = errors.New("profile already exists")
	ErrDefaultProfile     = errors.New("the default profile cannot be changed or deleted")
	ErrInvalidProfileName = errors.New("profile names may only contain letters, digits, '-' and '_'")
)

// ErrActiveProfileMissing means active_profile names a profile that is not
// defined. The rest of the file is still usable.
var ErrActiveProfileMissing = errors.New("active profile does not exist")

var profileNameRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// =============================================================================
// PROFILE OPERATIONS
// =============================================================================

// ProfileNames returns every profile name, "default" first, the rest sorted.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		if name != DefaultProfile {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return append([]string{DefaultProfile}, names...)
}

// HasProfile reports whether name exists. "default" always exists.
func (c *Config) HasProfile(name string) bool {
	if name == DefaultProfile {
		return true
	}
	_, ok := c.Profiles[name]
	return ok
}

// CreateProfile adds a profile with the given overrides. Unknown keys are
// skipped and returned so callers can warn; invalid values are rejected.
func (c *Config) CreateProfile(name string, overrides map[string]string) (skipped []string, err error) {
	if !profileNameRegex.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProfileName, name)
	}
	if c.HasProfile(name) {
		return nil, fmt.Errorf("%w: %s", ErrProfileExists, name)
	}

	profile := make(map[string]any, len(overrides))
	for k, v := range overrides {
		if !IsKey(k) {
			skipped = append(skipped, k)
			continue
		}
		profile[k] = v
	}
	sort.Strings(skipped)

	if _, err := apply(c.Settings, profile); err != nil {
		return skipped, err
	}
	if c.Profiles == nil {
		c.Profiles = map[string]map[string]any{}
	}
	c.Profiles[name] = profile
	return skipped, nil
}

// DeleteProfile removes a profile. Deleting the active profile makes
// "default" active.
func (c *Config) DeleteProfile(name string) error {
	if name == DefaultProfile {
		return ErrDefaultProfile
	}
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	delete(c.Profiles, name)
	if c.ActiveProfile == name {
		c.ActiveProfile = DefaultProfile
	}
	return nil
}

// SwitchProfile makes name the active profile.
func (c *Config) SwitchProfile(name string) error {
	if !c.HasProfile(name) {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	c.ActiveProfile = name
	return nil
}

// SetProfileValue sets one override in an existing profile.
func (c *Config) SetProfileValue(name, key, value string) error {
	if name == DefaultProfile {
		return ErrDefaultProfile
	}
	profile, ok := c.Profiles[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	if !IsKey(key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	next := make(map[string]any, len(profile)+1)
	for k, v := range profile {
		next[k] = v
	}
	next[key] = value
	if _, err := apply(c.Settings, next); err != nil {
		return err
	}
	c.Profiles[name] = next
	return nil
}

// Effective returns the base settings merged with a profile's overrides.
// An empty name uses the active profile.
func (c *Config) Effective(name string) (Settings, error) {
	if name == "" {
		name = c.ActiveProfile
	}
	if name == "" || name == DefaultProfile {
		return c.Settings, nil
	}
	profile, ok := c.Profiles[name]
	if !ok {
		return c.Settings, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return apply(c.Settings, profile)
}

// apply overlays overrides onto base and validates the result. Keys that
// are not settings are ignored.
func apply(base Settings, overrides map[string]any) (Settings, error) {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := base
	for _, k := range keys {
		if !IsKey(k) {
			continue
		}
		if err := s.Set(k, fmt.Sprint(overrides[k])); err != nil {
			return base, fmt.Errorf("%s: %w", k, err)
		}
	}
	if err := s.Validate(); err != nil {
		return base, err
	}
	return s, nil
}

// ParseAssignments splits KEY=VALUE arguments.
func ParseAssignments(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("expected KEY=VALUE, got %q", a)
		}
		out[k] = v
	}
	return out, nil
}
