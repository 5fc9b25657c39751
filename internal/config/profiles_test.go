// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfiles_Lifecycle(t *testing.T) {
	cfg := Default()
	assert.Equal(t, []string{"default"}, cfg.ProfileNames())

	skipped, err := cfg.CreateProfile("laptop", map[string]string{
		"default_top_n": "5",
		"color":         "blue",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"color"}, skipped)

	_, err = cfg.CreateProfile("batch_01", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "batch_01", "laptop"}, cfg.ProfileNames())

	require.NoError(t, cfg.SwitchProfile("laptop"))
	eff, err := cfg.Effective("")
	require.NoError(t, err)
	assert.Equal(t, 5, eff.DefaultTopN)

	require.NoError(t, cfg.SetProfileValue("laptop", "offline_mode", "yes"))
	eff, err = cfg.Effective("laptop")
	require.NoError(t, err)
	assert.True(t, eff.OfflineMode)

	require.NoError(t, cfg.DeleteProfile("laptop"))
	assert.Equal(t, DefaultProfile, cfg.ActiveProfile)
	assert.False(t, cfg.HasProfile("laptop"))
}

func TestProfiles_Errors(t *testing.T) {
	cfg := Default()
	_, err := cfg.CreateProfile("work", nil)
	require.NoError(t, err)

	_, err = cfg.CreateProfile("work", nil)
	assert.ErrorIs(t, err, ErrProfileExists)

	_, err = cfg.CreateProfile("default", nil)
	assert.ErrorIs(t, err, ErrProfileExists)

	_, err = cfg.CreateProfile("bad name!", nil)
	assert.ErrorIs(t, err, ErrInvalidProfileName)

	_, err = cfg.CreateProfile("tiny", map[string]string{"default_top_n": "0"})
	assert.Error(t, err)
	assert.False(t, cfg.HasProfile("tiny"))

	assert.ErrorIs(t, cfg.DeleteProfile("default"), ErrDefaultProfile)
	assert.ErrorIs(t, cfg.DeleteProfile("ghost"), ErrProfileNotFound)
	assert.ErrorIs(t, cfg.SwitchProfile("ghost"), ErrProfileNotFound)
	assert.ErrorIs(t, cfg.SetProfileValue("ghost", "default_top_n", "3"), ErrProfileNotFound)
	assert.ErrorIs(t, cfg.SetProfileValue("default", "default_top_n", "3"), ErrDefaultProfile)
	assert.ErrorIs(t, cfg.SetProfileValue("work", "nope", "3"), ErrUnknownKey)
	assert.Error(t, cfg.SetProfileValue("work", "default_use_case", "gaming"))

	_, err = cfg.Effective("ghost")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestProfiles_DefaultAlwaysListed(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.HasProfile("default"))
	require.NoError(t, cfg.SwitchProfile("default"))
	eff, err := cfg.Effective("default")
	require.NoError(t, err)
	assert.Equal(t, cfg.Settings, eff)
}

func TestParseAssignments(t *testing.T) {
	got, err := ParseAssignments([]string{"default_top_n=5", "export_dir=/tmp/a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"default_top_n": "5", "export_dir": "/tmp/a=b"}, got)

	_, err = ParseAssignments([]string{"novalue"})
	assert.Error(t, err)
}
