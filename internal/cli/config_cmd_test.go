// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func showSettings(t *testing.T, h *harness, args ...string) (map[string]any, string) {
	t.Helper()
	out, err := h.run(append(args, "config", "show", "--json")...)
	require.NoError(t, err)
	data := decodeJSON(t, out)["data"].(map[string]any)
	return data["settings"].(map[string]any), data["profile"].(string)
}

func TestConfig_SetAndShow(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("config", "set", "default_use_case", "coding")
	require.NoError(t, err)
	assert.Contains(t, out, "Set default_use_case = coding (base settings)")

	settings, profile := showSettings(t, h)
	assert.Equal(t, "coding", settings["default_use_case"])
	assert.Equal(t, "default", profile)

	out, err = h.run("config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "default_use_case")
	assert.Contains(t, out, "coding")
}

func TestConfig_SetRejectsBadInput(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("config", "set", "colour", "blue")
	var usage *UsageError
	require.ErrorAs(t, err, &usage)
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	_, err = h.run("config", "set", "default_use_case", "gaming")
	require.ErrorAs(t, err, &usage)

	settings, _ := showSettings(t, h)
	assert.Equal(t, "all", settings["default_use_case"], "rejected values are not saved")
}

func TestConfig_EnvOverridesAreNotPersisted(t *testing.T) {
	h := newHarness(t)
	t.Setenv("OLLAMA_HOST", "http://gpu-box:11434")

	settings, _ := showSettings(t, h)
	assert.Equal(t, "http://gpu-box:11434", settings["ollama_host"])

	_, err := h.run("config", "set", "default_top_n", "5")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(os.Getenv("OLLAMA_SCOUT_HOME"), "config.toml"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "gpu-box")
	assert.Contains(t, string(data), "default_top_n = 5")
}

func TestConfig_Path(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(os.Getenv("OLLAMA_SCOUT_HOME"), "config.toml")+"\n", out)
}

func TestProfile_Flow(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("profile", "create", "work", "default_top_n=3", "ollama_host=http://gpu-box:11434", "bogus=1")
	require.NoError(t, err)
	assert.Contains(t, out, "Created profile work with 2 override(s)")
	assert.Contains(t, h.err.String(), "Ignored unknown key: bogus")

	settings, profile := showSettings(t, h, "--profile", "work")
	assert.Equal(t, "work", profile)
	assert.Equal(t, 3.0, settings["default_top_n"])

	settings, profile = showSettings(t, h)
	assert.Equal(t, "default", profile, "creating does not switch")
	assert.Equal(t, 15.0, settings["default_top_n"])

	_, err = h.run("profile", "switch", "work")
	require.NoError(t, err)
	settings, profile = showSettings(t, h)
	assert.Equal(t, "work", profile)
	assert.Equal(t, "http://gpu-box:11434", settings["ollama_host"])

	_, err = h.run("profile", "set", "work", "default_use_case", "reasoning")
	require.NoError(t, err)

	out, err = h.run("profile", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "default_use_case=reasoning")
	assert.Contains(t, out, "*")

	_, err = h.run("--profile", "work", "config", "set", "offline_mode", "true")
	require.NoError(t, err)
	settings, _ = showSettings(t, h)
	assert.Equal(t, true, settings["offline_mode"])

	_, err = h.run("profile", "delete", "work")
	require.NoError(t, err)
	settings, profile = showSettings(t, h)
	assert.Equal(t, "default", profile, "deleting the active profile reverts to default")
	assert.Equal(t, false, settings["offline_mode"])
}

func TestProfile_Errors(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("profile", "switch", "nope")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))

	_, err = h.run("profile", "delete", "default")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, GetExitCode(err))

	_, err = h.run("profile", "create", "bad name")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, GetExitCode(err))

	_, err = h.run("profile", "create", "work", "missing-equals")
	var usage *UsageError
	require.ErrorAs(t, err, &usage)

	_, err = h.run("--profile", "ghost", "config", "show")
	require.Error(t, err)
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
}

func TestProfile_SwitchRepairsDanglingActiveProfile(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(os.Getenv("OLLAMA_SCOUT_HOME"), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("active_profile = \"gone\"\ndefault_top_n = 4\n"), 0600))

	checks, _ := doctorChecks(t, h)
	assert.Equal(t, "warn", checks["Config file"]["status"])
	assert.Equal(t, "Run: ollama-scout profile switch default", checks["Config file"]["fix"])

	out, err := h.run("profile", "switch", "default")
	require.NoError(t, err)
	assert.Contains(t, out, "default")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `active_profile = "default"`)
	assert.Contains(t, string(data), "default_top_n = 4")

	settings, profile := showSettings(t, h)
	assert.Equal(t, "default", profile)
	assert.Equal(t, 4.0, settings["default_top_n"])
}

func TestConfig_SetRefusesUnreadableFile(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(os.Getenv("OLLAMA_SCOUT_HOME"), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("default_top_n = [broken"), 0600))

	_, err := h.run("config", "set", "default_top_n", "5")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, GetExitCode(err))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "default_top_n = [broken", string(data))
}
