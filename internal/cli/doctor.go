// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// doctor.go - System health checks.
//
// Command: doctor [--json] [--fix]
//
// Checks, in order:
//   1. Ollama binary   - installed, with version
//   2. Ollama server   - local HTTP API responding
//   3. GPU / VRAM      - detected accelerators
//   4. RAM             - at least 4 GB
//   5. Disk space      - at least 10 GB free in the home directory
//   6. Internet        - TCP reachability of a public resolver
//   7. Model cache     - catalog cache age against cache_ttl_hours
//   8. Config file     - readable and valid
//   9. Pulled models   - at least one local model
//
// Every check either passes or warns; warnings never fail the command.
// --fix refreshes a missing or stale model cache and starts a stopped server.

package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/sandy-sp/ollama-scout/internal/catalog"
	"github.com/sandy-sp/ollama-scout/internal/config"
	"github.com/sandy-sp/ollama-scout/internal/detect"
)

const (
	minRAMGB        = 4.0
	minDiskGB       = 10.0
	internetAddr    = "8.8.8.8:53"
	internetTimeout = 3 * time.Second
	serverTimeout   = 3 * time.Second
)

// =============================================================================
// DOCTOR STYLES
// =============================================================================

var (
	checkPassStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	checkWarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	checkNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Bold(true).
			Width(16)

	checkMsgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	fixStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true).
			PaddingLeft(2)

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// =============================================================================
// HEALTH CHECK TYPES
// =============================================================================

// CheckStatus is the outcome of a health check.
type CheckStatus int

const (
	// CheckPass indicates the check passed.
	CheckPass CheckStatus = iota
	// CheckWarn indicates a problem that does not stop ollama-scout.
	CheckWarn
)

// String returns the JSON status name.
func (s CheckStatus) String() string {
	if s == CheckPass {
		return "pass"
	}
	return "warn"
}

// Symbol returns the rendered status marker.
func (s CheckStatus) Symbol() string {
	if s == CheckPass {
		return checkPassStyle.Render("[OK]")
	}
	return checkWarnStyle.Render("[!!]")
}

// HealthCheck is a single health check result.
type HealthCheck struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string // Suggested fix command or instruction

	// repair performs Fix in-process for --fix, when possible.
	repair func(ctx context.Context) error
}

// Render returns the check as one line, plus the fix hint for warnings.
func (c *HealthCheck) Render() string {
	result := fmt.Sprintf("%s %s %s", c.Status.Symbol(), checkNameStyle.Render(c.Name), checkMsgStyle.Render(c.Message))
	if c.Status != CheckPass && c.Fix != "" {
		result += "\n" + fixStyle.Render("-> "+c.Fix)
	}
	return result
}

func pass(name, msg string) *HealthCheck {
	return &HealthCheck{Name: name, Status: CheckPass, Message: msg}
}

func warnCheck(name, msg, fix string) *HealthCheck {
	return &HealthCheck{Name: name, Status: CheckWarn, Message: msg, Fix: fix}
}

// =============================================================================
// COMMAND
// =============================================================================

func (a *App) newDoctorCommand() *cobra.Command {
	var (
		jsonOut bool
		fix     bool
	)
	cmd := &cobra.Command{
		Use:     "doctor",
		Aliases: []string{"diag"},
		Short:   "Run system health checks",
		Example: `  ollama-scout doctor
  ollama-scout doctor --json
  ollama-scout doctor --fix`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			checks := a.runAllChecks(cmd.Context())
			if jsonOut {
				return a.doctorJSON(checks)
			}
			a.renderDoctor(checks)
			if fix {
				a.tryFixes(cmd.Context(), checks)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&fix, "fix", false, "Attempt automatic fixes for warnings")
	return cmd
}

func countChecks(checks []*HealthCheck) (passed, warned int) {
	for _, c := range checks {
		if c.Status == CheckPass {
			passed++
		} else {
			warned++
		}
	}
	return passed, warned
}

func (a *App) renderDoctor(checks []*HealthCheck) {
	passed, warned := countChecks(checks)

	a.println()
	a.println(TitleStyle.Render("ollama-scout Doctor"))
	a.println(RenderSeparatorAdaptive())
	for _, c := range checks {
		a.println(c.Render())
	}
	a.println(RenderSeparatorAdaptive())

	parts := []string{fmt.Sprintf("%d passed", passed)}
	if warned > 0 {
		parts = append(parts, checkWarnStyle.Render(fmt.Sprintf("%d warning", warned)))
	}
	a.println(summaryStyle.Render(strings.Join(parts, ", ")))
	if warned == 0 {
		a.println(SuccessStyle.Render("All checks passed."))
	} else {
		a.println(WarningStyle.Render("Some checks returned warnings. See details above."))
	}
	a.println()
}

func (a *App) doctorJSON(checks []*HealthCheck) error {
	passed, warned := countChecks(checks)
	out := make([]DoctorCheck, 0, len(checks))
	for _, c := range checks {
		out = append(out, DoctorCheck{Name: c.Name, Status: c.Status.String(), Message: c.Message, Fix: c.Fix})
	}
	data := DoctorData{
		Checks:  out,
		Summary: DoctorSummary{Passed: passed, Warned: warned, Healthy: warned == 0},
	}
	return NewJSONResponse("doctor", data).Print(a.Out)
}

func (a *App) tryFixes(ctx context.Context, checks []*HealthCheck) {
	attempted := false
	for _, c := range checks {
		if c.Status == CheckPass || c.repair == nil {
			continue
		}
		attempted = true
		if err := c.repair(ctx); err != nil {
			a.println(fmt.Sprintf("  %s Could not fix %s: %s", checkWarnStyle.Render("[!!]"), c.Name, err))
			continue
		}
		a.println(fmt.Sprintf("  %s Fixed %s", checkPassStyle.Render("[OK]"), c.Name))
	}
	if !attempted {
		a.info("Nothing to fix automatically.")
	}
}

// =============================================================================
// CHECKS
// =============================================================================

func (a *App) runAllChecks(ctx context.Context) []*HealthCheck {
	hw := a.hardware(ctx)
	return []*HealthCheck{
		a.checkOllamaBinary(ctx),
		a.checkOllamaServer(ctx),
		checkGPU(hw),
		checkRAM(hw),
		a.checkDisk(),
		a.checkInternet(ctx),
		a.checkModelCache(ctx),
		a.checkConfig(),
		a.checkPulledModels(ctx),
	}
}

func installHint() string {
	switch runtime.GOOS {
	case "windows":
		return "Download from https://ollama.com/download"
	case "darwin":
		return "Run: brew install ollama"
	default:
		return "Run: curl -fsSL https://ollama.com/install.sh | sh"
	}
}

func (a *App) checkOllamaBinary(ctx context.Context) *HealthCheck {
	const name = "Ollama binary"
	r := a.runner()
	if !r.Installed() {
		return warnCheck(name, "not found in PATH", installHint())
	}
	v, err := r.Version(ctx)
	if err != nil {
		return warnCheck(name, "installed but --version failed: "+err.Error(), "Reinstall Ollama")
	}
	return pass(name, "installed ("+v+")")
}

func (a *App) checkOllamaServer(ctx context.Context) *HealthCheck {
	const name = "Ollama server"
	ctx, cancel := context.WithTimeout(ctx, serverTimeout)
	defer cancel()
	if err := a.server().CheckRunning(ctx); err != nil {
		c := warnCheck(name, "not responding at "+a.settings.OllamaHost, "Run: ollama serve")
		if runner := a.runner(); runner.Installed() {
			c.repair = runner.StartServer
		}
		return c
	}
	return pass(name, "running at "+a.settings.OllamaHost)
}

func checkGPU(hw *detect.HardwareProfile) *HealthCheck {
	const name = "GPU / VRAM"
	switch {
	case hw.UnifiedMemory:
		return pass(name, fmt.Sprintf("unified memory, %.0f GB shared", hw.RAMGB))
	case hw.HasGPU():
		names := make([]string, len(hw.GPUs))
		for i, g := range hw.GPUs {
			names[i] = g.Name
		}
		return pass(name, fmt.Sprintf("%s (%.1f GB VRAM)", strings.Join(names, ", "), hw.TotalVRAMGB()))
	default:
		hints := detect.DiagnoseNoGPU()
		return warnCheck(name, "no GPU detected (CPU-only mode)", hints[0])
	}
}

func checkRAM(hw *detect.HardwareProfile) *HealthCheck {
	const name = "RAM"
	msg := fmt.Sprintf("%.1f GB", hw.RAMGB)
	if hw.RAMGB < minRAMGB {
		return warnCheck(name, msg+fmt.Sprintf(" (below %.0f GB)", minRAMGB), "Only the smallest models will run")
	}
	return pass(name, msg)
}

func (a *App) checkDisk() *HealthCheck {
	const name = "Disk space"
	home, err := os.UserHomeDir()
	if err != nil {
		return warnCheck(name, "cannot resolve home directory", "")
	}
	free, err := a.diskFree(home)
	if err != nil {
		return warnCheck(name, "cannot read free space: "+err.Error(), "")
	}
	msg := fmt.Sprintf("%.1f GB free in %s", free, home)
	if free < minDiskGB {
		return warnCheck(name, msg, fmt.Sprintf("Free at least %.0f GB before pulling models", minDiskGB))
	}
	return pass(name, msg)
}

func (a *App) checkInternet(ctx context.Context) *HealthCheck {
	const name = "Internet"
	dial := a.Dial
	if dial == nil {
		dial = dialResolver
	}
	if err := dial(ctx); err != nil {
		return warnCheck(name, "no internet connection", "Use --offline for the built-in model list")
	}
	return pass(name, "reachable")
}

func dialResolver(ctx context.Context) error {
	d := net.Dialer{Timeout: internetTimeout}
	conn, err := d.DialContext(ctx, "tcp", internetAddr)
	if err != nil {
		return err
	}
	return conn.Close()
}

func (a *App) checkModelCache(ctx context.Context) *HealthCheck {
	const name = "Model cache"
	refresh := func(ctx context.Context) error {
		lr, err := a.loader().Load(ctx, catalog.LoadOptions{ForceRefresh: true})
		if err != nil {
			return err
		}
		if lr.Source != catalog.SourceLive {
			return fmt.Errorf("live fetch failed: %v", lr.FetchErr)
		}
		return nil
	}

	st := a.store()
	if st == nil {
		return warnCheck(name, "cache store unavailable", "")
	}
	snap, err := st.LoadCatalog(ctx)
	if err != nil {
		return warnCheck(name, "cache unreadable: "+err.Error(), "Run: ollama-scout update-models")
	}
	if snap == nil {
		c := warnCheck(name, "no cache (will fetch on first run)", "Run: ollama-scout update-models")
		c.repair = refresh
		return c
	}

	age := snap.Age(a.Now())
	hours := age.Hours()
	ttl := time.Duration(a.settings.CacheTTLHours) * time.Hour
	if age >= ttl {
		c := warnCheck(name, fmt.Sprintf("stale (%.1fh old)", hours), "Run: ollama-scout update-models")
		c.repair = refresh
		return c
	}
	return pass(name, fmt.Sprintf("fresh (%.1fh old, %d models)", hours, len(snap.Entries)))
}

func (a *App) checkConfig() *HealthCheck {
	const name = "Config file"
	if errors.Is(a.cfgErr, config.ErrActiveProfileMissing) {
		return warnCheck(name, "using base settings: "+a.cfgErr.Error(), "Run: ollama-scout profile switch default")
	}
	if a.cfgErr != nil {
		return warnCheck(name, "using defaults: "+a.cfgErr.Error(), "Fix or remove "+a.cfgPath)
	}
	msg := "valid (" + a.cfgPath + ")"
	if a.cfg != nil && a.cfg.ActiveProfile != "" {
		msg += ", profile " + a.cfg.ActiveProfile
	}
	return pass(name, msg)
}

func (a *App) checkPulledModels(ctx context.Context) *HealthCheck {
	const name = "Pulled models"
	pulled := a.runner().ListPulled(ctx)
	if len(pulled) == 0 {
		return warnCheck(name, "no models pulled yet", "Run: ollama-scout recommend, then pull a suggestion")
	}
	names := pulled
	suffix := ""
	if len(names) > pulledPreview {
		names, suffix = names[:pulledPreview], "..."
	}
	return pass(name, fmt.Sprintf("%d pulled: %s%s", len(pulled), strings.Join(names, ", "), suffix))
}
