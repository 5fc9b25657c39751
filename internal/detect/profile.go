// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package detect

import (
	"fmt"
	"math"
	"strings"
)

// =============================================================================
// GPU DESCRIPTOR
// =============================================================================

// GPU describes one graphics adapter as reported by the OS.
type GPU struct {
	// Name of the GPU (e.g., "NVIDIA GeForce RTX 4090")
	Name string `json:"name"`
	// VRAMMB is the reported VRAM in megabytes
	VRAMMB int `json:"vram_mb"`
}

// VRAMGB returns the VRAM in gigabytes rounded to one decimal.
func (g GPU) VRAMGB() float64 {
	return round1(float64(g.VRAMMB) / 1024)
}

// String returns a formatted string representation of the GPU.
func (g GPU) String() string {
	return fmt.Sprintf("%s (%.1f GB VRAM)", g.Name, g.VRAMGB())
}

// =============================================================================
// HARDWARE PROFILE
// =============================================================================

// HardwareProfile is a normalized description of the host's compute capacity.
//
// When UnifiedMemory is true, GPUs holds at most one synthetic entry for the
// shared pool and every VRAM figure is derived from RAMGB instead.
type HardwareProfile struct {
	OS         string  `json:"os"`
	CPUName    string  `json:"cpu_name"`
	CPUCores   int     `json:"cpu_cores"`
	CPUThreads int     `json:"cpu_threads"`
	RAMGB      float64 `json:"ram_gb"`
	GPUs       []GPU   `json:"gpus"`
	// UnifiedMemory is set on shared-memory SoCs where CPU and GPU draw
	// from the same physical pool.
	UnifiedMemory bool `json:"is_unified_memory"`
}

// BestVRAMGB returns the largest single-GPU VRAM in GB, or RAMGB on unified
// memory hosts. Zero when no GPU is present.
func (p *HardwareProfile) BestVRAMGB() float64 {
	if p.UnifiedMemory {
		return p.RAMGB
	}
	best := 0
	for _, g := range p.GPUs {
		if g.VRAMMB > best {
			best = g.VRAMMB
		}
	}
	return round1(float64(best) / 1024)
}

// TotalVRAMGB returns the VRAM summed over every GPU in GB, or RAMGB on
// unified memory hosts.
func (p *HardwareProfile) TotalVRAMGB() float64 {
	if p.UnifiedMemory {
		return p.RAMGB
	}
	total := 0
	for _, g := range p.GPUs {
		total += g.VRAMMB
	}
	return round1(float64(total) / 1024)
}

// MultiGPU reports whether more than one GPU entry is present.
func (p *HardwareProfile) MultiGPU() bool {
	return len(p.GPUs) > 1
}

// HasGPU reports whether any GPU entry is present.
func (p *HardwareProfile) HasGPU() bool {
	return len(p.GPUs) > 0
}

// Summary returns a one-line description used in logs and doctor output.
func (p *HardwareProfile) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s, %d cores / %d threads, %.1f GB RAM", p.CPUName, p.CPUCores, p.CPUThreads, p.RAMGB)
	switch {
	case p.UnifiedMemory:
		sb.WriteString(", unified memory")
	case len(p.GPUs) == 0:
		sb.WriteString(", no GPU")
	default:
		names := make([]string, 0, len(p.GPUs))
		for _, g := range p.GPUs {
			names = append(names, g.String())
		}
		sb.WriteString(", ")
		sb.WriteString(strings.Join(names, ", "))
	}
	return sb.String()
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
