// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package detect provides hardware detection for ollama-scout.
//
// This package probes the host for CPU, RAM and GPU capacity and normalizes
// the result into a HardwareProfile. The profile is the only hardware input
// the scoring engine consumes; it is built once per run and never mutated.
//
// # Key Types
//
//   - HardwareProfile: OS, CPU, RAM, GPUs and the unified-memory flag
//   - GPU: a single GPU descriptor (name and VRAM in MB)
//
// # Probes
//
//   - NVIDIA (via nvidia-smi, one line per card)
//   - AMD on Linux (via rocm-smi)
//   - Apple Silicon unified memory (via sysctl)
//   - Other macOS GPUs (via system_profiler)
//   - Windows GPUs, CPU and RAM (via PowerShell CIM queries)
//
// Every probe degrades to zero or empty values when its tool is missing.
// Detect never returns an error.
//
// # Usage
//
//	hw := detect.Detect(ctx)
//	fmt.Printf("%s, %.1f GB RAM, best VRAM %.1f GB\n", hw.CPUName, hw.RAMGB, hw.BestVRAMGB())
package detect
