// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package detect

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// detectTimeout is the default timeout for a full hardware probe.
// CANCELLATION: Context enables timeout and cancellation
const detectTimeout = 10 * time.Second

// runCommand executes an external tool and returns its stdout.
// Replaced in tests.
var runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// lookPath reports whether a tool is on PATH. Replaced in tests.
var lookPath = func(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// readFile reads a procfs file. Replaced in tests.
var readFile = os.ReadFile

// goos and goarch mirror runtime values. Replaced in tests.
var (
	goos   = runtime.GOOS
	goarch = runtime.GOARCH
)

// =============================================================================
// PROFILE CACHE
// =============================================================================

var (
	profileCache         *HardwareProfile
	profileCacheTime     time.Time
	profileCacheMu       sync.Mutex
	profileCacheDuration = 5 * time.Minute
)

// Detect probes the host and returns its hardware profile.
//
// GPU probes run in this order:
//  1. NVIDIA (nvidia-smi, all cards)
//  2. Unified memory on Apple Silicon (synthetic single entry)
//  3. system_profiler on other macOS hosts
//  4. rocm-smi on Linux
//  5. PowerShell CIM query on Windows
//
// The first probe that reports at least one GPU wins.
func Detect() *HardwareProfile {
	return DetectWithContext(context.Background())
}

// DetectWithContext probes the host with context support.
// CANCELLATION: Context enables timeout and cancellation
func DetectWithContext(ctx context.Context) *HardwareProfile {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, detectTimeout)
		defer cancel()
	}

	hw := &HardwareProfile{OS: osDisplayName(goos)}
	hw.CPUName, hw.CPUCores, hw.CPUThreads = detectCPU(ctx)
	hw.RAMGB = detectRAM(ctx)
	hw.UnifiedMemory = isAppleSilicon(ctx)
	hw.GPUs = detectGPUs(ctx, hw)
	return hw
}

// DetectCached returns the cached profile if it is fresh, otherwise it
// performs a full probe and caches the result.
//
// Cache TTL is 5 minutes.
func DetectCached(ctx context.Context) *HardwareProfile {
	profileCacheMu.Lock()
	defer profileCacheMu.Unlock()

	if profileCache != nil && time.Since(profileCacheTime) < profileCacheDuration {
		return profileCache
	}

	hw := DetectWithContext(ctx)
	profileCache = hw
	profileCacheTime = time.Now()
	return hw
}

// ClearCache clears the profile cache, forcing a fresh probe on next call.
func ClearCache() {
	profileCacheMu.Lock()
	defer profileCacheMu.Unlock()
	profileCache = nil
	profileCacheTime = time.Time{}
}

// osDisplayName maps GOOS to the name shown in reports.
func osDisplayName(goos string) string {
	switch goos {
	case "linux":
		return "Linux"
	case "darwin":
		return "Darwin"
	case "windows":
		return "Windows"
	default:
		return goos
	}
}

// =============================================================================
// GPU DETECTION
// =============================================================================

func detectGPUs(ctx context.Context, hw *HardwareProfile) []GPU {
	if gpus := detectNvidia(ctx); len(gpus) > 0 && !hw.UnifiedMemory {
		return gpus
	}

	switch goos {
	case "darwin":
		if hw.UnifiedMemory {
			return []GPU{{
				Name:   hw.CPUName + " (Unified Memory)",
				VRAMMB: int(hw.RAMGB * 1024),
			}}
		}
		return detectMacOS(ctx)
	case "linux":
		return detectAMDLinux(ctx)
	case "windows":
		return detectWindowsGPUs(ctx)
	}
	return nil
}

// detectNvidia lists every NVIDIA card reported by nvidia-smi.
func detectNvidia(ctx context.Context) []GPU {
	for _, path := range nvidiaSmiPaths() {
		out, err := runCommand(ctx, path,
			"--query-gpu=name,memory.total",
			"--format=csv,noheader,nounits")
		if err == nil {
			return ParseNvidiaSmi(string(out))
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
	return nil
}

// nvidiaSmiPaths returns possible paths for nvidia-smi based on OS.
func nvidiaSmiPaths() []string {
	if goos == "windows" {
		return []string{
			"nvidia-smi",
			`C:\Windows\System32\nvidia-smi.exe`,
			`C:\Program Files\NVIDIA Corporation\NVSMI\nvidia-smi.exe`,
		}
	}
	return []string{"nvidia-smi"}
}

func detectAMDLinux(ctx context.Context) []GPU {
	if !lookPath("rocm-smi") {
		return nil
	}
	out, err := runCommand(ctx, "rocm-smi", "--showmeminfo", "vram", "--csv")
	if err != nil {
		return nil
	}
	return ParseRocmSmi(string(out))
}

func detectMacOS(ctx context.Context) []GPU {
	out, err := runCommand(ctx, "system_profiler", "SPDisplaysDataType")
	if err != nil {
		return nil
	}
	return ParseSystemProfiler(string(out))
}

func detectWindowsGPUs(ctx context.Context) []GPU {
	out, err := runCommand(ctx, "powershell", "-NoProfile", "-Command",
		"Get-CimInstance Win32_VideoController | Select-Object Name, AdapterRAM | ConvertTo-Json")
	if err != nil {
		return nil
	}
	return ParseWindowsVideoControllers(out)
}

// isAppleSilicon reports whether the host is an ARM Mac, including
// binaries running under Rosetta.
func isAppleSilicon(ctx context.Context) bool {
	if goos != "darwin" {
		return false
	}
	if goarch == "arm64" {
		return true
	}
	out, err := runCommand(ctx, "sysctl", "-n", "hw.optional.arm64")
	return err == nil && strings.TrimSpace(string(out)) == "1"
}

// =============================================================================
// CPU / RAM DETECTION
// =============================================================================

func detectCPU(ctx context.Context) (name string, cores, threads int) {
	threads = runtime.NumCPU()
	switch goos {
	case "linux":
		data, err := readFile("/proc/cpuinfo")
		if err != nil {
			return "Unknown CPU", 1, threads
		}
		name, cores = ParseCPUInfo(string(data))
		return name, cores, threads
	case "darwin":
		name, cores = "Unknown CPU", threads
		if out, err := runCommand(ctx, "sysctl", "-n", "machdep.cpu.brand_string"); err == nil {
			if s := strings.TrimSpace(string(out)); s != "" {
				name = s
			}
		}
		if out, err := runCommand(ctx, "sysctl", "-n", "hw.physicalcpu"); err == nil {
			if n, err := strconv.Atoi(strings.TrimSpace(string(out))); err == nil && n > 0 {
				cores = n
			}
		}
		return name, cores, threads
	case "windows":
		out, err := runCommand(ctx, "powershell", "-NoProfile", "-Command",
			"Get-CimInstance Win32_Processor | Select-Object Name, NumberOfCores, NumberOfLogicalProcessors | ConvertTo-Json")
		if err != nil {
			return "Unknown CPU", 1, threads
		}
		return ParseWindowsProcessor(out, threads)
	}
	return "Unknown CPU", 1, threads
}

func detectRAM(ctx context.Context) float64 {
	switch goos {
	case "linux":
		data, err := readFile("/proc/meminfo")
		if err != nil {
			return 0
		}
		return ParseMemInfo(string(data))
	case "darwin":
		out, err := runCommand(ctx, "sysctl", "-n", "hw.memsize")
		if err != nil {
			return 0
		}
		bytes, err := strconv.ParseUint(strings.TrimSpace(string(out)), 10, 64)
		if err != nil {
			return 0
		}
		return round1(float64(bytes) / (1 << 30))
	case "windows":
		out, err := runCommand(ctx, "powershell", "-NoProfile", "-Command",
			"Get-CimInstance Win32_ComputerSystem | Select-Object TotalPhysicalMemory | ConvertTo-Json")
		if err != nil {
			return 0
		}
		return ParseWindowsMemory(out)
	}
	return 0
}

// =============================================================================
// DIAGNOSTICS
// =============================================================================

// DiagnoseNoGPU returns hints explaining why no GPU was found.
func DiagnoseNoGPU() []string {
	var hints []string
	switch goos {
	case "darwin":
		hints = append(hints, "Intel Macs without a discrete GPU run models on CPU only")
	case "linux":
		if !lookPath("nvidia-smi") {
			hints = append(hints, "nvidia-smi not found: install the NVIDIA driver if you have an NVIDIA card")
		}
		if !lookPath("rocm-smi") {
			hints = append(hints, "rocm-smi not found: install ROCm if you have an AMD card")
		}
	case "windows":
		if !lookPath("nvidia-smi") {
			hints = append(hints, "nvidia-smi not found: install the latest NVIDIA driver")
		}
	}
	if len(hints) == 0 {
		hints = append(hints, "No supported GPU detected; models will run on CPU")
	}
	return hints
}
