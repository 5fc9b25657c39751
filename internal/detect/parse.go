// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package detect

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// =============================================================================
// TOOL OUTPUT PARSERS
// =============================================================================

// ParseNvidiaSmi parses `nvidia-smi --query-gpu=name,memory.total
// --format=csv,noheader,nounits` output. Malformed lines are skipped.
func ParseNvidiaSmi(out string) []GPU {
	var gpus []GPU
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		parts := strings.Split(line, ",")
		if len(parts) != 2 {
			continue
		}
		mb, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			continue
		}
		gpus = append(gpus, GPU{Name: strings.TrimSpace(parts[0]), VRAMMB: mb})
	}
	return gpus
}

// ParseRocmSmi parses `rocm-smi --showmeminfo vram --csv` output.
// The "VRAM Total Memory (B)" column is located from the header row and
// each card row becomes one GPU.
func ParseRocmSmi(out string) []GPU {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	col := -1
	var gpus []GPU
	for _, line := range lines {
		parts := strings.Split(strings.TrimSpace(line), ",")
		if col < 0 {
			for i, p := range parts {
				if strings.Contains(p, "VRAM Total Memory") {
					col = i
					break
				}
			}
			continue
		}
		if col >= len(parts) {
			continue
		}
		b, err := strconv.ParseInt(strings.TrimSpace(parts[col]), 10, 64)
		if err != nil || b <= 0 {
			continue
		}
		gpus = append(gpus, GPU{Name: "AMD GPU (ROCm)", VRAMMB: int(b / (1 << 20))})
	}
	return gpus
}

// ParseSystemProfiler parses `system_profiler SPDisplaysDataType` output.
// A "Chipset Model:" line opens a GPU and the next VRAM line closes it.
func ParseSystemProfiler(out string) []GPU {
	var gpus []GPU
	current := ""
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.Contains(line, "Chipset Model:"):
			current = strings.TrimSpace(strings.SplitN(line, ":", 2)[1])
		case strings.Contains(line, "VRAM") && current != "":
			parts := strings.Split(line, ":")
			if len(parts) != 2 {
				continue
			}
			mb, ok := parseVRAMString(parts[1])
			if !ok {
				continue
			}
			gpus = append(gpus, GPU{Name: current, VRAMMB: mb})
			current = ""
		}
	}
	return gpus
}

// parseVRAMString converts "8 GB" or "1536 MB" to megabytes.
func parseVRAMString(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	mult := 0.0
	switch {
	case strings.Contains(s, "gb"):
		s, mult = strings.ReplaceAll(s, "gb", ""), 1024
	case strings.Contains(s, "mb"):
		s, mult = strings.ReplaceAll(s, "mb", ""), 1
	default:
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return int(v * mult), true
}

// ParseCPUInfo extracts the model name and physical core count from
// /proc/cpuinfo.
func ParseCPUInfo(data string) (name string, cores int) {
	name, cores = "Unknown CPU", 1
	for _, line := range strings.Split(data, "\n") {
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		switch key {
		case "model name":
			name = val
		case "cpu cores":
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				cores = n
			}
		}
	}
	return name, cores
}

// ParseMemInfo returns MemTotal from /proc/meminfo in GB.
func ParseMemInfo(data string) float64 {
	for _, line := range strings.Split(data, "\n") {
		if !strings.HasPrefix(line, "MemTotal") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0
		}
		return round1(float64(kb) / (1 << 20))
	}
	return 0
}

// =============================================================================
// POWERSHELL JSON
// =============================================================================

// psObjects decodes ConvertTo-Json output, which is a bare object for a
// single result and an array otherwise.
func psObjects(out []byte) []map[string]any {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return nil
	}
	if out[0] == '{' {
		var obj map[string]any
		if err := json.Unmarshal(out, &obj); err != nil {
			return nil
		}
		return []map[string]any{obj}
	}
	var list []map[string]any
	if err := json.Unmarshal(out, &list); err != nil {
		return nil
	}
	return list
}

func psNumber(obj map[string]any, key string) float64 {
	if v, ok := obj[key].(float64); ok {
		return v
	}
	return 0
}

// ParseWindowsVideoControllers parses Win32_VideoController JSON.
// Adapters reporting no memory are skipped.
func ParseWindowsVideoControllers(out []byte) []GPU {
	var gpus []GPU
	for _, obj := range psObjects(out) {
		ram := psNumber(obj, "AdapterRAM")
		if ram <= 0 {
			continue
		}
		name, _ := obj["Name"].(string)
		if name == "" {
			name = "Unknown GPU"
		}
		gpus = append(gpus, GPU{Name: name, VRAMMB: int(ram) / (1 << 20)})
	}
	return gpus
}

// ParseWindowsProcessor parses Win32_Processor JSON, keeping the first CPU.
func ParseWindowsProcessor(out []byte, threads int) (name string, cores, logical int) {
	name, cores, logical = "Unknown CPU", 1, threads
	objs := psObjects(out)
	if len(objs) == 0 {
		return name, cores, logical
	}
	first := objs[0]
	if s, _ := first["Name"].(string); s != "" {
		name = strings.TrimSpace(s)
	}
	if n := int(psNumber(first, "NumberOfCores")); n > 0 {
		cores = n
	}
	if n := int(psNumber(first, "NumberOfLogicalProcessors")); n > 0 {
		logical = n
	}
	return name, cores, logical
}

// ParseWindowsMemory parses Win32_ComputerSystem JSON into GB.
func ParseWindowsMemory(out []byte) float64 {
	objs := psObjects(out)
	if len(objs) == 0 {
		return 0
	}
	return round1(psNumber(objs[0], "TotalPhysicalMemory") / (1 << 30))
}
