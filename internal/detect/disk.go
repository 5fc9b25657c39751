// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package detect

// FreeDiskGB returns the free space in GB on the filesystem holding path.
func FreeDiskGB(path string) (float64, error) {
	b, err := freeDiskBytes(path)
	if err != nil {
		return 0, err
	}
	return round1(float64(b) / (1 << 30)), nil
}
