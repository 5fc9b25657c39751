// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows

package ollama

import (
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/windows"
)

// serveReadyTimeout is longer than on Unix; first launch on Windows is slow.
const serveReadyTimeout = 15 * time.Second

// detach starts the server in a new process group with no console window.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: windows.CREATE_NEW_PROCESS_GROUP | windows.CREATE_NO_WINDOW | windows.DETACHED_PROCESS,
	}
}
