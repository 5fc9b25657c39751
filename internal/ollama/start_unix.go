// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows

package ollama

import (
	"os/exec"
	"syscall"
	"time"
)

// serveReadyTimeout bounds the wait for a freshly started server.
const serveReadyTimeout = 10 * time.Second

// detach gives the server its own process group so it keeps running after
// this process exits.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
