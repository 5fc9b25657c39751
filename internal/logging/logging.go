// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zerolog loggers handed to every package.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = zerolog.WarnLevel

// Options configure New.
type Options struct {
	// Level is a zerolog level name; empty or invalid means DefaultLevel.
	Level string
	// Verbose forces debug level regardless of Level.
	Verbose bool
	// NoColor disables ANSI colors in console output.
	NoColor bool
	// Out defaults to os.Stderr so logs never mix with report output.
	Out io.Writer
}

// New returns a console logger tagged with app=ollama-scout.
func New(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	console := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "15:04:05",
		NoColor:    opts.NoColor,
	}

	return zerolog.New(console).
		Level(ParseLevel(opts.Level, opts.Verbose)).
		With().
		Timestamp().
		Str("app", "ollama-scout").
		Logger()
}

// ParseLevel resolves a level name, with verbose taking precedence.
func ParseLevel(name string, verbose bool) zerolog.Level {
	if verbose {
		return zerolog.DebugLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || lvl == zerolog.NoLevel {
		return DefaultLevel
	}
	return lvl
}

// Component derives a sub-logger for one package.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
