// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sysexec runs external binaries for the rasterization and
// recognition stages. The Runner interface exists so those stages can be
// tested with stubbed commands.
package sysexec

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Runner abstracts command lookup and execution.
type Runner interface {
	// LookPath reports whether file resolves to an executable on PATH.
	LookPath(file string) (string, error)

	// Run executes name with args, honoring ctx cancellation, and returns
	// captured stdout and stderr.
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// New returns the production Runner backed by os/exec.
func New() Runner {
	return execRunner{}
}

type execRunner struct{}

func (execRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	dur := time.Since(start)

	if err != nil {
		slog.Debug("exec failed",
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"error", err,
			"stderr", truncate(errb.String(), 8<<10),
		)
	} else {
		slog.Debug("exec ok",
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"stdout_bytes", out.Len(),
			"stderr_bytes", errb.Len(),
		)
	}

	return out.Bytes(), errb.Bytes(), err
}

// truncate caps s for log output.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
