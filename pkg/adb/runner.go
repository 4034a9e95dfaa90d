/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: runner.go
Description: ADB binary resolution and command execution for the Akaylee
Auditor. Resolves the adb binary from the environment or a local SDK install,
runs commands with context cancellation, and routes every device call through
structured logging.
*/

package adb

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/kleascm/akaylee-auditor/pkg/logging"
)

// ResolveADBPath locates the adb binary. Order: ADB_PATH environment
// variable, the platform-tools install under the user's home SDK, then a
// bare "adb" resolved through PATH.
func ResolveADBPath() string {
	if env := os.Getenv("ADB_PATH"); env != "" {
		return env
	}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates := []string{
			filepath.Join(home, "AppData", "Local", "Android", "Sdk", "platform-tools", "adb.exe"),
			filepath.Join(home, "Android", "Sdk", "platform-tools", "adb"),
			filepath.Join(home, "Library", "Android", "sdk", "platform-tools", "adb"),
		}
		for _, c := range candidates {
			if _, err := os.Stat(c); err == nil {
				return c
			}
		}
	}

	return "adb"
}

// Runner executes adb commands against one device
type Runner struct {
	adbPath string
	serial  string
	logger  *logging.Logger
}

// NewRunner creates a runner for the given device serial. An empty serial
// targets whatever single device adb sees. An empty adbPath triggers
// resolution.
func NewRunner(adbPath, serial string, logger *logging.Logger) *Runner {
	if adbPath == "" {
		adbPath = ResolveADBPath()
	}
	return &Runner{adbPath: adbPath, serial: serial, logger: logger}
}

// Serial returns the device serial this runner targets
func (r *Runner) Serial() string {
	return r.serial
}

// Run executes one adb invocation and returns its stdout. The device serial
// is prepended when set. Output is returned even on a nonzero exit so callers
// can inspect diagnostic text that adb emits alongside failures.
func (r *Runner) Run(ctx context.Context, args ...string) (string, error) {
	out, err := r.RunRaw(ctx, args...)
	return string(out), err
}

// RunRaw executes one adb invocation and returns its raw stdout bytes
func (r *Runner) RunRaw(ctx context.Context, args ...string) ([]byte, error) {
	full := args
	if r.serial != "" {
		full = append([]string{"-s", r.serial}, args...)
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, r.adbPath, full...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	elapsed := time.Since(start)

	if r.logger != nil {
		r.logger.LogDeviceCall(r.serial, args, elapsed, err)
	}

	if err != nil {
		if ctx.Err() != nil {
			return out, fmt.Errorf("adb %s: %w", strings.Join(args, " "), ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return out, fmt.Errorf("adb %s: %v: %s", strings.Join(args, " "), err, msg)
		}
		return out, fmt.Errorf("adb %s: %w", strings.Join(args, " "), err)
	}
	return out, nil
}

// Shell runs a command on the device shell and returns its output
func (r *Runner) Shell(ctx context.Context, args ...string) (string, error) {
	return r.Run(ctx, append([]string{"shell"}, args...)...)
}
