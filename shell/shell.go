// Copyright © 2026 Xolmis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: shell/shell.go
// Summary: Spawns the wrapped login shell on a pty and forwards both
// directions, transforming the output stream.
// Usage: Invoked once from the CLI; blocks until the shell exits.
// Notes: Each forwarding direction owns its descriptor; output writes go
// to a dup'd stdout so close semantics stay unambiguous.

package shell

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/term"

	"github.com/dandavison/xolmis/linkify"
)

// SetupLogging redirects the standard logger away from stderr. A wrapper
// that logs to the terminal would mangle the stream it protects. path
// overrides the XOLMIS_DEBUG env var; empty path with no env var discards
// all log output.
func SetupLogging(path string) {
	if path == "" {
		path = os.Getenv("XOLMIS_DEBUG")
	}
	if path == "" {
		log.SetOutput(io.Discard)
		return
	}
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		log.SetOutput(io.Discard)
		return
	}
	log.SetOutput(logFile)
	log.SetFlags(log.Ltime | log.Lmicroseconds)
}

// DefaultShell returns the shell to wrap: $SHELL, then /bin/bash.
func DefaultShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/bash"
}

// buildCommand prepares the interactive login shell process.
func buildCommand(shellPath string) *exec.Cmd {
	name := strings.ToLower(filepath.Base(shellPath))
	var args []string
	switch {
	case strings.Contains(name, "bash"), strings.Contains(name, "zsh"), strings.Contains(name, "fish"):
		args = []string{"-l"}
	}
	cmd := exec.Command(shellPath, args...)
	cmd.Env = append(os.Environ(), "XOLMIS=1")
	return cmd
}

// Run wraps shellPath until it exits, piping its output through tr.
// Returns the shell's exit code.
func Run(shellPath string, tr *linkify.Transformer) (int, error) {
	cmd := buildCommand(shellPath)

	winsize := &pty.Winsize{Cols: 80, Rows: 24}
	if cols, rows, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		winsize = &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)}
	}
	ptmx, err := pty.StartWithSize(cmd, winsize)
	if err != nil {
		return 0, fmt.Errorf("shell: start %s: %w", shellPath, err)
	}
	defer ptmx.Close()

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		// Not on a terminal (tests, pipes): forward without raw mode.
		log.Printf("shell: raw mode unavailable: %v", err)
	} else {
		defer term.Restore(int(os.Stdin.Fd()), oldState)
	}

	// The output path owns its own handle on the real terminal.
	outFd, err := syscall.Dup(int(os.Stdout.Fd()))
	if err != nil {
		return 0, fmt.Errorf("shell: dup stdout: %w", err)
	}
	out := os.NewFile(uintptr(outFd), "stdout")
	defer out.Close()

	// Input direction: opaque passthrough, stdin -> pty. The goroutine
	// stays blocked on stdin after the shell exits; the process is about
	// to end anyway, so it is not joined.
	go io.Copy(ptmx, os.Stdin)

	forwardOutput(ptmx, out, tr)

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 0, fmt.Errorf("shell: wait: %w", err)
	}
	return cmd.ProcessState.ExitCode(), nil
}

// forwardOutput runs the pty -> terminal direction through the
// transformer until the pty is closed. Read errors terminate the loop;
// the shell exiting surfaces as EIO on Linux ptys.
func forwardOutput(ptmx *os.File, out *os.File, tr *linkify.Transformer) {
	buf := make([]byte, 4096)
	for {
		n, err := ptmx.Read(buf)
		if n > 0 {
			if _, werr := out.Write(tr.Transform(buf[:n])); werr != nil {
				log.Printf("shell: terminal write: %v", werr)
				return
			}
		}
		if err != nil {
			if tail := tr.Flush(); len(tail) > 0 {
				out.Write(tail)
			}
			return
		}
	}
}
