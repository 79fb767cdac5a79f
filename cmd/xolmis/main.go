// Copyright © 2026 Xolmis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/xolmis/main.go
// Summary: CLI entry point: wraps the user's shell and hyperlinks file
// references in its output.

package main

import (
	"fmt"
	"os"

	"github.com/agilira/orpheus/pkg/orpheus"

	"github.com/dandavison/xolmis/config"
	"github.com/dandavison/xolmis/linkify"
	"github.com/dandavison/xolmis/rules"
	"github.com/dandavison/xolmis/shell"
)

var version = "0.2.0"

func main() {
	app := orpheus.New("xolmis").
		SetDescription("Transparent shell wrapper that turns file references into terminal hyperlinks").
		SetVersion(version)

	runCmd := orpheus.NewCommand("run", "Wrap the shell (default command)").
		SetHandler(runHandler)
	runCmd.AddFlag("shell", "s", "", "Shell command to wrap (default: $SHELL)")
	runCmd.AddFlag("url-template", "u", "", "Hyperlink scheme template, e.g. cursor://file/{abs_path}:{line}")
	runCmd.AddFlag("debug-log", "", "", "Append debug logging to this file")
	runCmd.AddBoolFlag("no-existence-check", "", false, "Link every syntactic match without probing the filesystem")
	app.AddCommand(runCmd)

	app.Command("rules", "List recognition rules in priority order", rulesHandler)

	app.SetDefaultCommand("run")

	if err := app.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "xolmis: %v\n", err)
		if oe, ok := err.(*orpheus.OrpheusError); ok {
			os.Exit(oe.ExitCode())
		}
		os.Exit(1)
	}
}

func runHandler(ctx *orpheus.Context) error {
	shell.SetupLogging(ctx.GetFlagString("debug-log"))

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Flags override config file values.
	if s := ctx.GetFlagString("shell"); s != "" {
		cfg.Shell = s
	}
	if u := ctx.GetFlagString("url-template"); u != "" {
		cfg.URLTemplate = u
	}
	if ctx.GetFlagBool("no-existence-check") {
		cfg.RequireExistingPath = false
	}

	tr, err := linkify.New(linkify.Options{
		Rules:              cfg.RuleSet(),
		URLTemplate:        cfg.URLTemplate,
		SkipExistenceCheck: !cfg.RequireExistingPath,
	})
	if err != nil {
		return err
	}

	shellPath := cfg.Shell
	if shellPath == "" {
		shellPath = shell.DefaultShell()
	}

	code, err := shell.Run(shellPath, tr)
	if err != nil {
		return err
	}
	if code != 0 {
		os.Exit(code)
	}
	return nil
}

func rulesHandler(ctx *orpheus.Context) error {
	for i, r := range rules.Baseline() {
		fmt.Printf("%d. %-16s %s\n", i+1, r.Name, r.Pattern.String())
	}
	return nil
}
