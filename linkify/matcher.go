// Copyright © 2026 Xolmis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: linkify/matcher.go
// Summary: Locates rule matches in stripped text and validates them
// against the filesystem.

package linkify

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/dandavison/xolmis/parser"
	"github.com/dandavison/xolmis/rules"
)

// Match is a validated rule match ready for injection. SourceStart and
// SourceEnd delimit the byte range of the decoded string to wrap; AbsPath
// is resolved against the working directory.
type Match struct {
	Rule                   string
	StrippedStart          int
	StrippedEnd            int
	SourceStart, SourceEnd int
	AbsPath                string
	Line, Col              int
}

// findMatches scans stripped text with each rule in priority order,
// drops overlapping lower-priority candidates, validates paths against
// the existence probe, and maps surviving wrap ranges back to source
// byte offsets.
func (t *Transformer) findMatches(stripped *parser.Stripped) []Match {
	text := stripped.Text()
	if text == "" {
		return nil
	}

	var accepted []rules.Candidate
	for _, rule := range t.rules {
		for _, groups := range rule.Pattern.FindAllStringSubmatchIndex(text, -1) {
			cand, ok := rule.Extract(text, groups)
			if !ok {
				continue
			}
			if strings.TrimSpace(cand.Path) == "" {
				continue
			}
			if overlapsAny(accepted, cand) {
				continue
			}
			cand.Path = strings.TrimSpace(cand.Path)
			accepted = append(accepted, withRule(cand, rule.Name))
		}
	}
	if len(accepted) == 0 {
		return nil
	}
	sort.Slice(accepted, func(i, j int) bool { return accepted[i].Start < accepted[j].Start })

	cwd := ""
	out := make([]Match, 0, len(accepted))
	for _, cand := range accepted {
		abs := cand.Path
		if !filepath.IsAbs(abs) {
			if cwd == "" {
				cwd = t.cwd()
			}
			abs = filepath.Join(cwd, abs)
		}
		if t.requireExisting && !t.exists(abs) {
			continue
		}
		srcStart, srcEnd := stripped.SourceRange(cand.WrapStart, cand.WrapEnd)
		out = append(out, Match{
			Rule:          cand.RuleName,
			StrippedStart: cand.WrapStart,
			StrippedEnd:   cand.WrapEnd,
			SourceStart:   srcStart,
			SourceEnd:     srcEnd,
			AbsPath:       abs,
			Line:          cand.Line,
			Col:           cand.Col,
		})
	}
	return out
}

func overlapsAny(accepted []rules.Candidate, cand rules.Candidate) bool {
	for _, a := range accepted {
		if cand.Start < a.End && a.Start < cand.End {
			return true
		}
	}
	return false
}

func withRule(c rules.Candidate, name string) rules.Candidate {
	c.RuleName = name
	return c
}
