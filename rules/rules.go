// Copyright © 2026 Xolmis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: rules/rules.go
// Summary: Recognition rules for source-location references in shell output.
// Usage: Consumed by the linkify matcher to locate candidate file references.
// Notes: Rules are ordered by priority; earlier rules win on overlapping spans.

package rules

import (
	"regexp"
	"strconv"
	"strings"
)

// Location is the semantic payload extracted from a rule match.
// Line and Col are zero when the rule did not capture them.
type Location struct {
	Path string
	Line int
	Col  int
}

// Candidate is one rule match over stripped text. Start/End cover the full
// pattern match and drive overlap suppression between rules. WrapStart/WrapEnd
// is the sub-span to enclose in the hyperlink: the whole "path:line" for a
// bare file reference, just the quoted path for traceback shapes.
type Candidate struct {
	Location
	RuleName           string
	Start, End         int
	WrapStart, WrapEnd int
}

// Rule recognizes one textual shape of a source-location reference.
// Pattern is applied to stripped text (styling removed). Extract turns a
// FindAllStringSubmatchIndex group slice into a Candidate; returning false
// discards the match.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Extract func(stripped string, groups []int) (Candidate, bool)
}

var (
	reFilePath  = regexp.MustCompile(`(?P<path>[A-Za-z0-9_./-]+):(?P<line>\d+)(?::(?P<col>\d+))?`)
	rePyTrace   = regexp.MustCompile(`File "(?P<path>[^"\n]+)", line (?P<line>\d+)`)
	reIpdbTrace = regexp.MustCompile(`> (?P<path>[^(\n]+)\((?P<line>\d+)\)`)

	// A bare word:number like "version 1.2:34" is almost never a file
	// reference. FilePath requires a slash or an extension-like suffix.
	reExtSuffix = regexp.MustCompile(`\.[A-Za-z][A-Za-z0-9]*$`)
)

// Baseline returns the built-in rule set in priority order: traceback
// rules outrank the generic FilePath rule where ranges overlap.
func Baseline() []Rule {
	return []Rule{pythonTraceback(), ipdbTraceback(), filePath()}
}

// ByName resolves a named subset of the baseline set, preserving the
// caller's ordering. Unknown names return false.
func ByName(names []string) ([]Rule, bool) {
	all := Baseline()
	out := make([]Rule, 0, len(names))
	for _, name := range names {
		found := false
		for _, r := range all {
			if r.Name == name {
				out = append(out, r)
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return out, true
}

// groupSpan returns the index range of a named capture group, or (-1, -1).
func groupSpan(re *regexp.Regexp, groups []int, name string) (int, int) {
	for i, n := range re.SubexpNames() {
		if n == name && 2*i+1 < len(groups) {
			return groups[2*i], groups[2*i+1]
		}
	}
	return -1, -1
}

// group returns the submatch text for a named capture group, or "".
func group(re *regexp.Regexp, s string, groups []int, name string) string {
	start, end := groupSpan(re, groups, name)
	if start < 0 {
		return ""
	}
	return s[start:end]
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func filePath() Rule {
	return Rule{
		Name:    "FilePath",
		Pattern: reFilePath,
		Extract: func(s string, groups []int) (Candidate, bool) {
			path := group(reFilePath, s, groups, "path")
			if !strings.Contains(path, "/") && !reExtSuffix.MatchString(path) {
				return Candidate{}, false
			}
			return Candidate{
				Location: Location{
					Path: path,
					Line: atoi(group(reFilePath, s, groups, "line")),
					Col:  atoi(group(reFilePath, s, groups, "col")),
				},
				Start:     groups[0],
				End:       groups[1],
				WrapStart: groups[0],
				WrapEnd:   groups[1],
			}, true
		},
	}
}

func pythonTraceback() Rule {
	return Rule{
		Name:    "PythonTraceback",
		Pattern: rePyTrace,
		Extract: func(s string, groups []int) (Candidate, bool) {
			start, end := groupSpan(rePyTrace, groups, "path")
			return Candidate{
				Location: Location{
					Path: group(rePyTrace, s, groups, "path"),
					Line: atoi(group(rePyTrace, s, groups, "line")),
				},
				Start:     groups[0],
				End:       groups[1],
				WrapStart: start,
				WrapEnd:   end,
			}, true
		},
	}
}

func ipdbTraceback() Rule {
	return Rule{
		Name:    "IpdbTraceback",
		Pattern: reIpdbTrace,
		Extract: func(s string, groups []int) (Candidate, bool) {
			start, end := groupSpan(reIpdbTrace, groups, "path")
			raw := s[start:end]
			trimmed := strings.TrimSpace(raw)
			// Shrink the wrap span to the trimmed path.
			start += strings.Index(raw, trimmed)
			end = start + len(trimmed)
			return Candidate{
				Location: Location{
					Path: trimmed,
					Line: atoi(group(reIpdbTrace, s, groups, "line")),
				},
				Start:     groups[0],
				End:       groups[1],
				WrapStart: start,
				WrapEnd:   end,
			}, true
		},
	}
}
