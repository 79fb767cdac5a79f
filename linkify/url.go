// Copyright © 2026 Xolmis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: linkify/url.go
// Summary: URL template parsing and rendering for OSC 8 hyperlinks.
// Notes: Placeholder substitution only; unknown placeholders are rejected
// at configuration time, not at render time.

package linkify

import (
	"fmt"
	"strings"
)

// DefaultURLTemplate is the scheme applied when no template is configured.
const DefaultURLTemplate = "cursor://file/{abs_path}:{line}"

type segmentKind int

const (
	segLiteral segmentKind = iota
	segAbsPath
	segLine
)

type segment struct {
	kind segmentKind
	text string
}

// URLTemplate is a parsed url_template value with {abs_path} and
// optional {line} placeholders.
type URLTemplate struct {
	segments []segment
}

// ParseURLTemplate validates and compiles a template string.
func ParseURLTemplate(tmpl string) (*URLTemplate, error) {
	t := &URLTemplate{}
	rest := tmpl
	sawPath := false
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			if rest != "" {
				t.segments = append(t.segments, segment{segLiteral, rest})
			}
			break
		}
		close := strings.IndexByte(rest[open:], '}')
		if close < 0 {
			return nil, fmt.Errorf("url template: unterminated placeholder in %q", tmpl)
		}
		if open > 0 {
			t.segments = append(t.segments, segment{segLiteral, rest[:open]})
		}
		name := rest[open+1 : open+close]
		switch name {
		case "abs_path":
			t.segments = append(t.segments, segment{kind: segAbsPath})
			sawPath = true
		case "line":
			t.segments = append(t.segments, segment{kind: segLine})
		default:
			return nil, fmt.Errorf("url template: unknown placeholder {%s}", name)
		}
		rest = rest[open+close+1:]
	}
	if !sawPath {
		return nil, fmt.Errorf("url template: missing {abs_path} placeholder in %q", tmpl)
	}
	return t, nil
}

// Render substitutes absPath and line into the template. When line is zero
// the {line} placeholder and the literal immediately preceding it (the
// ":" separator in the default template) are omitted.
func (t *URLTemplate) Render(absPath string, line int) string {
	var b strings.Builder
	pieces := make([]string, 0, len(t.segments))
	for i, seg := range t.segments {
		switch seg.kind {
		case segLiteral:
			pieces = append(pieces, seg.text)
		case segAbsPath:
			pieces = append(pieces, encodePath(absPath))
		case segLine:
			if line == 0 {
				if n := len(pieces); n > 0 && i > 0 && t.segments[i-1].kind == segLiteral {
					pieces = pieces[:n-1]
				}
				continue
			}
			pieces = append(pieces, fmt.Sprintf("%d", line))
		}
	}
	for _, p := range pieces {
		b.WriteString(p)
	}
	return b.String()
}

const upperhex = "0123456789ABCDEF"

// encodePath percent-encodes every byte outside the URI unreserved set,
// keeping "/" so the path stays readable. Non-ASCII bytes are encoded as
// their UTF-8 octets.
func encodePath(path string) string {
	plain := true
	for i := 0; i < len(path); i++ {
		if !isUnreservedOrSlash(path[i]) {
			plain = false
			break
		}
	}
	if plain {
		return path
	}
	var b strings.Builder
	b.Grow(len(path) + 8)
	for i := 0; i < len(path); i++ {
		c := path[i]
		if isUnreservedOrSlash(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0f])
	}
	return b.String()
}

func isUnreservedOrSlash(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '.' || c == '_' || c == '~' || c == '/':
		return true
	}
	return false
}
