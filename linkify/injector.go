// Copyright © 2026 Xolmis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: linkify/injector.go
// Summary: Re-emits the decoded string with OSC 8 hyperlink pairs woven
// around validated matches.
// Notes: Every source byte appears in the output exactly once, in order.

package linkify

import (
	"bytes"

	"github.com/dandavison/xolmis/parser"
)

// OSC 8 wire format: the open sequence carries the URL, the close
// sequence carries an empty one. ST (ESC \) terminates both.
const (
	linkOpenPrefix = "\x1b]8;;"
	linkTerminator = "\x1b\\"
	linkClose      = linkOpenPrefix + linkTerminator
)

func writeOpen(buf *bytes.Buffer, url string) {
	buf.WriteString(linkOpenPrefix)
	buf.WriteString(url)
	buf.WriteString(linkTerminator)
}

func writeClose(buf *bytes.Buffer) {
	buf.WriteString(linkClose)
}

// inject walks elements in order, copying source bytes and inserting a
// hyperlink open/close pair at each match boundary. A match whose source
// range spans non-Text elements (styling inside the link) gets a single
// open/close pair across the styled run; the control sequences in between
// are emitted verbatim. matches and urls are parallel, ordered by
// SourceStart, non-overlapping.
func inject(source string, elements []parser.Element, matches []Match, urls []string, buf *bytes.Buffer) {
	mi := 0
	open := false
	for _, el := range elements {
		if el.Kind != parser.KindText {
			buf.WriteString(source[el.Offset:el.End()])
			continue
		}
		pos := el.Offset
		end := el.End()
		for pos < end {
			switch {
			case open:
				m := matches[mi]
				if m.SourceEnd <= end {
					buf.WriteString(source[pos:m.SourceEnd])
					writeClose(buf)
					open = false
					pos = m.SourceEnd
					mi++
				} else {
					buf.WriteString(source[pos:end])
					pos = end
				}
			case mi < len(matches) && matches[mi].SourceStart < end:
				m := matches[mi]
				buf.WriteString(source[pos:m.SourceStart])
				writeOpen(buf, urls[mi])
				open = true
				pos = m.SourceStart
			default:
				buf.WriteString(source[pos:end])
				pos = end
			}
		}
	}
	// Matches never extend past the final Text element, but close rather
	// than emit an unbalanced pair if one somehow does.
	if open {
		writeClose(buf)
	}
}
