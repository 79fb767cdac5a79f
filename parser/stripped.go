// Copyright © 2026 Xolmis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/stripped.go
// Summary: Stripped-text projection and offset remapping for matching.
// Usage: Gives the matcher a styling-free view with a way back to source bytes.

package parser

import "strings"

// span records where one Text element landed in the stripped projection.
type span struct {
	strippedStart int
	sourceStart   int
	length        int
}

// Stripped is the concatenation of all Text elements of a source string,
// with an index back to source byte offsets. The mapping is monotonic and
// total over [0, len(Text())].
type Stripped struct {
	text  string
	spans []span
}

// Strip builds the stripped projection of source from its elements.
func Strip(source string, elements []Element) *Stripped {
	var b strings.Builder
	st := &Stripped{}
	for _, el := range elements {
		if el.Kind != KindText {
			continue
		}
		st.spans = append(st.spans, span{
			strippedStart: b.Len(),
			sourceStart:   el.Offset,
			length:        el.Length,
		})
		b.WriteString(source[el.Offset:el.End()])
	}
	st.text = b.String()
	return st
}

// Text returns the stripped text used as the matching surface.
func (st *Stripped) Text() string { return st.text }

// SourceOffset maps a byte offset in the stripped text to the
// corresponding byte offset in the source string. Offsets at the very end
// of the stripped text map to the end of the last contributing element.
func (st *Stripped) SourceOffset(off int) int {
	if len(st.spans) == 0 {
		return 0
	}
	for _, sp := range st.spans {
		if off < sp.strippedStart+sp.length {
			d := off - sp.strippedStart
			if d < 0 {
				d = 0
			}
			return sp.sourceStart + d
		}
	}
	last := st.spans[len(st.spans)-1]
	return last.sourceStart + last.length
}

// SourceRange maps a half-open stripped range to a half-open source range.
// The end offset is mapped through the last byte of the range so that a
// range ending exactly at a styling boundary does not swallow the
// following control sequence.
func (st *Stripped) SourceRange(start, end int) (int, int) {
	if end <= start {
		s := st.SourceOffset(start)
		return s, s
	}
	return st.SourceOffset(start), st.SourceOffset(end-1) + 1
}
