// Copyright © 2026 Xolmis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/iterator.go
// Summary: Byte-driven ECMA-48 segmentation of decoded terminal output.
// Usage: Consumed by the linkify stages to separate text from control sequences.
// Notes: Elements are borrowed views (offset/length) into the source string.

package parser

// Kind classifies one element of a decoded output string.
type Kind int

const (
	// KindText is a run of bytes with no escape introducer.
	KindText Kind = iota
	// KindSgr is a CSI sequence with final byte 'm' (colors and attributes).
	KindSgr
	// KindOsc is an operating-system-command sequence (ESC ]).
	KindOsc
	// KindCsi is any CSI sequence other than SGR.
	KindCsi
	// KindEsc is a non-CSI, non-OSC escape (two-byte and nF escapes).
	KindEsc
	// KindOther covers string sequences (DCS/SOS/PM/APC) and any malformed
	// or truncated escape at the end of the input.
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindSgr:
		return "Sgr"
	case KindOsc:
		return "Osc"
	case KindCsi:
		return "Csi"
	case KindEsc:
		return "Esc"
	default:
		return "Other"
	}
}

// Element is one span of the source string. The concatenation of all
// elements yielded for a string, in order, reproduces it exactly.
type Element struct {
	Kind   Kind
	Offset int
	Length int
}

// End returns the exclusive end offset of the element.
func (e Element) End() int { return e.Offset + e.Length }

const (
	esc = 0x1b
	bel = 0x07
)

// Iterator yields elements over a decoded string. It is single-pass and
// non-restartable; allocate a new one per string.
type Iterator struct {
	src string
	off int
}

// NewIterator returns an iterator over src.
func NewIterator(src string) *Iterator {
	return &Iterator{src: src}
}

// Next yields the next element. The second return is false once the
// input is exhausted.
func (it *Iterator) Next() (Element, bool) {
	if it.off >= len(it.src) {
		return Element{}, false
	}
	start := it.off
	if it.src[start] != esc {
		// Text run: everything up to the next escape introducer.
		end := start
		for end < len(it.src) && it.src[end] != esc {
			end++
		}
		it.off = end
		return Element{Kind: KindText, Offset: start, Length: end - start}, true
	}
	el := it.scanEscape(start)
	it.off = el.End()
	return el, true
}

// scanEscape consumes one escape sequence starting at the ESC byte at
// position start. Truncated sequences yield KindOther covering the
// remaining bytes rather than being dropped.
func (it *Iterator) scanEscape(start int) Element {
	s := it.src
	if start+1 >= len(s) {
		return Element{Kind: KindOther, Offset: start, Length: len(s) - start}
	}
	switch b := s[start+1]; {
	case b == '[':
		return it.scanCSI(start)
	case b == ']':
		return it.scanString(start, KindOsc, true)
	case b == 'P', b == 'X', b == '^', b == '_':
		// DCS, SOS, PM, APC: ST-terminated strings with opaque payloads.
		return it.scanString(start, KindOther, false)
	case b >= 0x20 && b <= 0x2f:
		return it.scanNF(start)
	case b >= 0x30 && b <= 0x7e:
		// Two-byte escape (Fp/Fe/Fs), e.g. ESC 7, ESC =, ESC M.
		return Element{Kind: KindEsc, Offset: start, Length: 2}
	case b == esc:
		// ESC ESC: the first is malformed, the second re-scans.
		return Element{Kind: KindOther, Offset: start, Length: 1}
	default:
		// Not a recognized introducer; emit ESC plus the byte verbatim.
		return Element{Kind: KindOther, Offset: start, Length: 2}
	}
}

// scanCSI consumes ESC [ parameter bytes (0x30-0x3f), intermediate bytes
// (0x20-0x2f), and a final byte in 0x40-0x7e. SGR is the 'm' final.
func (it *Iterator) scanCSI(start int) Element {
	s := it.src
	i := start + 2
	for i < len(s) {
		b := s[i]
		switch {
		case b >= 0x30 && b <= 0x3f:
			i++
		case b >= 0x20 && b <= 0x2f:
			i++
		case b >= 0x40 && b <= 0x7e:
			kind := KindCsi
			if b == 'm' {
				kind = KindSgr
			}
			return Element{Kind: kind, Offset: start, Length: i + 1 - start}
		default:
			// Byte outside the CSI grammar aborts the sequence; the
			// malformed prefix is its own element, the byte re-scans.
			return Element{Kind: KindOther, Offset: start, Length: i - start}
		}
	}
	return Element{Kind: KindOther, Offset: start, Length: len(s) - start}
}

// scanString consumes an OSC/DCS-family sequence terminated by ST (ESC \)
// or, when allowBel is set, by BEL.
func (it *Iterator) scanString(start int, kind Kind, allowBel bool) Element {
	s := it.src
	i := start + 2
	for i < len(s) {
		b := s[i]
		if allowBel && b == bel {
			return Element{Kind: kind, Offset: start, Length: i + 1 - start}
		}
		if b == esc {
			if i+1 < len(s) && s[i+1] == '\\' {
				return Element{Kind: kind, Offset: start, Length: i + 2 - start}
			}
			// A bare ESC inside the payload ends the sequence; the ESC
			// re-scans as its own element.
			return Element{Kind: kind, Offset: start, Length: i - start}
		}
		i++
	}
	return Element{Kind: KindOther, Offset: start, Length: len(s) - start}
}

// scanNF consumes ESC, intermediate bytes 0x20-0x2f, final byte 0x30-0x7e.
func (it *Iterator) scanNF(start int) Element {
	s := it.src
	i := start + 1
	for i < len(s) && s[i] >= 0x20 && s[i] <= 0x2f {
		i++
	}
	if i < len(s) && s[i] >= 0x30 && s[i] <= 0x7e {
		return Element{Kind: KindEsc, Offset: start, Length: i + 1 - start}
	}
	if i < len(s) {
		return Element{Kind: KindOther, Offset: start, Length: i - start}
	}
	return Element{Kind: KindOther, Offset: start, Length: len(s) - start}
}

// Parse collects all elements of src.
func Parse(src string) []Element {
	it := NewIterator(src)
	var out []Element
	for {
		el, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, el)
	}
}
