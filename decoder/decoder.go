// Copyright © 2026 Xolmis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: decoder/decoder.go
// Summary: Incremental UTF-8 decoding of pty output chunks.
// Usage: Owned by a single transformer; one instance per output stream.
// Notes: Only a strict prefix of a valid rune is ever carried across calls.

package decoder

import "unicode/utf8"

// Decoder turns byte chunks into string fragments safe for downstream
// byte-offset arithmetic. A trailing incomplete multi-byte sequence is
// buffered and prepended to the next chunk; invalid bytes become U+FFFD
// as soon as invalidity is decidable.
type Decoder struct {
	pending [utf8.UTFMax - 1]byte
	n       int
}

// Decode appends the decoded form of chunk (plus any carried bytes) and
// returns it. It never fails.
func (d *Decoder) Decode(chunk []byte) string {
	var work []byte
	if d.n > 0 {
		work = make([]byte, 0, d.n+len(chunk))
		work = append(work, d.pending[:d.n]...)
		work = append(work, chunk...)
		d.n = 0
	} else {
		work = chunk
	}

	out := make([]byte, 0, len(work))
	i := 0
	for i < len(work) {
		b := work[i]
		if b < utf8.RuneSelf {
			out = append(out, b)
			i++
			continue
		}
		r, size := utf8.DecodeRune(work[i:])
		if r != utf8.RuneError || size > 1 {
			out = append(out, work[i:i+size]...)
			i += size
			continue
		}
		// DecodeRune saw garbage or a truncated sequence. A valid strict
		// prefix at the end of the input is carried to the next call;
		// anything else is replaced immediately.
		if rest := work[i:]; isRunePrefix(rest) {
			d.n = copy(d.pending[:], rest)
			break
		}
		out = utf8.AppendRune(out, utf8.RuneError)
		i++
	}
	return string(out)
}

// Flush replaces any carried partial sequence with U+FFFD. Call it when
// the stream ends so buffered bytes are not silently dropped.
func (d *Decoder) Flush() string {
	if d.n == 0 {
		return ""
	}
	d.n = 0
	return string(utf8.RuneError)
}

// isRunePrefix reports whether p (1 to 3 bytes) is a strict prefix of
// some valid UTF-8 encoding. Ranges follow the RFC 3629 table.
func isRunePrefix(p []byte) bool {
	if len(p) == 0 || len(p) >= utf8.UTFMax {
		return false
	}
	b0 := p[0]
	var total int
	var lo, hi byte // allowed range of the first continuation byte
	switch {
	case b0 >= 0xc2 && b0 <= 0xdf:
		total, lo, hi = 2, 0x80, 0xbf
	case b0 == 0xe0:
		total, lo, hi = 3, 0xa0, 0xbf
	case b0 >= 0xe1 && b0 <= 0xec:
		total, lo, hi = 3, 0x80, 0xbf
	case b0 == 0xed:
		total, lo, hi = 3, 0x80, 0x9f
	case b0 >= 0xee && b0 <= 0xef:
		total, lo, hi = 3, 0x80, 0xbf
	case b0 == 0xf0:
		total, lo, hi = 4, 0x90, 0xbf
	case b0 >= 0xf1 && b0 <= 0xf3:
		total, lo, hi = 4, 0x80, 0xbf
	case b0 == 0xf4:
		total, lo, hi = 4, 0x80, 0x8f
	default:
		return false
	}
	if len(p) >= total {
		return false
	}
	if len(p) >= 2 && (p[1] < lo || p[1] > hi) {
		return false
	}
	if len(p) > 2 {
		for _, b := range p[2:] {
			if b < 0x80 || b > 0xbf {
				return false
			}
		}
	}
	return true
}
