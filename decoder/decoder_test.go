// Copyright © 2026 Xolmis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: decoder/decoder_test.go
// Summary: Exercises incremental UTF-8 decoding across chunk boundaries.

package decoder

import "testing"

func TestAsciiPassthrough(t *testing.T) {
	var d Decoder
	got := d.Decode([]byte("hello world\n"))
	if got != "hello world\n" {
		t.Fatalf("ascii mangled: %q", got)
	}
}

func TestSplitTwoByteRune(t *testing.T) {
	var d Decoder
	if got := d.Decode([]byte{0xc3}); got != "" {
		t.Fatalf("expected empty fragment while rune incomplete, got %q", got)
	}
	if got := d.Decode([]byte{0xa9, ' ', 't'}); got != "é t" {
		t.Fatalf("expected %q, got %q", "é t", got)
	}
}

func TestSplitThreeByteRune(t *testing.T) {
	var d Decoder
	if got := d.Decode([]byte{0xe2, 0x82}); got != "" {
		t.Fatalf("expected empty fragment, got %q", got)
	}
	if got := d.Decode([]byte{0xac}); got != "€" {
		t.Fatalf("expected euro sign, got %q", got)
	}
}

func TestInvalidByteReplacedImmediately(t *testing.T) {
	var d Decoder
	if got := d.Decode([]byte{0xff, 'a'}); got != "�a" {
		t.Fatalf("expected replacement+a, got %q", got)
	}
}

func TestInvalidContinuationNotDeferred(t *testing.T) {
	// 0xC3 followed by a non-continuation byte is decidably invalid in
	// the same chunk; it must not be carried forward.
	var d Decoder
	if got := d.Decode([]byte{0xc3, 'a'}); got != "�a" {
		t.Fatalf("expected %q, got %q", "�a", got)
	}
}

func TestInvalidPrefixAcrossChunks(t *testing.T) {
	var d Decoder
	if got := d.Decode([]byte{0xe0}); got != "" {
		t.Fatalf("expected hold of valid prefix, got %q", got)
	}
	// 0xE0 0x80 is an overlong prefix, invalid at the second byte.
	if got := d.Decode([]byte{0x80, 'x'}); got != "��x" {
		t.Fatalf("expected two replacements, got %q", got)
	}
}

func TestFlushReplacesPending(t *testing.T) {
	var d Decoder
	d.Decode([]byte{0xf0, 0x9f})
	if got := d.Flush(); got != "�" {
		t.Fatalf("expected replacement on flush, got %q", got)
	}
	if got := d.Flush(); got != "" {
		t.Fatalf("second flush should be empty, got %q", got)
	}
}

func TestArbitrarySplitsMatchWholeInput(t *testing.T) {
	input := []byte("naïve — héllo 世界 🎉 end\n")
	var whole Decoder
	want := whole.Decode(input)

	for cut := 0; cut <= len(input); cut++ {
		var d Decoder
		got := d.Decode(input[:cut]) + d.Decode(input[cut:]) + d.Flush()
		if got != want {
			t.Fatalf("split at %d: got %q, want %q", cut, got, want)
		}
	}
}

func TestEveryByteSeparately(t *testing.T) {
	input := []byte("héllo 🎉")
	var whole Decoder
	want := whole.Decode(input)

	var d Decoder
	got := ""
	for _, b := range input {
		got += d.Decode([]byte{b})
	}
	got += d.Flush()
	if got != want {
		t.Fatalf("bytewise feed diverged: got %q, want %q", got, want)
	}
}
