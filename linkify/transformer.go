// Copyright © 2026 Xolmis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: linkify/transformer.go
// Summary: Per-chunk pipeline entry point: decode, segment, match, inject.
// Usage: One Transformer per output stream; invocations must be serialized.
// Notes: When nothing matches, the decoded bytes pass through unchanged.

package linkify

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"

	"github.com/dandavison/xolmis/decoder"
	"github.com/dandavison/xolmis/parser"
	"github.com/dandavison/xolmis/rules"
)

// Options configures a Transformer. Zero values select the defaults
// described on each field.
type Options struct {
	// Rules is the recognition rule set in priority order.
	// Nil selects rules.Baseline().
	Rules []rules.Rule

	// URLTemplate is the hyperlink scheme template. Empty selects
	// DefaultURLTemplate.
	URLTemplate string

	// SkipExistenceCheck disables the filesystem existence gate, so every
	// syntactic match becomes a link.
	SkipExistenceCheck bool

	// Cwd returns the working directory used to resolve relative paths.
	// Nil selects os.Getwd (falling back to "/" on error).
	Cwd func() string

	// Exists is the filesystem existence probe. Nil selects an os.Stat
	// probe that treats every error as "not found".
	Exists func(absPath string) bool
}

// Transformer is the streaming pipeline. Persistent state is the decoder
// and the carry: a trailing span that is withheld because it is a
// truncated escape sequence or could still grow into a rule match once
// the next chunk arrives. Rules and template are immutable after
// construction.
type Transformer struct {
	dec             decoder.Decoder
	carry           string
	rules           []rules.Rule
	tmpl            *URLTemplate
	requireExisting bool
	cwd             func() string
	exists          func(string) bool
	buf             bytes.Buffer
}

// New builds a Transformer, validating the URL template.
func New(opts Options) (*Transformer, error) {
	tmplStr := opts.URLTemplate
	if tmplStr == "" {
		tmplStr = DefaultURLTemplate
	}
	tmpl, err := ParseURLTemplate(tmplStr)
	if err != nil {
		return nil, fmt.Errorf("linkify: %w", err)
	}
	t := &Transformer{
		rules:           opts.Rules,
		tmpl:            tmpl,
		requireExisting: !opts.SkipExistenceCheck,
		cwd:             opts.Cwd,
		exists:          opts.Exists,
	}
	if t.rules == nil {
		t.rules = rules.Baseline()
	}
	if t.cwd == nil {
		t.cwd = defaultCwd
	}
	if t.exists == nil {
		t.exists = defaultExists
	}
	return t, nil
}

func defaultCwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "/"
	}
	return wd
}

// defaultExists treats every stat error as "not found" so the pipeline
// fails closed: no link rather than a dead link.
func defaultExists(absPath string) bool {
	_, err := os.Stat(absPath)
	return err == nil
}

// Transform consumes one raw output chunk and returns the transformed
// bytes. The returned slice is valid until the next call. It never
// fails; when in doubt it emits the input unchanged.
func (t *Transformer) Transform(chunk []byte) []byte {
	source := t.carry + t.dec.Decode(chunk)
	t.carry = ""
	if source == "" {
		return nil
	}
	hold := holdPoint(source)
	t.carry = source[hold:]
	return t.process(source[:hold])
}

// Flush drains the carried tail and any partial multi-byte character.
// Call it once when the stream ends.
func (t *Transformer) Flush() []byte {
	source := t.carry + t.dec.Flush()
	t.carry = ""
	return t.process(source)
}

func (t *Transformer) process(source string) []byte {
	if source == "" {
		return nil
	}
	elements := parser.Parse(source)
	stripped := parser.Strip(source, elements)
	matches := t.findMatches(stripped)
	if len(matches) == 0 {
		return []byte(source)
	}

	urls := make([]string, len(matches))
	for i, m := range matches {
		urls[i] = t.tmpl.Render(m.AbsPath, m.Line)
	}
	log.Printf("linkify: wrapping %d match(es) in %d byte chunk", len(matches), len(source))

	t.buf.Reset()
	t.buf.Grow(len(source) + len(matches)*32)
	inject(source, elements, matches, urls, &t.buf)
	return t.buf.Bytes()
}

const (
	// maxTextCarry bounds how much trailing text may be withheld waiting
	// for a match to complete. Past this, responsiveness wins and the
	// tail is emitted even though a later chunk could have extended it.
	maxTextCarry = 256
	// maxEscapeCarry bounds a truncated escape held across chunks; a
	// hostile OSC payload must not buffer without limit.
	maxEscapeCarry = 4096
)

// reViableTail recognizes a trailing stripped-text span that some
// baseline rule could still complete: an unfinished path:line reference,
// a Python traceback location, or an ipdb frame header. Kept in sync
// with the patterns in the rules package.
var reViableTail = regexp.MustCompile(
	`(?:File(?: "[^"\n]*(?:"(?:,(?: (?:l(?:i(?:n(?:e(?: \d*)?)?)?)?)?)?)?)?)?` +
		`|> [^(\n]+(?:\(\d*)?` +
		`|[A-Za-z0-9_./-]+(?::\d*(?::\d*)?)?)$`)

// holdPoint returns the offset at which source should be cut: bytes
// beyond it are carried into the next chunk. Two things are withheld: a
// truncated escape sequence at the very end, and a trailing stripped-text
// span that is a viable prefix of a rule match. Everything before the
// hold point is safe to transform and emit now.
func holdPoint(source string) int {
	elements := parser.Parse(source)
	hold := len(source)

	if n := len(elements); n > 0 {
		last := elements[n-1]
		if last.Kind == parser.KindOther &&
			last.End() == len(source) &&
			source[last.Offset] == 0x1b &&
			!strings.HasSuffix(source, "\x1b\\") &&
			last.Length <= maxEscapeCarry {
			hold = last.Offset
		}
	}

	stripped := parser.Strip(source, elements)
	text := stripped.Text()
	if loc := reViableTail.FindStringIndex(text); loc != nil {
		if tail := loc[1] - loc[0]; tail > 0 && tail <= maxTextCarry {
			if p := stripped.SourceOffset(loc[0]); p < hold {
				hold = p
			}
		}
	}
	return hold
}
