// Copyright © 2026 Xolmis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: linkify/url_test.go
// Summary: Exercises URL template parsing, rendering and percent-encoding.

package linkify

import (
	"strings"
	"testing"
)

func TestDefaultTemplate(t *testing.T) {
	tmpl, err := ParseURLTemplate(DefaultURLTemplate)
	if err != nil {
		t.Fatalf("default template rejected: %v", err)
	}
	if got := tmpl.Render("/repo/src/main.rs", 42); got != "cursor://file//repo/src/main.rs:42" {
		t.Fatalf("rendered %q", got)
	}
}

func TestLineOmittedWithSeparator(t *testing.T) {
	tmpl, err := ParseURLTemplate(DefaultURLTemplate)
	if err != nil {
		t.Fatal(err)
	}
	if got := tmpl.Render("/tmp/x.py", 0); got != "cursor://file//tmp/x.py" {
		t.Fatalf("rendered %q, want no line suffix", got)
	}
}

func TestAlternateScheme(t *testing.T) {
	tmpl, err := ParseURLTemplate("vscode://file/{abs_path}:{line}")
	if err != nil {
		t.Fatal(err)
	}
	if got := tmpl.Render("/a/b.go", 3); got != "vscode://file//a/b.go:3" {
		t.Fatalf("rendered %q", got)
	}
}

func TestUnknownPlaceholderRejected(t *testing.T) {
	if _, err := ParseURLTemplate("x://{abs_path}:{column}"); err == nil {
		t.Fatal("unknown placeholder accepted")
	}
	if _, err := ParseURLTemplate("x://{abs_path"); err == nil {
		t.Fatal("unterminated placeholder accepted")
	}
	if _, err := ParseURLTemplate("x://file/{line}"); err == nil {
		t.Fatal("template without {abs_path} accepted")
	}
}

func TestPercentEncoding(t *testing.T) {
	tmpl, err := ParseURLTemplate("cursor://file/{abs_path}")
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		path string
		want string
	}{
		{"/tmp/a b.py", "/tmp/a%20b.py"},
		{"/tmp/100%.txt", "/tmp/100%25.txt"},
		{"/repo/naïve.rs", "/repo/na%C3%AFve.rs"},
		{"/plain/path_9.go", "/plain/path_9.go"},
	}
	for _, tc := range cases {
		got := tmpl.Render(tc.path, 0)
		if !strings.HasSuffix(got, tc.want) {
			t.Fatalf("path %q rendered %q, want suffix %q", tc.path, got, tc.want)
		}
	}
	// The rendered URL must be pure ASCII.
	got := tmpl.Render("/repo/naïve.rs", 0)
	for i := 0; i < len(got); i++ {
		if got[i] >= 0x80 {
			t.Fatalf("non-ASCII byte in URL %q", got)
		}
	}
}
