// SPDX-License-Identifier: MPL-2.0

package dotenv

import (
	"errors"
	"slices"
	"testing"

	"github.com/invowk/envinject/pkg/types"
)

func TestParse_Values(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		expected map[string]string
	}{
		{"simple key value", "FOO=bar", map[string]string{"FOO": "bar"}},
		{"multiple key values", "FOO=bar\nBAZ=qux", map[string]string{"FOO": "bar", "BAZ": "qux"}},
		{"empty value", "EMPTY=", map[string]string{"EMPTY": ""}},
		{"value with equals sign", "URL=https://example.com?foo=bar", map[string]string{"URL": "https://example.com?foo=bar"}},
		{"comment line", "# This is a comment\nFOO=bar", map[string]string{"FOO": "bar"}},
		{"inline comment unquoted", "FOO=bar # trailing", map[string]string{"FOO": "bar"}},
		{"no inline comment without space", "FOO=bar#not-a-comment", map[string]string{"FOO": "bar#not-a-comment"}},
		{"double quoted", `FOO="hello world"`, map[string]string{"FOO": "hello world"}},
		{"single quoted", `FOO='hello world'`, map[string]string{"FOO": "hello world"}},
		{"double quoted with escapes", `FOO="hello\nworld\t!"`, map[string]string{"FOO": "hello\nworld\t!"}},
		{"single quoted preserves escapes", `FOO='hello\nworld'`, map[string]string{"FOO": `hello\nworld`}},
		{"double quoted with escaped quote", `FOO="hello \"world\""`, map[string]string{"FOO": `hello "world"`}},
		{"double quoted with escaped backslash", `FOO="path\\to\\file"`, map[string]string{"FOO": `path\to\file`}},
		{"double quoted with dollar escape", `FOO="price is \$100"`, map[string]string{"FOO": "price is $100"}},
		{"double quoted keeps hash", `FOO="a # b"`, map[string]string{"FOO": "a # b"}},
		{"double quoted with trailing comment", "A=1\nB=\"two\" # note\nC=3", map[string]string{"A": "1", "B": "two", "C": "3"}},
		{"single quoted with trailing comment", "B='two' # note", map[string]string{"B": "two"}},
		{"quoted with comment and no space", `B="two"#note`, map[string]string{"B": "two"}},
		{"escaped quote before trailing comment", `B="say \"hi\"" # greeting`, map[string]string{"B": `say "hi"`}},
		{"quoted with trailing whitespace", "B=\"two\"   ", map[string]string{"B": "two"}},
		{"export prefix", "export FOO=bar", map[string]string{"FOO": "bar"}},
		{"export prefix with quotes", `export FOO="bar"`, map[string]string{"FOO": "bar"}},
		{"leading whitespace", "  FOO=bar", map[string]string{"FOO": "bar"}},
		{"whitespace around equals", "FOO = bar", map[string]string{"FOO": "bar"}},
		{"empty lines ignored", "FOO=bar\n\n\nBAZ=qux", map[string]string{"FOO": "bar", "BAZ": "qux"}},
		{"windows line endings", "FOO=bar\r\nBAZ=qux\r\n", map[string]string{"FOO": "bar", "BAZ": "qux"}},
		{"references stay literal", "A=1\nB=${A}", map[string]string{"A": "1", "B": "${A}"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			vars, err := Parse([]byte(tt.content), "test.env")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if vars.Len() != len(tt.expected) {
				t.Errorf("Len() = %d, want %d (%v)", vars.Len(), len(tt.expected), vars.Map())
			}
			for k, want := range tt.expected {
				got, ok := vars.Get(k)
				if !ok || got != want {
					t.Errorf("expected %s=%q, got %s=%q (present=%v)", k, want, k, got, ok)
				}
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		line    int
		is      error
	}{
		{"missing equals sign", "FOOBAR", 1, ErrMissingSeparator},
		{"empty variable name", "=value", 1, types.ErrInvalidEnvVarName},
		{"name with space", "MY VAR=value", 1, types.ErrInvalidEnvVarName},
		{"unterminated double quote", "OK=1\nFOO=\"hello world", 2, ErrUnterminatedQuote},
		{"unterminated single quote", `FOO='hello world`, 1, ErrUnterminatedQuote},
		{"double quote only opening", `BAR="`, 1, ErrUnterminatedQuote},
		{"escaped closing quote", `BAR="abc\"`, 1, ErrUnterminatedQuote},
		{"content after closing quote", `BAR="abc" def`, 1, ErrTrailingContent},
		{"error after comments", "# one\n\n# two\nBROKEN", 4, ErrMissingSeparator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.content), "bad.env")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("error should be *ParseError, got %T", err)
			}
			if parseErr.Line != tt.line || parseErr.File != "bad.env" {
				t.Errorf("error location = %s:%d, want bad.env:%d", parseErr.File, parseErr.Line, tt.line)
			}
			if !errors.Is(err, tt.is) {
				t.Errorf("error should wrap %v, got %v", tt.is, err)
			}
		})
	}
}

func TestParse_DuplicateKeyKeepsFirstPosition(t *testing.T) {
	t.Parallel()

	vars, err := Parse([]byte("A=1\nB=2\nA=3"), "dup.env")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, _ := vars.Get("A"); got != "3" {
		t.Errorf("A = %q, want last assignment %q", got, "3")
	}
	if keys := vars.Keys(); !slices.Equal(keys, []string{"A", "B"}) {
		t.Errorf("Keys() = %v, want [A B]", keys)
	}
}

func TestParse_EmptyContent(t *testing.T) {
	t.Parallel()

	vars, err := Parse([]byte("# only comments\n\n"), "empty.env")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vars.Len() != 0 {
		t.Errorf("Len() = %d, want 0", vars.Len())
	}
}
