// SPDX-License-Identifier: MPL-2.0

package dotenv

import (
	"testing"
)

func TestExpand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		environ  []string
		expected map[string]string
	}{
		{
			name:     "reference to earlier key",
			content:  "A=1\nB=${A}-x",
			expected: map[string]string{"A": "1", "B": "1-x"},
		},
		{
			name:     "bare dollar reference",
			content:  "HOST=db\nURL=postgres://$HOST:5432",
			expected: map[string]string{"URL": "postgres://db:5432"},
		},
		{
			name:     "ambient environment",
			content:  "GREETING=hi ${USER_NAME}",
			environ:  []string{"USER_NAME=gopher"},
			expected: map[string]string{"GREETING": "hi gopher"},
		},
		{
			name:     "ambient environment wins over file",
			content:  "A=file\nB=${A}",
			environ:  []string{"A=ambient"},
			expected: map[string]string{"A": "file", "B": "ambient"},
		},
		{
			name:     "unset reference is empty",
			content:  "A=x${NOPE}y",
			expected: map[string]string{"A": "xy"},
		},
		{
			name:     "default value",
			content:  "A=${NOPE:-fallback}",
			expected: map[string]string{"A": "fallback"},
		},
		{
			name:     "single pass leaves chained reference raw",
			content:  "A=${B}\nB=${C}\nC=3",
			expected: map[string]string{"A": "${C}", "B": "3", "C": "3"},
		},
		{
			name:     "single quoted is literal",
			content:  "A=1\nB='${A}'",
			expected: map[string]string{"B": "${A}"},
		},
		{
			name:     "escaped dollar in double quotes",
			content:  "A=1\nB=\"cost \\${A}\"",
			expected: map[string]string{"B": "cost ${A}"},
		},
		{
			name:     "double quoted reference",
			content:  "A=1\nB=\"value ${A}\"",
			expected: map[string]string{"B": "value 1"},
		},
		{
			name:     "command substitution kept literally",
			content:  "A=$(whoami)",
			expected: map[string]string{"A": "$(whoami)"},
		},
		{
			name:     "arithmetic kept literally",
			content:  "A=$((2+3))",
			expected: map[string]string{"A": "$((2+3))"},
		},
		{
			name:     "length operator kept literally",
			content:  "A=${#HOME}",
			environ:  []string{"HOME=/home"},
			expected: map[string]string{"A": "${#HOME}"},
		},
		{
			name:     "special parameters kept literally",
			content:  "A=pid-$$\nB=$1",
			expected: map[string]string{"A": "pid-$$", "B": "$1"},
		},
		{
			name:     "slice kept literally",
			content:  "A=abcdef\nB=${A:1:2}",
			expected: map[string]string{"B": "${A:1:2}"},
		},
		{
			name:     "arithmetic nested in default kept literally",
			content:  "A=${NOPE:-$((1+1))}",
			expected: map[string]string{"A": "${NOPE:-$((1+1))}"},
		},
		{
			name:     "malformed reference kept literally",
			content:  "A=${B",
			expected: map[string]string{"A": "${B"},
		},
		{
			name:     "value without references untouched",
			content:  `A="back\\slash"`,
			expected: map[string]string{"A": `back\slash`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			vars, err := Parse([]byte(tt.content), "test.env")
			if err != nil {
				t.Fatalf("unexpected parse error: %v", err)
			}

			expanded := Expand(vars, tt.environ)
			for k, want := range tt.expected {
				if got, _ := expanded.Get(k); got != want {
					t.Errorf("%s = %q, want %q", k, got, want)
				}
			}
		})
	}
}

func TestExpand_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	vars, err := Parse([]byte("A=1\nB=${A}"), "test.env")
	if err != nil {
		t.Fatal(err)
	}

	_ = Expand(vars, nil)

	if got, _ := vars.Get("B"); got != "${A}" {
		t.Errorf("input B = %q after Expand, want %q", got, "${A}")
	}
}
