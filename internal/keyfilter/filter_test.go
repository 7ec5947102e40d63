// SPDX-License-Identifier: MPL-2.0

package keyfilter

import (
	"maps"
	"slices"
	"testing"

	"github.com/invowk/envinject/internal/dotenv"
)

func loaded(t *testing.T) dotenv.Vars {
	t.Helper()
	vars, err := dotenv.Parse([]byte("A=1\nB=2\nC=3\nD=4"), "test.env")
	if err != nil {
		t.Fatal(err)
	}
	return vars
}

func TestApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		policy   Policy
		wantKeys []string
		wantKind Kind
	}{
		{"no policy keeps everything", Policy{}, []string{"A", "B", "C", "D"}, KindNone},
		{"include keeps listed keys", Policy{Include: []string{"A", "C"}}, []string{"A", "C"}, KindInclude},
		{"include ignores unknown keys", Policy{Include: []string{"C", "Z"}}, []string{"C"}, KindInclude},
		{"include order does not matter", Policy{Include: []string{"D", "A"}}, []string{"A", "D"}, KindInclude},
		{"exclude drops listed keys", Policy{Exclude: []string{"B", "D"}}, []string{"A", "C"}, KindExclude},
		{"exclude unknown keys is a noop", Policy{Exclude: []string{"Z"}}, []string{"A", "B", "C", "D"}, KindExclude},
		{"include wins over exclude", Policy{Include: []string{"A", "B"}, Exclude: []string{"A"}}, []string{"A", "B"}, KindInclude},
		{"empty include falls through to exclude", Policy{Include: []string{}, Exclude: []string{"A"}}, []string{"B", "C", "D"}, KindExclude},
		{"keys are case-sensitive", Policy{Include: []string{"a"}}, []string{}, KindInclude},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.policy.Kind(); got != tt.wantKind {
				t.Errorf("Kind() = %q, want %q", got, tt.wantKind)
			}

			got := Apply(loaded(t), tt.policy)
			if !slices.Equal(got.Keys(), tt.wantKeys) {
				t.Errorf("Apply() keys = %v, want %v", got.Keys(), tt.wantKeys)
			}
		})
	}
}

func TestApply_IncludeMatchesIntersection(t *testing.T) {
	t.Parallel()

	vars := loaded(t)
	include := []string{"B", "D", "MISSING"}

	got := Apply(vars, Policy{Include: include, Exclude: []string{"B"}}).Map()

	want := map[string]string{}
	for _, k := range include {
		if v, ok := vars.Get(k); ok {
			want[k] = v
		}
	}
	if !maps.Equal(got, want) {
		t.Errorf("Apply() = %v, want %v", got, want)
	}
}

func TestApply_ExcludeMatchesDifference(t *testing.T) {
	t.Parallel()

	vars := loaded(t)
	exclude := []string{"A", "MISSING"}

	got := Apply(vars, Policy{Exclude: exclude}).Map()

	want := vars.Map()
	for _, k := range exclude {
		delete(want, k)
	}
	if !maps.Equal(got, want) {
		t.Errorf("Apply() = %v, want %v", got, want)
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	vars := loaded(t)
	_ = Apply(vars, Policy{Include: []string{"A"}})
	_ = Apply(vars, Policy{Exclude: []string{"A"}})

	if vars.Len() != 4 {
		t.Errorf("input Len() = %d after Apply, want 4", vars.Len())
	}
}
