// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestId_Constants(t *testing.T) {
	ids := []Id{
		EnvFileParseErrorId,
		EnvFileUnreadableId,
		OptionsFileNotFoundId,
		OptionsFileInvalidId,
		InvalidOptionsId,
		ServiceFileNotFoundId,
		ServiceParseErrorId,
		FunctionNotFoundId,
		UnknownEventId,
	}

	seen := make(map[Id]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true

		if Get(id) == nil {
			t.Errorf("Get(%d) returned nil, every Id needs a catalog entry", id)
		}
	}

	if EnvFileParseErrorId != 1 {
		t.Errorf("EnvFileParseErrorId = %d, want 1", EnvFileParseErrorId)
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		id       Id
		wantNil  bool
		contains string
	}{
		{EnvFileParseErrorId, false, "Failed to parse the dotenv file"},
		{EnvFileUnreadableId, false, "Cannot read the dotenv file"},
		{OptionsFileNotFoundId, false, "Options file not found"},
		{OptionsFileInvalidId, false, "Invalid options file"},
		{InvalidOptionsId, false, "Invalid injection options"},
		{ServiceFileNotFoundId, false, "Service descriptor not found"},
		{ServiceParseErrorId, false, "Failed to parse the service descriptor"},
		{FunctionNotFoundId, false, "Function not found"},
		{UnknownEventId, false, "Unknown lifecycle event"},
		{Id(0), true, ""},
		{Id(999), true, ""},
	}

	for _, tt := range tests {
		got := Get(tt.id)
		if tt.wantNil {
			if got != nil {
				t.Errorf("Get(%d) = %v, want nil", tt.id, got)
			}
			continue
		}
		if got == nil {
			t.Fatalf("Get(%d) returned nil", tt.id)
		}
		if !strings.Contains(string(got.MarkdownMsg()), tt.contains) {
			t.Errorf("Get(%d).MarkdownMsg() should contain %q", tt.id, tt.contains)
		}
	}
}

func TestValues_SortedById(t *testing.T) {
	values := Values()
	if len(values) != len(issues) {
		t.Fatalf("Values() returned %d entries, want %d", len(values), len(issues))
	}
	for i := 1; i < len(values); i++ {
		if values[i-1].Id() >= values[i].Id() {
			t.Errorf("Values() not sorted: %d before %d", values[i-1].Id(), values[i].Id())
		}
	}
}

func TestIssue_ExtLinksAreCloned(t *testing.T) {
	entry := Get(EnvFileParseErrorId)
	links := entry.ExtLinks()
	if len(links) == 0 {
		t.Fatal("expected EnvFileParseErrorId to carry an external link")
	}

	original := links[0]
	links[0] = "modified"
	if entry.ExtLinks()[0] != original {
		t.Error("ExtLinks() should return a clone")
	}
}

func TestIssue_Render(t *testing.T) {
	originalRender := render
	defer func() { render = originalRender }()

	render = func(in string, _ string) (string, error) {
		return in, nil
	}

	rendered, err := Get(EnvFileParseErrorId).Render("dark")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.Contains(rendered, "KEY=VALUE") {
		t.Error("Render() output should contain the message body")
	}
	if !strings.Contains(rendered, "See also") {
		t.Error("Render() output should list links when the issue has them")
	}

	plain, err := Get(UnknownEventId).Render("dark")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if strings.Contains(plain, "See also") {
		t.Error("Render() should not add a links section when the issue has none")
	}
}
