// SPDX-License-Identifier: MPL-2.0

package host

import (
	"bytes"
	"errors"
	"maps"
	"slices"
	"strings"
	"testing"

	"github.com/invowk/envinject/internal/config"
	"github.com/invowk/envinject/internal/issue"

	"github.com/spf13/afero"
)

const sampleService = `
service: orders
provider:
  name: aws
  stage: staging
  environment:
    LOG_LEVEL: info
    REGION:
functions:
  create:
    handler: handler.create
    environment:
      TABLE: ""
      PORT: 3000
  list:
    handler: handler.list
  health:
custom:
  injection:
    include: [TABLE, REGION]
    basePath: config/
`

func TestParse(t *testing.T) {
	t.Parallel()

	svc, err := Parse([]byte(sampleService), "serverless.yml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if svc.Name != "orders" {
		t.Errorf("Name = %q", svc.Name)
	}
	if svc.Provider.Name != "aws" || svc.Provider.Stage != "staging" {
		t.Errorf("Provider = %+v", svc.Provider)
	}
	wantProvider := map[string]string{"LOG_LEVEL": "info", "REGION": ""}
	if !maps.Equal(svc.Provider.Environment, wantProvider) {
		t.Errorf("Provider.Environment = %v, want %v", svc.Provider.Environment, wantProvider)
	}

	if got, want := svc.FunctionNames(), []string{"create", "list", "health"}; !slices.Equal(got, want) {
		t.Errorf("FunctionNames() = %v, want %v", got, want)
	}

	create := svc.Function("create")
	if create == nil {
		t.Fatal("Function(create) = nil")
	}
	if create.Handler != "handler.create" {
		t.Errorf("create.Handler = %q", create.Handler)
	}
	wantCreate := map[string]string{"TABLE": "", "PORT": "3000"}
	if !maps.Equal(create.Environment, wantCreate) {
		t.Errorf("create.Environment = %v, want %v", create.Environment, wantCreate)
	}

	for _, name := range []string{"list", "health"} {
		fn := svc.Function(name)
		if fn == nil || fn.Environment == nil {
			t.Errorf("Function(%q) must exist with a non-nil environment", name)
		}
	}

	section, ok := svc.CustomSection("injection").(map[string]any)
	if !ok {
		t.Fatalf("CustomSection(injection) = %T", svc.CustomSection("injection"))
	}
	if section["basePath"] != "config/" {
		t.Errorf("custom.injection.basePath = %v", section["basePath"])
	}
	if svc.CustomSection("missing") != nil {
		t.Error("CustomSection(missing) should be nil")
	}
	if svc.Function("nope") != nil {
		t.Error("Function(nope) should be nil")
	}
}

func TestParse_Minimal(t *testing.T) {
	t.Parallel()

	for _, doc := range []string{"", "service: bare\n", "provider:\nfunctions:\ncustom:\n"} {
		svc, err := Parse([]byte(doc), "serverless.yml")
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", doc, err)
		}
		if svc.Provider.Environment == nil {
			t.Errorf("Parse(%q): provider environment must be initialized", doc)
		}
		if svc.Custom == nil {
			t.Errorf("Parse(%q): custom must be initialized", doc)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		wantMsg string
	}{
		{name: "invalid yaml", doc: "service: [unclosed", wantMsg: "serverless.yml"},
		{name: "root is a list", doc: "- a\n- b\n", wantMsg: "document must be a mapping"},
		{name: "functions list", doc: "functions:\n  - a\n", wantMsg: "functions must be a mapping"},
		{name: "function scalar", doc: "functions:\n  a: yes\n", wantMsg: `function "a" must be a mapping`},
		{name: "environment list", doc: "provider:\n  environment: [A]\n", wantMsg: "environment must be a mapping"},
		{name: "nested environment value", doc: "provider:\n  environment:\n    A: {b: c}\n", wantMsg: `environment value "A"`},
		{name: "provider scalar", doc: "provider: aws\n", wantMsg: "provider must be a mapping"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.doc), "serverless.yml")
			if !errors.Is(err, ErrServiceParse) {
				t.Fatalf("Parse() error = %v, want ErrServiceParse", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestService_Stage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		providerStage string
		flag          string
		want          config.Stage
	}{
		{name: "flag wins", providerStage: "staging", flag: "production", want: "production"},
		{name: "provider stage", providerStage: "staging", want: "staging"},
		{name: "default", want: config.DefaultStage},
		{name: "blank flag falls back to default", flag: "  ", want: config.DefaultStage},
		{name: "blank flag falls back to provider stage", providerStage: "staging", flag: "  ", want: "staging"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &Service{Provider: Provider{Stage: tt.providerStage}}
			if got := svc.Stage(tt.flag); got != tt.want {
				t.Errorf("Stage(%q) = %q, want %q", tt.flag, got, tt.want)
			}
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	t.Parallel()

	svc, err := Parse([]byte(sampleService), "serverless.yml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	svc.Function("create").Environment["TABLE"] = "orders-staging"

	var buf bytes.Buffer
	if err := Encode(&buf, svc); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	again, err := Parse(buf.Bytes(), "encoded.yml")
	if err != nil {
		t.Fatalf("Parse(encoded) error = %v\n%s", err, buf.String())
	}
	if !slices.Equal(again.FunctionNames(), svc.FunctionNames()) {
		t.Errorf("function order changed: %v", again.FunctionNames())
	}
	if got := again.Function("create").Environment["TABLE"]; got != "orders-staging" {
		t.Errorf("TABLE = %q after round trip", got)
	}
	if got := again.Function("create").Environment["PORT"]; got != "3000" {
		t.Errorf("PORT = %q after round trip", got)
	}
	if !maps.Equal(again.Provider.Environment, svc.Provider.Environment) {
		t.Errorf("provider environment changed: %v", again.Provider.Environment)
	}
	if _, ok := again.CustomSection("injection").(map[string]any); !ok {
		t.Error("custom.injection lost in round trip")
	}
}

func TestLoadService(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/app/serverless.yml", []byte(sampleService), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fsys, "/app/broken.yml", []byte("functions: [x"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		svc, err := LoadService(fsys, "/app/serverless.yml")
		if err != nil {
			t.Fatalf("LoadService() error = %v", err)
		}
		if svc.Name != "orders" {
			t.Errorf("Name = %q", svc.Name)
		}
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()

		_, err := LoadService(fsys, "/app/none.yml")
		if got := issue.IssueOf(err); got != issue.ServiceFileNotFoundId {
			t.Errorf("IssueOf() = %v, want ServiceFileNotFoundId (err = %v)", got, err)
		}
	})

	t.Run("broken", func(t *testing.T) {
		t.Parallel()

		_, err := LoadService(fsys, "/app/broken.yml")
		if got := issue.IssueOf(err); got != issue.ServiceParseErrorId {
			t.Errorf("IssueOf() = %v, want ServiceParseErrorId (err = %v)", got, err)
		}
		if !errors.Is(err, ErrServiceParse) {
			t.Errorf("error should wrap ErrServiceParse, got %v", err)
		}
	})
}
