// SPDX-License-Identifier: MPL-2.0

package config

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed config_schema.cue
var configSchema string

// schemaDefinition is the root definition options are unified with.
const schemaDefinition = "#Config"

type validator struct {
	ctx    *cue.Context
	schema cue.Value
}

func newValidator() (*validator, error) {
	ctx := cuecontext.New()
	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}
	return &validator{ctx: ctx, schema: schemaValue.LookupPath(cue.ParsePath(schemaDefinition))}, nil
}

// compileFile parses CUE source, validates it against #Config and returns the
// decoded field map.
func (v *validator) compileFile(data []byte, filename string) (map[string]any, error) {
	userValue := v.ctx.CompileBytes(data, cue.Filename(filename))
	if userValue.Err() != nil {
		return nil, formatCUEError(userValue.Err(), filename)
	}
	return v.unify(userValue, filename)
}

// check validates an already decoded map (TOML file, service section)
// against #Config.
func (v *validator) check(m map[string]any, source string) (map[string]any, error) {
	value := v.ctx.Encode(m)
	if value.Err() != nil {
		return nil, formatCUEError(value.Err(), source)
	}
	return v.unify(value, source)
}

func (v *validator) unify(value cue.Value, source string) (map[string]any, error) {
	unified := v.schema.Unify(value)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return nil, formatCUEError(err, source)
	}

	var out map[string]any
	if err := unified.Decode(&out); err != nil {
		return nil, formatCUEError(err, source)
	}
	return out, nil
}

// formatCUEError flattens a CUE error list into "<source>: <path>: <message>"
// lines. Paths use dotted notation with bracketed indices, e.g. include[2].
func formatCUEError(err error, source string) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return fmt.Errorf("%s: %w", source, err)
	}

	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		path := formatPath(cueerrors.Path(e))
		msg := e.Error()
		if path != "" && strings.HasPrefix(msg, path) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, path), ":"))
		}
		if path != "" {
			lines = append(lines, path+": "+msg)
		} else {
			lines = append(lines, msg)
		}
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", source, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", source, strings.Join(lines, "\n  "))
}

func formatPath(path []string) string {
	var sb strings.Builder
	for i, part := range path {
		if i > 0 && isIndex(part) {
			sb.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(part)
	}
	return sb.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
