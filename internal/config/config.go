// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/invowk/envinject/internal/issue"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "envinject"
	// OptionsFileName is the name of the options file (without extension).
	OptionsFileName = "envinject"
	// CUEExt is the CUE options file extension.
	CUEExt = "cue"
	// TOMLExt is the TOML options file extension.
	TOMLExt = "toml"

	// SectionInjection is the service descriptor section read in function mode.
	SectionInjection = "injection"
	// SectionDotenv is the service descriptor section read in provider mode.
	SectionDotenv = "dotenv"

	// MaxOptionsFileSize bounds options file reads (1 MiB).
	MaxOptionsFileSize int64 = 1 << 20
)

// sectionAliases maps the camel-case keys accepted inside service sections
// to their canonical names.
var sectionAliases = map[string]string{
	"basePath":          "base_path",
	"expandDotEnv":      "expand",
	"injectProviderEnv": "inject_provider_env",
	"onlyDeclared":      "only_declared",
}

// sectionModes records the mode a service section implies when it does not
// name one. Sections are applied in this order; later ones win.
var sectionModes = []struct {
	name string
	mode Mode
}{
	{SectionDotenv, ModeProvider},
	{SectionInjection, ModeFunction},
}

// loadWithOptions layers defaults, the options file, service sections and
// overrides through a fresh viper instance. The result also records which
// sources contributed.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Loaded, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load options canceled: %w", ctx.Err())
	default:
	}

	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	val, err := newValidator()
	if err != nil {
		return nil, err
	}

	v := viper.New()

	defaults := DefaultSettings()
	v.SetDefault("path", defaults.Path)
	v.SetDefault("base_path", defaults.BasePath)
	v.SetDefault("expand", defaults.Expand)
	v.SetDefault("logging", defaults.Logging)
	v.SetDefault("mode", defaults.Mode.String())
	v.SetDefault("only_declared", defaults.OnlyDeclared)

	loaded := &Loaded{}

	filePath, err := findOptionsFile(fsys, opts)
	if err != nil {
		return nil, err
	}
	if filePath != "" {
		if err := loadFileIntoViper(v, val, fsys, filePath); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load options file").
				WithResource(filePath).
				WithIssue(issue.OptionsFileInvalidId).
				WithSuggestion("Check that the file contains valid CUE or TOML syntax").
				WithSuggestion("Verify the option names and types match the documented schema").
				WithSuggestion("Use 'envinject config show' to see the effective options").
				Wrap(err).
				BuildError()
		}
		loaded.FilePath = filePath
	}

	for _, section := range sectionModes {
		raw, present := opts.Custom[section.name]
		if !present || raw == nil {
			continue
		}
		resource := "custom." + section.name
		if err := mergeSection(v, val, raw, resource, section.mode); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load service options").
				WithResource(resource).
				WithIssue(issue.InvalidOptionsId).
				WithSuggestion("Check the option names and value types in the service descriptor").
				WithSuggestion("Camel-case names such as basePath and expandDotEnv are accepted").
				Wrap(err).
				BuildError()
		}
		loaded.Sections = append(loaded.Sections, resource)
	}

	for _, key := range slices.Sorted(maps.Keys(opts.Overrides)) {
		v.Set(key, opts.Overrides[key])
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to parse options: %w", err)
	}

	options, err := settings.Build()
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate options").
			WithIssue(issue.InvalidOptionsId).
			WithSuggestion("mode must be either \"function\" or \"provider\"").
			WithSuggestion("include and exclude entries must be variable names without '=' or whitespace").
			Wrap(err).
			BuildError()
	}
	loaded.Options = options

	return loaded, nil
}

// findOptionsFile returns the options file to read, or "" when none applies.
// An explicit path must exist; otherwise the directory is searched for
// envinject.cue then envinject.toml.
func findOptionsFile(fsys afero.Fs, opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(fsys, opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load options file").
				WithResource(opts.ConfigFilePath).
				WithIssue(issue.OptionsFileNotFoundId).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				Wrap(fmt.Errorf("options file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	dir := opts.ConfigDirPath
	if dir == "" {
		dir = "."
	}
	for _, ext := range []string{CUEExt, TOMLExt} {
		candidate := filepath.Join(dir, OptionsFileName+"."+ext)
		if fileExists(fsys, candidate) {
			return candidate, nil
		}
	}
	return "", nil
}

// loadFileIntoViper reads a CUE or TOML options file, validates it against
// the #Config schema and merges it into v. The format follows the file
// extension; anything but .toml is read as CUE.
func loadFileIntoViper(v *viper.Viper, val *validator, fsys afero.Fs, path string) error {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("failed to read options file: %w", err)
	}
	if int64(len(data)) > MaxOptionsFileSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", path, len(data), MaxOptionsFileSize)
	}

	var configMap map[string]any
	if strings.EqualFold(filepath.Ext(path), "."+TOMLExt) {
		var raw map[string]any
		if err := toml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		configMap, err = val.check(raw, path)
	} else {
		configMap, err = val.compileFile(data, path)
	}
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge options: %w", err)
	}
	return nil
}

// mergeSection normalizes a service descriptor section, validates it and
// merges it into v. A section that does not name a mode selects implied.
func mergeSection(v *viper.Viper, val *validator, raw any, resource string, implied Mode) error {
	section, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("%s: expected a mapping, got %T", resource, raw)
	}

	normalized := normalizeSection(section)
	checked, err := val.check(normalized, resource)
	if err != nil {
		return err
	}
	if checked == nil {
		checked = map[string]any{}
	}
	if _, named := checked["mode"]; !named {
		checked["mode"] = implied.String()
	}

	if err := v.MergeConfigMap(checked); err != nil {
		return fmt.Errorf("failed to merge %s: %w", resource, err)
	}
	return nil
}

// normalizeSection renames alias keys and drops null values. When both an
// alias and its canonical key are present, the canonical key wins.
func normalizeSection(section map[string]any) map[string]any {
	out := make(map[string]any, len(section))
	for key, value := range section {
		if value == nil {
			continue
		}
		if canonical, isAlias := sectionAliases[key]; isAlias {
			if section[canonical] != nil {
				continue
			}
			key = canonical
		}
		out[key] = value
	}
	return out
}

// fileExists checks if a file exists and is not a directory
func fileExists(fsys afero.Fs, path string) bool {
	info, err := fsys.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	return err == nil && !info.IsDir()
}
