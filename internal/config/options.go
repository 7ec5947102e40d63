// SPDX-License-Identifier: MPL-2.0

package config

import (
	"slices"

	"github.com/invowk/envinject/internal/keyfilter"
	"github.com/invowk/envinject/internal/merge"
	"github.com/invowk/envinject/internal/resolve"
)

type (
	// Settings is the mutable, serializable form of the injection options.
	// It is what options files and service sections decode into. Call Build
	// to validate it and obtain Options.
	//
	// InjectProviderEnv is a pointer so that "not set" can follow the mode:
	// unset means false in function mode and true in provider mode.
	Settings struct {
		Path              string   `mapstructure:"path" json:"path,omitempty" toml:"path,omitempty"`
		BasePath          string   `mapstructure:"base_path" json:"base_path,omitempty" toml:"base_path,omitempty"`
		Expand            bool     `mapstructure:"expand" json:"expand" toml:"expand"`
		Include           []string `mapstructure:"include" json:"include,omitempty" toml:"include,omitempty"`
		Exclude           []string `mapstructure:"exclude" json:"exclude,omitempty" toml:"exclude,omitempty"`
		Logging           bool     `mapstructure:"logging" json:"logging" toml:"logging"`
		InjectProviderEnv *bool    `mapstructure:"inject_provider_env" json:"inject_provider_env,omitempty" toml:"inject_provider_env,omitempty"`
		Mode              Mode     `mapstructure:"mode" json:"mode" toml:"mode"`
		OnlyDeclared      bool     `mapstructure:"only_declared" json:"only_declared" toml:"only_declared"`
	}

	// Options is the validated, immutable injection configuration. The zero
	// value is not meaningful; obtain Options from Default, Builder.Build or
	// Settings.Build.
	Options struct {
		path              string
		basePath          string
		expand            bool
		include           []string
		exclude           []string
		logging           bool
		injectProviderEnv bool
		mode              Mode
		onlyDeclared      bool
	}

	// Builder assembles Options field by field. Every setter returns the
	// builder so calls can be chained; Build validates the result.
	Builder struct {
		settings Settings
	}
)

// DefaultSettings returns the built-in defaults: logging on, function mode,
// no expansion, no key filter.
func DefaultSettings() Settings {
	return Settings{
		Logging: true,
		Mode:    ModeFunction,
	}
}

// Default returns the Options built from DefaultSettings.
func Default() Options {
	opts, _ := DefaultSettings().Build()
	return opts
}

// Validate checks every field and returns an *InvalidOptionsError listing
// all problems, or nil.
func (s Settings) Validate() error {
	var errs []error
	if err := s.Mode.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := validatePath("path", s.Path); err != nil {
		errs = append(errs, err)
	}
	if err := validatePath("base_path", s.BasePath); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, validateKeys("include", s.Include)...)
	errs = append(errs, validateKeys("exclude", s.Exclude)...)

	if len(errs) > 0 {
		return &InvalidOptionsError{FieldErrors: errs}
	}
	return nil
}

// Build validates s and converts it to immutable Options.
func (s Settings) Build() (Options, error) {
	if err := s.Validate(); err != nil {
		return Options{}, err
	}

	injectProvider := s.Mode == ModeProvider
	if s.InjectProviderEnv != nil {
		injectProvider = *s.InjectProviderEnv
	}

	return Options{
		path:              s.Path,
		basePath:          s.BasePath,
		expand:            s.Expand,
		include:           slices.Clone(s.Include),
		exclude:           slices.Clone(s.Exclude),
		logging:           s.Logging,
		injectProviderEnv: injectProvider,
		mode:              s.Mode,
		onlyDeclared:      s.OnlyDeclared,
	}, nil
}

// Path returns the explicit dotenv file override, or "".
func (o Options) Path() string { return o.path }

// BasePath returns the prefix prepended to dotenv file names.
func (o Options) BasePath() string { return o.basePath }

// Expand reports whether ${VAR} references are expanded.
func (o Options) Expand() bool { return o.expand }

// Include returns a copy of the include list.
func (o Options) Include() []string { return slices.Clone(o.include) }

// Exclude returns a copy of the exclude list.
func (o Options) Exclude() []string { return slices.Clone(o.exclude) }

// Logging reports whether information lines are emitted.
func (o Options) Logging() bool { return o.logging }

// InjectProviderEnv reports the provider-level injection toggle.
func (o Options) InjectProviderEnv() bool { return o.injectProviderEnv }

// Mode returns the injection mode.
func (o Options) Mode() Mode { return o.mode }

// OnlyDeclared reports whether only keys already declared on a destination
// are written.
func (o Options) OnlyDeclared() bool { return o.onlyDeclared }

// InjectsProvider reports whether the provider environment is a
// destination. Provider mode always injects; function mode injects only
// when the toggle is on.
func (o Options) InjectsProvider() bool {
	return o.mode == ModeProvider || o.injectProviderEnv
}

// Source returns the file resolver input.
func (o Options) Source() resolve.Source {
	return resolve.Source{Path: o.path, BasePath: o.basePath}
}

// Policy returns the key filter input.
func (o Options) Policy() keyfilter.Policy {
	return keyfilter.Policy{Include: o.Include(), Exclude: o.Exclude()}
}

// MergeOptions returns the merge engine input.
func (o Options) MergeOptions() merge.Options {
	return merge.Options{OnlyDeclared: o.onlyDeclared}
}

// Settings converts o back to its serializable form. InjectProviderEnv is
// always populated with the effective value.
func (o Options) Settings() Settings {
	inject := o.injectProviderEnv
	return Settings{
		Path:              o.path,
		BasePath:          o.basePath,
		Expand:            o.expand,
		Include:           o.Include(),
		Exclude:           o.Exclude(),
		Logging:           o.logging,
		InjectProviderEnv: &inject,
		Mode:              o.mode,
		OnlyDeclared:      o.onlyDeclared,
	}
}

// NewBuilder returns a Builder seeded with DefaultSettings.
func NewBuilder() *Builder {
	return &Builder{settings: DefaultSettings()}
}

// NewBuilderFrom returns a Builder seeded with s.
func NewBuilderFrom(s Settings) *Builder {
	s.Include = slices.Clone(s.Include)
	s.Exclude = slices.Clone(s.Exclude)
	return &Builder{settings: s}
}

// WithPath sets the explicit dotenv file override.
func (b *Builder) WithPath(path string) *Builder {
	b.settings.Path = path
	return b
}

// WithBasePath sets the dotenv file name prefix.
func (b *Builder) WithBasePath(base string) *Builder {
	b.settings.BasePath = base
	return b
}

// WithExpand toggles reference expansion.
func (b *Builder) WithExpand(expand bool) *Builder {
	b.settings.Expand = expand
	return b
}

// WithInclude replaces the include list.
func (b *Builder) WithInclude(keys ...string) *Builder {
	b.settings.Include = slices.Clone(keys)
	return b
}

// WithExclude replaces the exclude list.
func (b *Builder) WithExclude(keys ...string) *Builder {
	b.settings.Exclude = slices.Clone(keys)
	return b
}

// WithLogging toggles information lines.
func (b *Builder) WithLogging(logging bool) *Builder {
	b.settings.Logging = logging
	return b
}

// WithInjectProviderEnv sets the provider-level injection toggle explicitly.
func (b *Builder) WithInjectProviderEnv(inject bool) *Builder {
	b.settings.InjectProviderEnv = &inject
	return b
}

// WithMode sets the injection mode.
func (b *Builder) WithMode(mode Mode) *Builder {
	b.settings.Mode = mode
	return b
}

// WithOnlyDeclared restricts writes to keys already declared on a destination.
func (b *Builder) WithOnlyDeclared(only bool) *Builder {
	b.settings.OnlyDeclared = only
	return b
}

// Build validates the accumulated settings and returns Options.
func (b *Builder) Build() (Options, error) {
	return b.settings.Build()
}
