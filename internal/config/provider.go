// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"

	"github.com/spf13/afero"
)

type (
	// LoadOptions defines explicit configuration loading inputs.
	LoadOptions struct {
		// ConfigFilePath forces loading from a specific options file when set.
		// Files ending in .toml are read as TOML, everything else as CUE.
		ConfigFilePath string
		// ConfigDirPath is searched for envinject.cue and envinject.toml when
		// ConfigFilePath is empty. Defaults to the working directory.
		ConfigDirPath string
		// Custom is the service descriptor's custom block. Its injection and
		// dotenv sections are layered above the options file.
		Custom map[string]any
		// Overrides are applied last, keyed by canonical option name.
		Overrides map[string]any
		// Fs is the filesystem options files are read from. Nil means the OS
		// filesystem.
		Fs afero.Fs
	}

	// Loaded is a successful load: the options plus where they came from.
	Loaded struct {
		Options Options
		// FilePath is the options file that was read, or "".
		FilePath string
		// Sections lists the service descriptor sections that were applied,
		// e.g. "custom.injection".
		Sections []string
	}

	// Provider loads configuration from explicit options.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Loaded, error)
	}

	fileProvider struct{}
)

// NewProvider creates a configuration provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested sources.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Loaded, error) {
	return loadWithOptions(ctx, opts)
}
