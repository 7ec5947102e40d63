// SPDX-License-Identifier: MPL-2.0

// Package config builds the immutable injection options.
//
// Options are layered through Viper, lowest to highest: built-in defaults,
// an options file (envinject.cue or envinject.toml, validated against the
// embedded CUE schema config_schema.cue), the service descriptor's
// custom.dotenv section (provider mode defaults), its custom.injection
// section (function mode defaults), and finally explicit overrides from the
// command line. The result is validated once and exposed as Options, whose
// accessors never hand out internal slices.
package config
