// SPDX-License-Identifier: MPL-2.0

// Package cmd implements the envinject command line: a stand-in host that
// loads a serverless.yml, fires the package:initialize and
// invoke:local:loadEnvVars triggers against the injection engine, and
// prints the result.
package cmd
