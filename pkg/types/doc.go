// SPDX-License-Identifier: MPL-2.0

// Package types holds small validated value types shared by the envinject
// packages. Each type exposes Validate() returning a typed error that wraps a
// package-level sentinel for errors.Is() checks.
package types
