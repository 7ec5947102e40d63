// SPDX-License-Identifier: MPL-2.0

// Package dotenv reads dotenv files into ordered variable sets.
//
// Parse handles the dotenv syntax (comments, quoting, escapes, export prefix),
// Expand performs the optional single pass of ${VAR} reference expansion, and
// Loader ties both to a filesystem, distinguishing a missing or empty file
// (absent) from a file that loaded at least one variable.
package dotenv
