// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError records what envinject was doing (loading a dotenv file,
// reading the options file, decoding a service descriptor), which resource was
// involved, and how to fix it. The issue catalog holds Markdown guidance keyed
// by Id that the CLI renders with glamour below the error line.
package issue
