// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include environment variable management (MustSetenv),
// working directory changes (MustChdir), in-memory filesystem fixtures
// (MemFs, MustWriteFile, MustReadFile) and fixed ambient environments
// (Environ).
package testutil
