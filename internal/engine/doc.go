// SPDX-License-Identifier: MPL-2.0

// Package engine runs the injection pipeline for each lifecycle trigger:
// resolve the dotenv file for the stage, load it, filter its keys, and merge
// the survivors into the destination environments the host supplies. Load
// failures are reported and swallowed; the engine never fails a trigger.
package engine
