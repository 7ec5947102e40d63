// SPDX-License-Identifier: MPL-2.0

// Package host models the serverless service descriptor and the lifecycle
// events an injector plugin hooks.
//
// A Service is parsed from YAML with function order preserved. Dispatch
// routes an Event to the matching Plugin method; destination environment
// maps stay owned by the Service and plugins only write into them.
package host
