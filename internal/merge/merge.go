// SPDX-License-Identifier: MPL-2.0

// Package merge writes loaded variables into caller-owned environment maps.
//
// The rule is existing-wins: a destination value that is already non-empty
// is never overwritten, an empty or missing value is filled in, and no key is
// ever removed.
package merge

import (
	"github.com/invowk/envinject/internal/dotenv"
)

type (
	// Destination is an environment map owned by the caller. Merge only
	// writes to Env; it never retains it.
	Destination struct {
		// Name labels the destination in reports, e.g. "provider" or "function:hello".
		Name string
		// Env is the map written to. A nil map cannot receive values and is
		// reported as skipped.
		Env map[string]string
	}

	// Options tunes which keys are candidates for a destination.
	Options struct {
		// OnlyDeclared restricts writes to keys the destination already
		// declares (present with an empty value). Undeclared keys are not inserted.
		OnlyDeclared bool
	}

	// Outcome describes what happened to one destination.
	Outcome struct {
		Destination string
		// Written lists keys whose value was set from the loaded variables.
		Written []string
		// Kept lists keys left alone because the destination already had a value.
		Kept []string
		// Skipped is true when the destination map was nil.
		Skipped bool
	}

	// Report collects the outcome of every destination, in argument order.
	Report struct {
		Outcomes []Outcome
	}
)

// Merge writes vars into every destination under the existing-wins rule.
func Merge(vars dotenv.Vars, opts Options, dsts ...Destination) Report {
	report := Report{Outcomes: make([]Outcome, 0, len(dsts))}

	for _, dst := range dsts {
		outcome := Outcome{Destination: dst.Name}
		if dst.Env == nil {
			outcome.Skipped = true
			report.Outcomes = append(report.Outcomes, outcome)
			continue
		}

		for key, value := range vars.All() {
			current, declared := dst.Env[key]
			switch {
			case current != "":
				outcome.Kept = append(outcome.Kept, key)
			case opts.OnlyDeclared && !declared:
				// not a candidate
			default:
				dst.Env[key] = value
				outcome.Written = append(outcome.Written, key)
			}
		}

		report.Outcomes = append(report.Outcomes, outcome)
	}

	return report
}

// Written returns the total number of keys written across destinations.
func (r Report) Written() int {
	n := 0
	for _, o := range r.Outcomes {
		n += len(o.Written)
	}
	return n
}

// Outcome returns the outcome recorded for the named destination.
func (r Report) Outcome(name string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Destination == name {
			return o, true
		}
	}
	return Outcome{}, false
}
