// SPDX-License-Identifier: MPL-2.0

// Package keyfilter narrows a loaded variable set with an include-list or an
// exclude-list. When both are configured the include-list wins and the
// exclude-list is ignored.
package keyfilter

import (
	"github.com/invowk/envinject/internal/dotenv"
)

// Policy holds the configured key lists.
type Policy struct {
	Include []string
	Exclude []string
}

// Kind names which list a Policy applies.
type Kind string

const (
	// KindNone keeps every key.
	KindNone Kind = "none"
	// KindInclude keeps only listed keys.
	KindInclude Kind = "include"
	// KindExclude drops listed keys.
	KindExclude Kind = "exclude"
)

// Kind reports which list will be applied. Include wins over Exclude.
func (p Policy) Kind() Kind {
	switch {
	case len(p.Include) > 0:
		return KindInclude
	case len(p.Exclude) > 0:
		return KindExclude
	default:
		return KindNone
	}
}

// Apply returns the variables that survive p. The input is never modified
// and the relative order of surviving keys is preserved.
func Apply(vars dotenv.Vars, p Policy) dotenv.Vars {
	switch p.Kind() {
	case KindInclude:
		set := toSet(p.Include)
		return vars.Filter(func(key string) bool {
			_, ok := set[key]
			return ok
		})
	case KindExclude:
		set := toSet(p.Exclude)
		return vars.Filter(func(key string) bool {
			_, ok := set[key]
			return !ok
		})
	default:
		return vars
	}
}

func toSet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}
