// SPDX-License-Identifier: MPL-2.0

package dotenv

import (
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

// Expand returns a copy of vars with ${VAR}-style references substituted.
//
// Values are processed once, left to right, using shell parameter syntax
// ($VAR, ${VAR}, ${VAR:-default}). A reference resolves against the ambient
// environment first, then against the variables as they stand at that point:
// keys earlier in the file are already expanded, later keys are still raw.
// A raw value pulled in that way is not expanded again. Unset references
// expand to the empty string. Single-quoted values are never expanded. A
// value using any other shell syntax (arithmetic, command substitution,
// ${#VAR}, special parameters such as $$ or $1, slicing or replacement) or a
// malformed ${ is kept as written.
//
// environ holds "KEY=VALUE" pairs; it may be nil.
func Expand(vars Vars, environ []string) Vars {
	out := Vars{
		entries: make([]entry, len(vars.entries)),
		index:   make(map[string]int, len(vars.entries)),
	}
	copy(out.entries, vars.entries)
	for k, i := range vars.index {
		out.index[k] = i
	}

	parser := syntax.NewParser()
	for i, e := range out.entries {
		if e.quote == quoteSingle || !strings.ContainsRune(e.source, '$') {
			continue
		}

		// Ambient pairs come last so they win over file values in ListEnviron.
		pairs := make([]string, 0, len(out.entries)+len(environ))
		for _, prev := range out.entries {
			pairs = append(pairs, prev.key+"="+prev.value)
		}
		pairs = append(pairs, environ...)

		expanded, ok := expandValue(parser, e.source, expand.ListEnviron(pairs...))
		if !ok {
			continue
		}
		out.entries[i].value = expanded
		out.entries[i].source = expanded
	}

	return out
}

// expandValue expands a single value as a here-document body, which applies
// parameter expansion without word splitting or quote removal.
func expandValue(parser *syntax.Parser, value string, env expand.Environ) (string, bool) {
	word, err := parser.Document(strings.NewReader(value))
	if err != nil || !plainReferences(word) {
		return "", false
	}
	expanded, err := expand.Document(&expand.Config{Env: env}, word)
	if err != nil {
		return "", false
	}
	return expanded, true
}

// plainReferences reports whether word only uses named parameter references,
// optionally with a default or trim operator.
func plainReferences(word *syntax.Word) bool {
	ok := true
	syntax.Walk(word, func(node syntax.Node) bool {
		switch n := node.(type) {
		case *syntax.ArithmExp, *syntax.CmdSubst, *syntax.ProcSubst, *syntax.ExtGlob:
			ok = false
		case *syntax.ParamExp:
			if n.Param == nil || !syntax.ValidName(n.Param.Value) ||
				n.Excl || n.Length || n.Width ||
				n.Index != nil || n.Slice != nil || n.Repl != nil || n.Names != 0 {
				ok = false
			}
		}
		return ok
	})
	return ok
}
