// SPDX-License-Identifier: MPL-2.0

package dotenv

import (
	"errors"
	"fmt"
	"strings"

	"github.com/invowk/envinject/pkg/types"
)

var (
	// ErrMissingSeparator is returned for a non-comment line without '='.
	ErrMissingSeparator = errors.New("invalid format (missing '=')")
	// ErrUnterminatedQuote is returned when a quoted value is not closed on the same line.
	ErrUnterminatedQuote = errors.New("unterminated quote")
	// ErrTrailingContent is returned when a closing quote is followed by
	// something other than whitespace or a # comment.
	ErrTrailingContent = errors.New("unexpected content after closing quote")
)

// ParseError reports a malformed line in a dotenv file.
type ParseError struct {
	File string
	Line int
	Err  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error { return e.Err }

// Parse parses dotenv content into an ordered variable set.
// Supported format:
//   - Lines starting with # are comments
//   - Empty lines are ignored
//   - KEY=value (unquoted, " #" starts an inline comment)
//   - KEY="value" (double-quoted, escape sequences: \n, \r, \t, \\, \", \$)
//   - KEY='value' (single-quoted, literal - no escape processing)
//   - export KEY=value (export prefix is optional and ignored)
//   - KEY= (empty value)
//
// A key assigned twice keeps its first position and takes the last value.
// The filename parameter is used for error messages.
func Parse(content []byte, filename string) (Vars, error) {
	var vars Vars
	lines := strings.Split(string(content), "\n")

	for i, line := range lines {
		lineNum := i + 1

		line = strings.TrimSuffix(line, "\r")
		line = strings.TrimSpace(line)

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		line = strings.TrimPrefix(line, "export ")
		line = strings.TrimSpace(line)

		key, value, found := strings.Cut(line, "=")
		if !found {
			return Vars{}, &ParseError{File: filename, Line: lineNum, Err: ErrMissingSeparator}
		}

		key = strings.TrimSpace(key)
		if err := types.EnvVarName(key).Validate(); err != nil {
			return Vars{}, &ParseError{File: filename, Line: lineNum, Err: err}
		}

		e, err := parseValue(value)
		if err != nil {
			return Vars{}, &ParseError{File: filename, Line: lineNum, Err: err}
		}
		e.key = key

		vars.set(e)
	}

	return vars, nil
}

// parseValue parses a dotenv value, handling quoting and escape sequences.
func parseValue(value string) (entry, error) {
	value = strings.TrimSpace(value)

	if value == "" {
		return entry{}, nil
	}

	switch value[0] {
	case '"':
		end := closingQuote(value, '"')
		if end == -1 {
			return entry{}, fmt.Errorf("%w: double quote", ErrUnterminatedQuote)
		}
		if err := checkTrailing(value[end+1:]); err != nil {
			return entry{}, err
		}
		inner := value[1:end]
		return entry{
			value:  unescapeDoubleQuoted(inner, false),
			source: unescapeDoubleQuoted(inner, true),
			quote:  quoteDouble,
		}, nil
	case '\'':
		end := closingQuote(value, '\'')
		if end == -1 {
			return entry{}, fmt.Errorf("%w: single quote", ErrUnterminatedQuote)
		}
		if err := checkTrailing(value[end+1:]); err != nil {
			return entry{}, err
		}
		inner := value[1:end]
		return entry{value: inner, source: inner, quote: quoteSingle}, nil
	}

	if idx := strings.Index(value, " #"); idx != -1 {
		value = strings.TrimSpace(value[:idx])
	}

	return entry{value: value, source: value, quote: quoteNone}, nil
}

// closingQuote returns the index of the quote closing value[0], or -1.
// Backslash escapes are honoured inside double quotes only.
func closingQuote(value string, quote byte) int {
	for i := 1; i < len(value); i++ {
		switch {
		case quote == '"' && value[i] == '\\':
			i++
		case value[i] == quote:
			return i
		}
	}
	return -1
}

// checkTrailing accepts what follows a closing quote: nothing, whitespace,
// or a # comment.
func checkTrailing(rest string) error {
	rest = strings.TrimSpace(rest)
	if rest == "" || rest[0] == '#' {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrTrailingContent, rest)
}

// unescapeDoubleQuoted processes escape sequences in a double-quoted value.
// With keepShellEscapes set, \$ and \\ are left escaped so a later shell-style
// expansion still sees them as literals.
func unescapeDoubleQuoted(value string, keepShellEscapes bool) string {
	var result strings.Builder
	result.Grow(len(value))

	i := 0
	for i < len(value) {
		if value[i] != '\\' || i+1 >= len(value) {
			result.WriteByte(value[i])
			i++
			continue
		}

		next := value[i+1]
		switch next {
		case 'n':
			result.WriteByte('\n')
		case 'r':
			result.WriteByte('\r')
		case 't':
			result.WriteByte('\t')
		case '"':
			result.WriteByte('"')
		case '\\', '$':
			if keepShellEscapes {
				result.WriteByte('\\')
			}
			result.WriteByte(next)
		default:
			// Unknown escape - keep both characters
			result.WriteByte('\\')
			result.WriteByte(next)
		}
		i += 2
	}

	return result.String()
}
