// SPDX-License-Identifier: MPL-2.0

package dotenv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/invowk/envinject/internal/issue"

	"github.com/spf13/afero"
)

// DefaultMaxFileSize bounds how much of a dotenv file is read (1 MiB).
const DefaultMaxFileSize int64 = 1 << 20

// Loader reads and parses dotenv files from a filesystem.
type Loader struct {
	// Fs is the filesystem files are read from. When nil, the OS filesystem is used.
	Fs afero.Fs
	// Environ returns the ambient environment as "KEY=VALUE" strings. It is
	// only consulted when expansion is requested. When nil, os.Environ is used.
	Environ func() []string
	// MaxFileSize rejects larger files. Zero means DefaultMaxFileSize.
	MaxFileSize int64
}

// NewLoader creates a Loader reading from fsys.
func NewLoader(fsys afero.Fs) *Loader {
	return &Loader{Fs: fsys}
}

// Load reads the dotenv file at path. It returns ok == false, with a nil
// error, when the file does not exist or holds no assignments, so callers can
// tell "nothing to load" apart from a failed load. Read and parse failures
// are returned as *issue.ActionableError.
func (l *Loader) Load(path string, expandRefs bool) (vars Vars, ok bool, err error) {
	fsys := l.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	info, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Vars{}, false, nil
		}
		return Vars{}, false, unreadable(path, err)
	}
	if info.IsDir() {
		return Vars{}, false, unreadable(path, fmt.Errorf("%s is a directory", path))
	}

	maxSize := l.MaxFileSize
	if maxSize == 0 {
		maxSize = DefaultMaxFileSize
	}
	if info.Size() > maxSize {
		return Vars{}, false, unreadable(path, fmt.Errorf("file size %d bytes exceeds maximum %d bytes", info.Size(), maxSize))
	}

	content, err := afero.ReadFile(fsys, path)
	if err != nil {
		return Vars{}, false, unreadable(path, err)
	}

	vars, err = Parse(content, path)
	if err != nil {
		return Vars{}, false, issue.NewErrorContext().
			WithOperation("load dotenv file").
			WithResource(path).
			WithIssue(issue.EnvFileParseErrorId).
			WithSuggestion("Every non-comment line must look like KEY=VALUE").
			WithSuggestion("Close every quoted value on the line it opens").
			Wrap(err).
			BuildError()
	}

	if vars.Len() == 0 {
		return Vars{}, false, nil
	}

	if expandRefs {
		vars = Expand(vars, l.environ())
	}

	return vars, true, nil
}

func (l *Loader) environ() []string {
	if l.Environ != nil {
		return l.Environ()
	}
	return os.Environ()
}

func unreadable(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("load dotenv file").
		WithResource(path).
		WithIssue(issue.EnvFileUnreadableId).
		WithSuggestion("Check that the path points to a readable file").
		Wrap(err).
		BuildError()
}
