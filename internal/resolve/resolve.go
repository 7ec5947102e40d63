// SPDX-License-Identifier: MPL-2.0

// Package resolve picks the dotenv file for a stage.
package resolve

import (
	"github.com/spf13/afero"
)

const (
	// DefaultFileName is the stage-agnostic dotenv file name.
	DefaultFileName = ".env"
)

// Source describes where dotenv files live.
type Source struct {
	// Path, when set, is used verbatim and bypasses stage selection.
	Path string
	// BasePath is prepended to the file names. It is concatenated, not
	// joined: "config/" yields "config/.env", "app" yields "app.env".
	BasePath string
}

// StagedPath returns the stage-specific candidate, {base}.env.{stage}.
func (s Source) StagedPath(stage string) string {
	return s.BasePath + DefaultFileName + "." + stage
}

// DefaultPath returns the stage-agnostic fallback, {base}.env.
func (s Source) DefaultPath() string {
	return s.BasePath + DefaultFileName
}

// Resolve returns the dotenv file path for stage.
//
// An explicit Path wins unconditionally. Otherwise the staged file is
// returned when a regular file exists there, and the default path is returned
// in every other case, whether or not it exists. Resolve never fails; a
// missing file is the loader's concern.
func Resolve(fsys afero.Fs, src Source, stage string) string {
	if src.Path != "" {
		return src.Path
	}

	staged := src.StagedPath(stage)
	if isFile(fsys, staged) {
		return staged
	}
	return src.DefaultPath()
}

func isFile(fsys afero.Fs, path string) bool {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	info, err := fsys.Stat(path)
	return err == nil && !info.IsDir()
}
