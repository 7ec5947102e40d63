// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"fmt"
	"io"

	"github.com/invowk/envinject/internal/merge"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// LogPrefix prefixes every information line.
const LogPrefix = "envinject"

type (
	// Reporter receives engine progress. Notice, Loaded and Missing are
	// information lines; the engine only calls them while logging is
	// enabled. Failed and Injected are always called.
	Reporter interface {
		// Notice reports a lifecycle trigger starting.
		Notice(msg string)
		// Loaded reports the resolved file and the keys that passed the filter.
		Loaded(path string, keys []string)
		// Missing reports that no file, or an empty file, was found at path.
		Missing(path string)
		// Failed reports a read or parse failure. The engine carries on with
		// no variables.
		Failed(path string, err error)
		// Injected reports what the merge wrote.
		Injected(report merge.Report)
	}

	// LogReporter writes information lines through a charmbracelet logger
	// and error lines, message only, in red.
	LogReporter struct {
		logger *log.Logger
		errOut io.Writer
	}

	// discardReporter drops everything.
	discardReporter struct{}
)

var errorLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

// NewLogReporter creates a LogReporter. Information goes to out, errors to
// errOut. When verbose is set, per-destination merge results are logged at
// debug level.
func NewLogReporter(out, errOut io.Writer, verbose bool) *LogReporter {
	logger := log.NewWithOptions(out, log.Options{
		Prefix: LogPrefix,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return &LogReporter{logger: logger, errOut: errOut}
}

// Notice implements Reporter.
func (r *LogReporter) Notice(msg string) {
	r.logger.Info(msg)
}

// Loaded implements Reporter.
func (r *LogReporter) Loaded(path string, keys []string) {
	r.logger.Info("Loading environment variables", "file", path)
	for _, key := range keys {
		r.logger.Info("  - " + key)
	}
}

// Missing implements Reporter.
func (r *LogReporter) Missing(path string) {
	r.logger.Info("No dotenv file found, using the local environment", "file", path)
}

// Failed implements Reporter.
func (r *LogReporter) Failed(_ string, err error) {
	fmt.Fprintln(r.errOut, errorLineStyle.Render(err.Error()))
}

// Injected implements Reporter.
func (r *LogReporter) Injected(report merge.Report) {
	for _, o := range report.Outcomes {
		if o.Skipped {
			r.logger.Debug("destination skipped", "destination", o.Destination)
			continue
		}
		r.logger.Debug("injected", "destination", o.Destination, "written", len(o.Written), "kept", len(o.Kept))
	}
}

func (discardReporter) Notice(string)           {}
func (discardReporter) Loaded(string, []string) {}
func (discardReporter) Missing(string)          {}
func (discardReporter) Failed(string, error)    {}
func (discardReporter) Injected(merge.Report)   {}
