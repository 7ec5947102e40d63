// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/invowk/envinject/internal/config"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

type (
	// configReport is the JSON shape of `config show`.
	configReport struct {
		Options  config.Settings `json:"options"`
		File     string          `json:"file,omitempty"`
		Sections []string        `json:"sections,omitempty"`
	}
)

// newConfigCommand creates the `envinject config` command group.
func newConfigCommand(app *App, flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the injection options",
	}
	cmd.AddCommand(newConfigShowCommand(app, flags))
	return cmd
}

func newConfigShowCommand(app *App, flags *rootFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective options and where they came from",
		Long: `Show the options after layering defaults, the options file, the service
descriptor sections and command-line flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return fail(cmd, runConfigShow(cmd, app, flags, format), flags.verbose)
		},
	}

	cmd.Flags().StringVar(&format, "format", "toml", "output format: toml or json")

	return cmd
}

func runConfigShow(cmd *cobra.Command, app *App, flags *rootFlags, format string) error {
	if format != "toml" && format != formatJSON {
		return usageError(fmt.Errorf("%w %q (valid: toml, json)", ErrInvalidFormat, format))
	}

	s, err := app.newSession(cmd.Context(), flags, false)
	if err != nil {
		return err
	}

	report := configReport{
		Options:  s.loaded.Options.Settings(),
		File:     s.loaded.FilePath,
		Sections: s.loaded.Sections,
	}

	out := cmd.OutOrStdout()
	if format == formatJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	return writeTOMLReport(out, report)
}

func writeTOMLReport(w io.Writer, report configReport) error {
	if report.File != "" {
		fmt.Fprintf(w, "# options file: %s\n", report.File)
	}
	for _, section := range report.Sections {
		fmt.Fprintf(w, "# service section: %s\n", section)
	}
	return toml.NewEncoder(w).Encode(report.Options)
}
