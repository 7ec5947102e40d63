// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/invowk/envinject/internal/dotenv"

	"github.com/charmbracelet/glamour"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	formatDotenv   = "dotenv"
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

// ErrInvalidFormat is returned when --format names an unknown output format.
var ErrInvalidFormat = errors.New("invalid output format")

// newPrintCommand creates the `envinject print` command.
func newPrintCommand(app *App, flags *rootFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the filtered variables for a stage",
		Long: `Load the dotenv file for the stage, apply include/exclude, and print the
variables that would be injected. Nothing is written to the service.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return fail(cmd, runPrint(cmd, app, flags, format), flags.verbose)
		},
	}

	cmd.Flags().StringVar(&format, "format", formatDotenv, "output format: dotenv, json or markdown")

	return cmd
}

// newResolveCommand creates the `envinject resolve` command.
func newResolveCommand(app *App, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Print the dotenv file that would be read for a stage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.newSession(cmd.Context(), flags, false)
			if err != nil {
				return fail(cmd, err, flags.verbose)
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.engine.Resolve(s.stage))
			return nil
		},
	}
}

func runPrint(cmd *cobra.Command, app *App, flags *rootFlags, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	s, err := app.newSession(cmd.Context(), flags, false)
	if err != nil {
		return err
	}

	res := s.engine.Load(cmd.Context(), s.stage)
	if err := s.strictError(res.Err); err != nil {
		return err
	}

	return writeVars(cmd.OutOrStdout(), res.Vars, format)
}

func validateFormat(format string) error {
	switch format {
	case formatDotenv, formatJSON, formatMarkdown:
		return nil
	default:
		return usageError(fmt.Errorf("%w %q (valid: %s, %s, %s)", ErrInvalidFormat, format, formatDotenv, formatJSON, formatMarkdown))
	}
}

// writeVars renders vars to w in the given format.
func writeVars(w io.Writer, vars dotenv.Vars, format string) error {
	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(vars.Map(), "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case formatMarkdown:
		rendered, err := glamour.Render(markdownTable(vars), "auto")
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(w, rendered)
		return err
	default:
		if vars.Len() == 0 {
			return nil
		}
		content, err := godotenv.Marshal(vars.Map())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, content)
		return err
	}
}

func markdownTable(vars dotenv.Vars) string {
	if vars.Len() == 0 {
		return "_No variables._\n"
	}

	var sb strings.Builder
	sb.WriteString("| Key | Value |\n|-----|-------|\n")
	for key, value := range vars.All() {
		sb.WriteString("| " + key + " | " + strings.ReplaceAll(value, "|", `\|`) + " |\n")
	}
	return sb.String()
}
