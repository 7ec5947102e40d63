// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/invowk/envinject/internal/host"
	"github.com/invowk/envinject/internal/merge"

	"github.com/spf13/cobra"
)

// newPackageCommand creates the `envinject package` command.
func newPackageCommand(app *App, flags *rootFlags) *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "package",
		Short: "Inject into every function and print the resulting service",
		Long: `Run the package:initialize trigger: load the dotenv file for the stage and
inject it into every function environment (and the provider environment when
the mode calls for it), then print the service descriptor.

Existing values in the descriptor are never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return fail(cmd, runPackage(cmd, app, flags, summary), flags.verbose)
		},
	}

	cmd.Flags().BoolVar(&summary, "summary", false, "print what was written per destination instead of the service")

	return cmd
}

func runPackage(cmd *cobra.Command, app *App, flags *rootFlags, summary bool) error {
	s, err := app.newSession(cmd.Context(), flags, true)
	if err != nil {
		return err
	}

	if err := host.Dispatch(cmd.Context(), s.engine, host.EventPackageInitialize, s.invocation(), ""); err != nil {
		return asServiceError(err)
	}
	if err := s.strictError(nil); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if summary {
		renderReport(out, s.capture.report)
		return nil
	}
	return host.Encode(out, s.service)
}

// renderReport prints one block per destination: written keys in green,
// kept keys in amber.
func renderReport(w io.Writer, report merge.Report) {
	if len(report.Outcomes) == 0 {
		fmt.Fprintln(w, SubtitleStyle.Render("Nothing injected."))
		return
	}

	for _, o := range report.Outcomes {
		fmt.Fprintln(w, CmdStyle.Render(o.Destination))
		if o.Skipped {
			fmt.Fprintln(w, "  "+SubtitleStyle.Render("skipped: no environment"))
			continue
		}
		if len(o.Written) > 0 {
			fmt.Fprintln(w, "  "+SuccessStyle.Render("written: ")+strings.Join(o.Written, ", "))
		}
		if len(o.Kept) > 0 {
			fmt.Fprintln(w, "  "+WarningStyle.Render("kept:    ")+strings.Join(o.Kept, ", "))
		}
		if len(o.Written) == 0 && len(o.Kept) == 0 {
			fmt.Fprintln(w, "  "+SubtitleStyle.Render("no changes"))
		}
	}
	fmt.Fprintf(w, "\n%s %d\n", SubtitleStyle.Render("Total written:"), report.Written())
}
