// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/invowk/envinject/internal/dotenv"
	"github.com/invowk/envinject/internal/host"

	"github.com/spf13/cobra"
)

// newInvokeCommand creates the `envinject invoke <function>` command.
func newInvokeCommand(app *App, flags *rootFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "invoke <function>",
		Short: "Show the environment a function would be invoked with locally",
		Long: `Run the invoke:local:loadEnvVars trigger for one function and print its
environment after injection. Only that function is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return fail(cmd, runInvoke(cmd, app, flags, args[0], format), flags.verbose)
		},
	}

	cmd.Flags().StringVar(&format, "format", formatDotenv, "output format: dotenv, json or markdown")

	return cmd
}

func runInvoke(cmd *cobra.Command, app *App, flags *rootFlags, name, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	s, err := app.newSession(cmd.Context(), flags, true)
	if err != nil {
		return err
	}

	if err := host.Dispatch(cmd.Context(), s.engine, host.EventInvokeLocalLoadEnvVars, s.invocation(), name); err != nil {
		return asServiceError(err)
	}
	if err := s.strictError(nil); err != nil {
		return err
	}

	fn := s.service.Function(name)
	return writeVars(cmd.OutOrStdout(), dotenv.FromMap(fn.Environment), format)
}
