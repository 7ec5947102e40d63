// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/invowk/envinject/internal/config"
	"github.com/invowk/envinject/internal/host"
	"github.com/invowk/envinject/internal/issue"
	"github.com/invowk/envinject/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlags holds global flag values. Option flags only override the
// loaded options when they were set on the command line.
type rootFlags struct {
	configPath      string
	servicePath     string
	serviceExplicit bool
	stage           string
	verbose         bool
	strict          bool

	path              string
	basePath          string
	expand            bool
	include           []string
	exclude           []string
	quiet             bool
	mode              string
	onlyDeclared      bool
	injectProviderEnv bool

	changed map[string]bool
}

// NewRootCommand builds the envinject command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "envinject",
		Short: "Inject stage-specific dotenv variables into serverless function environments",
		Long: TitleStyle.Render("envinject") + SubtitleStyle.Render(" - dotenv injection for serverless services") + `

envinject picks the dotenv file for a deployment stage (.env.<stage>, falling
back to .env), narrows its keys with an include or exclude list, and writes
them into the provider and function environments of a serverless.yml.
Values already set in the descriptor always win.

` + SubtitleStyle.Render("Examples:") + `
  envinject package -s production       Inject into every function and print the service
  envinject invoke hello                Show the environment 'hello' would run with
  envinject resolve -s staging          Show which dotenv file would be read
  envinject print --format json         Show the filtered variables
  envinject config show                 Show the effective options`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			flags.serviceExplicit = cmd.Flags().Changed("service")
			flags.changed = map[string]bool{}
			for _, name := range []string{
				"path", "base-path", "expand", "include", "exclude",
				"quiet", "mode", "only-declared", "inject-provider-env",
			} {
				flags.changed[name] = cmd.Flags().Changed(name)
			}
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "options file, CUE or TOML (default is ./envinject.cue or ./envinject.toml)")
	pf.StringVarP(&flags.servicePath, "service", "f", host.DefaultServiceFile, "service descriptor")
	pf.StringVarP(&flags.stage, "stage", "s", "", "deployment stage (default is provider.stage, then "+config.DefaultStage.String()+")")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.BoolVar(&flags.strict, "strict", false, "fail when the dotenv file cannot be read or parsed")

	pf.StringVar(&flags.path, "path", "", "explicit dotenv file, bypassing stage selection")
	pf.StringVar(&flags.basePath, "base-path", "", "prefix for .env and .env.<stage>")
	pf.BoolVar(&flags.expand, "expand", false, "expand ${VAR} references in values")
	pf.StringSliceVar(&flags.include, "include", nil, "only inject these keys")
	pf.StringSliceVar(&flags.exclude, "exclude", nil, "never inject these keys (ignored with --include)")
	pf.BoolVarP(&flags.quiet, "quiet", "q", false, "suppress information lines")
	pf.StringVar(&flags.mode, "mode", "", "injection mode: function or provider")
	pf.BoolVar(&flags.onlyDeclared, "only-declared", false, "only fill keys the function already declares")
	pf.BoolVar(&flags.injectProviderEnv, "inject-provider-env", false, "also inject into the provider environment in function mode")

	rootCmd.AddCommand(newPackageCommand(app, flags))
	rootCmd.AddCommand(newInvokeCommand(app, flags))
	rootCmd.AddCommand(newResolveCommand(app, flags))
	rootCmd.AddCommand(newPrintCommand(app, flags))
	rootCmd.AddCommand(newConfigCommand(app, flags))

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	return rootCmd
}

// overrides returns the option values set explicitly on the command line,
// keyed by canonical option name.
func (f *rootFlags) overrides() map[string]any {
	out := map[string]any{}
	set := func(flag, key string, value any) {
		if f.changed[flag] {
			out[key] = value
		}
	}
	set("path", "path", f.path)
	set("base-path", "base_path", f.basePath)
	set("expand", "expand", f.expand)
	set("include", "include", f.include)
	set("exclude", "exclude", f.exclude)
	set("quiet", "logging", !f.quiet)
	set("mode", "mode", f.mode)
	set("only-declared", "only_declared", f.onlyDeclared)
	set("inject-provider-env", "inject_provider_env", f.injectProviderEnv)
	return out
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version != "dev" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev (built from source)"
}

// Execute builds the command tree and runs it. This is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(int(types.ExitFailure))
	}

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(int(exitCodeOf(err)))
	}
}

// fail renders err on stderr, including the issue catalog entry when one is
// attached, and returns an ExitError so that fang does not print it again.
func fail(cmd *cobra.Command, err error, verbose bool) error {
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	fmt.Fprintln(stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		renderServiceError(stderr, svcErr)
	}

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return &ExitError{Code: exitCodeOf(err)}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
