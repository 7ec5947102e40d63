// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/invowk/envinject/internal/config"
	"github.com/invowk/envinject/internal/engine"
	"github.com/invowk/envinject/internal/host"
	"github.com/invowk/envinject/internal/issue"
	"github.com/invowk/envinject/internal/merge"
	"github.com/invowk/envinject/pkg/types"

	"github.com/spf13/afero"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every Cobra handler receives an App and goes
	// through its services.
	App struct {
		Config   ConfigProvider
		Services ServiceLoader
		fs       afero.Fs
		environ  func() []string
		stdout   io.Writer
		stderr   io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config   ConfigProvider
		Services ServiceLoader
		Fs       afero.Fs
		Environ  func() []string
		Stdout   io.Writer
		Stderr   io.Writer
	}

	// ConfigProvider loads the injection options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Loaded, error)
	}

	// ServiceLoader reads a service descriptor.
	ServiceLoader interface {
		Load(fsys afero.Fs, path string) (*host.Service, error)
	}

	fileServiceLoader struct{}

	// session is everything one command invocation needs: the service, the
	// effective options, the stage and an engine reporting into a capture.
	session struct {
		service *host.Service
		loaded  *config.Loaded
		stage   config.Stage
		engine  *engine.Engine
		capture *captureReporter
		strict  bool
	}

	// captureReporter forwards to another Reporter and remembers the last
	// merge report and load failure for the CLI.
	captureReporter struct {
		engine.Reporter
		report merge.Report
		failed error
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.Environ == nil {
		deps.Environ = os.Environ
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Services == nil {
		deps.Services = fileServiceLoader{}
	}

	return &App{
		Config:   deps.Config,
		Services: deps.Services,
		fs:       deps.Fs,
		environ:  deps.Environ,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
	}, nil
}

// Load implements ServiceLoader.
func (fileServiceLoader) Load(fsys afero.Fs, path string) (*host.Service, error) {
	return host.LoadService(fsys, path)
}

// Failed implements engine.Reporter.
func (c *captureReporter) Failed(path string, err error) {
	c.failed = err
	c.Reporter.Failed(path, err)
}

// Injected implements engine.Reporter.
func (c *captureReporter) Injected(report merge.Report) {
	c.report.Outcomes = append(c.report.Outcomes, report.Outcomes...)
	c.Reporter.Injected(report)
}

// newSession loads the service descriptor and options according to the
// global flags and builds an engine. A missing descriptor is tolerated when
// requireService is false and --service was not given explicitly.
func (a *App) newSession(ctx context.Context, flags *rootFlags, requireService bool) (*session, error) {
	svc, err := a.Services.Load(a.fs, flags.servicePath)
	if err != nil {
		if requireService || flags.serviceExplicit || issue.IssueOf(err) != issue.ServiceFileNotFoundId {
			return nil, asServiceError(err)
		}
		svc = &host.Service{
			Provider: host.Provider{Environment: map[string]string{}},
			Custom:   map[string]any{},
		}
	}

	loaded, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: flags.configPath,
		Custom:         svc.Custom,
		Overrides:      flags.overrides(),
		Fs:             a.fs,
	})
	if err != nil {
		return nil, usageError(asServiceError(err))
	}

	capture := &captureReporter{Reporter: engine.NewLogReporter(a.stderr, a.stderr, flags.verbose)}
	eng := engine.New(loaded.Options,
		engine.WithFs(a.fs),
		engine.WithEnviron(a.environ),
		engine.WithReporter(capture),
	)

	return &session{
		service: svc,
		loaded:  loaded,
		stage:   svc.Stage(flags.stage),
		engine:  eng,
		capture: capture,
		strict:  flags.strict,
	}, nil
}

func (s *session) invocation() host.Invocation {
	return host.Invocation{Service: s.service, Stage: s.stage}
}

// strictError turns a swallowed load failure into a failing exit when
// --strict is set.
func (s *session) strictError(loadErr error) error {
	if loadErr == nil {
		loadErr = s.capture.failed
	}
	if !s.strict || loadErr == nil || errors.Is(loadErr, context.Canceled) {
		return nil
	}
	return &ExitError{Code: types.ExitFailure, Err: newStrictError(loadErr)}
}
