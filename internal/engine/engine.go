// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"os"

	"github.com/invowk/envinject/internal/config"
	"github.com/invowk/envinject/internal/dotenv"
	"github.com/invowk/envinject/internal/host"
	"github.com/invowk/envinject/internal/keyfilter"
	"github.com/invowk/envinject/internal/merge"
	"github.com/invowk/envinject/internal/resolve"

	"github.com/spf13/afero"
)

const (
	// ProviderDestination labels the provider environment in reports.
	ProviderDestination = "provider"
	// FunctionDestinationPrefix prefixes function names in reports.
	FunctionDestinationPrefix = "function:"

	packageNotice = "Injecting environments into function variables..."
)

type (
	// Engine runs resolve, load, filter and merge for one lifecycle trigger
	// at a time. It keeps no state between triggers; every trigger re-reads
	// the file.
	Engine struct {
		opts     config.Options
		fs       afero.Fs
		environ  func() []string
		reporter Reporter
	}

	// Option configures an Engine.
	Option func(*Engine)

	// Result is the outcome of one load. Err is advisory: the engine has
	// already reported it and degraded to "no variables".
	Result struct {
		Stage config.Stage
		Path  string
		Vars  dotenv.Vars
		Found bool
		Err   error
	}
)

// Compile-time check that Engine hooks every lifecycle event.
var _ host.Plugin = (*Engine)(nil)

// WithFs sets the filesystem dotenv files are resolved and read from.
func WithFs(fsys afero.Fs) Option {
	return func(e *Engine) { e.fs = fsys }
}

// WithEnviron sets the ambient environment used for reference expansion.
func WithEnviron(environ func() []string) Option {
	return func(e *Engine) { e.environ = environ }
}

// WithReporter sets where progress is reported. Nil discards it.
func WithReporter(r Reporter) Option {
	return func(e *Engine) { e.reporter = r }
}

// New creates an Engine for opts. Defaults: the OS filesystem, os.Environ,
// and a LogReporter on stderr.
func New(opts config.Options, options ...Option) *Engine {
	e := &Engine{
		opts:    opts,
		fs:      afero.NewOsFs(),
		environ: os.Environ,
	}
	e.reporter = NewLogReporter(os.Stderr, os.Stderr, false)
	for _, opt := range options {
		opt(e)
	}
	if e.reporter == nil {
		e.reporter = discardReporter{}
	}
	return e
}

// Options returns the options the engine was created with.
func (e *Engine) Options() config.Options { return e.opts }

// Resolve returns the dotenv file path for stage without reading it.
func (e *Engine) Resolve(stage config.Stage) string {
	return resolve.Resolve(e.fs, e.opts.Source(), stage.OrDefault().String())
}

// Load resolves, reads and filters the dotenv file for stage. It never
// fails: a missing file yields Found == false, and a canceled context or a
// broken file additionally sets Err.
func (e *Engine) Load(ctx context.Context, stage config.Stage) Result {
	stage = stage.OrDefault()
	res := Result{Stage: stage}

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	res.Path = e.Resolve(stage)

	loader := &dotenv.Loader{Fs: e.fs, Environ: e.environ}
	vars, ok, err := loader.Load(res.Path, e.opts.Expand())
	if err != nil {
		e.reporter.Failed(res.Path, err)
		res.Err = err
		return res
	}
	if !ok {
		if e.opts.Logging() {
			e.reporter.Missing(res.Path)
		}
		return res
	}

	res.Vars = keyfilter.Apply(vars, e.opts.Policy())
	res.Found = true
	if e.opts.Logging() {
		e.reporter.Loaded(res.Path, res.Vars.Keys())
	}
	return res
}

// PackageInitialize injects into every function of the service, and into
// the provider environment when the options call for it.
func (e *Engine) PackageInitialize(ctx context.Context, inv host.Invocation) error {
	if e.opts.Logging() {
		e.reporter.Notice(packageNotice)
	}
	res := e.Load(ctx, inv.Stage)
	if !res.Found {
		return nil
	}

	var report merge.Report
	if e.opts.InjectsProvider() {
		report = merge.Merge(res.Vars, merge.Options{}, merge.Destination{
			Name: ProviderDestination,
			Env:  inv.Service.Provider.Environment,
		})
	}

	dsts := make([]merge.Destination, 0, len(inv.Service.Functions))
	for _, fn := range inv.Service.Functions {
		dsts = append(dsts, functionDestination(fn))
	}
	fnReport := merge.Merge(res.Vars, e.opts.MergeOptions(), dsts...)
	report.Outcomes = append(report.Outcomes, fnReport.Outcomes...)

	e.reporter.Injected(report)
	return nil
}

// InvokeLocalLoadEnvVars injects into the single function being invoked.
func (e *Engine) InvokeLocalLoadEnvVars(ctx context.Context, inv host.Invocation, fn *host.Function) error {
	res := e.Load(ctx, inv.Stage)
	if !res.Found || fn == nil {
		return nil
	}

	e.reporter.Injected(merge.Merge(res.Vars, e.opts.MergeOptions(), functionDestination(fn)))
	return nil
}

func functionDestination(fn *host.Function) merge.Destination {
	return merge.Destination{Name: FunctionDestinationPrefix + fn.Name, Env: fn.Environment}
}
