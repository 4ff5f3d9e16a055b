package script

import (
	"context"
	"io/fs"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-spectest/errors"
	"github.com/wippyai/wasm-spectest/harness"
	"github.com/wippyai/wasm-spectest/metrics"
	"github.com/wippyai/wasm-spectest/tracing"
)

// Runner executes scripts, each on a fresh harness.
type Runner struct {
	harnessOpts []harness.Option
	skip        map[string]bool
	logger      *zap.Logger
	tracer      *tracing.Tracer
	metrics     *metrics.Metrics
}

// Option configures a Runner.
type Option func(*Runner)

// WithHarnessOptions passes options to every harness the runner creates.
func WithHarnessOptions(opts ...harness.Option) Option {
	return func(r *Runner) { r.harnessOpts = append(r.harnessOpts, opts...) }
}

// WithSkip skips the commands at the given "<source>:<line>" locations.
func WithSkip(locs ...string) Option {
	return func(r *Runner) {
		for _, loc := range locs {
			r.skip[loc] = true
		}
	}
}

// WithLogger sets the runner logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithTracer records script and command spans on t.
func WithTracer(t *tracing.Tracer) Option {
	return func(r *Runner) { r.tracer = t }
}

// WithMetrics records command and script outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// NewRunner creates a runner. Without options it logs nothing, traces to
// the global provider and records no metrics.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{skip: make(map[string]bool)}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.tracer == nil {
		r.tracer = tracing.Global()
	}
	return r
}

// Report summarizes one script run.
type Report struct {
	Source   string
	Total    int
	Passed   int
	Skipped  int
	Failed   int
	Duration time.Duration

	// Err is the first failure, with its location set.
	Err error
}

// OK reports whether every executed command passed.
func (r *Report) OK() bool {
	return r.Err == nil
}

// RunFile loads the script name from fsys and runs it.
func (r *Runner) RunFile(ctx context.Context, fsys fs.FS, name string) (*Report, error) {
	s, err := Load(fsys, name)
	if err != nil {
		return &Report{Source: name, Failed: 1, Err: err}, err
	}
	return r.Run(ctx, s)
}

// Run executes the commands of s in order and stops at the first failure.
// The returned error equals Report.Err.
func (r *Runner) Run(ctx context.Context, s *Script) (*Report, error) {
	start := time.Now()
	report := &Report{Source: s.Source(), Total: len(s.Commands)}
	logger := r.logger.With(zap.String("script", report.Source))

	ctx, span := r.tracer.StartScriptSpan(ctx, report.Source)
	defer func() {
		report.Duration = time.Since(start)
		outcome := metrics.OutcomePass
		if report.Err != nil {
			outcome = metrics.OutcomeFail
		}
		if r.metrics != nil {
			r.metrics.RecordScript(report.Source, outcome, report.Duration)
		}
		tracing.End(span, outcome, report.Err)
		logger.Info("script finished",
			zap.String("outcome", outcome),
			zap.Int("passed", report.Passed),
			zap.Int("skipped", report.Skipped),
			zap.Int("failed", report.Failed),
			zap.Duration("duration", report.Duration))
	}()

	opts := append([]harness.Option{harness.WithLogger(logger)}, r.harnessOpts...)
	h, err := harness.New(ctx, opts...)
	if err != nil {
		report.Err = err
		return report, err
	}
	defer h.Close(ctx)

	st := &state{h: h, script: s, named: make(map[string]*harness.Instance)}
	for _, c := range s.Commands {
		loc := s.Loc(c)
		outcome, err := r.command(ctx, st, c, loc, logger)
		switch outcome {
		case metrics.OutcomePass:
			report.Passed++
		case metrics.OutcomeSkip:
			report.Skipped++
		default:
			report.Failed++
		}
		if err != nil {
			report.Err = errors.WithLoc(err, loc)
			break
		}
	}
	return report, report.Err
}

func (r *Runner) command(ctx context.Context, st *state, c Command, loc string, logger *zap.Logger) (string, error) {
	start := time.Now()
	ctx, span := r.tracer.StartCommandSpan(ctx, loc, c.Type)

	outcome := metrics.OutcomePass
	var err error
	if r.skip[loc] {
		outcome = metrics.OutcomeSkip
	} else {
		var skipped bool
		skipped, err = st.exec(ctx, c)
		switch {
		case err != nil:
			outcome = metrics.OutcomeFail
		case skipped:
			outcome = metrics.OutcomeSkip
		}
	}

	if err != nil {
		logger.Warn("command failed", zap.String("loc", loc), zap.String("type", c.Type), zap.Error(err))
	} else {
		logger.Debug("command", zap.String("loc", loc), zap.String("type", c.Type), zap.String("outcome", outcome))
	}
	if r.metrics != nil {
		r.metrics.RecordCommand(c.Type, outcome, time.Since(start))
	}
	tracing.End(span, outcome, err)
	return outcome, err
}

// state is the per-run interpreter state.
type state struct {
	h       *harness.Harness
	script  *Script
	named   map[string]*harness.Instance
	current *harness.Instance
}

// exec runs one command. skipped is set for commands that carry text
// modules, which need a .wast parser.
func (st *state) exec(ctx context.Context, c Command) (skipped bool, err error) {
	switch c.Type {
	case "module":
		if c.ModuleType == "text" {
			return true, nil
		}
		wasm, err := st.script.ReadModule(c.Filename)
		if err != nil {
			return false, err
		}
		inst, err := st.h.Instance(ctx, wasm, nil)
		if err != nil {
			return false, err
		}
		st.current = inst
		if c.Name != "" {
			st.named[c.Name] = inst
		}
		return false, nil

	case "register":
		inst, err := st.instance(c.Name)
		if err != nil {
			return false, err
		}
		st.h.Register(c.As, inst)
		return false, nil

	case "action":
		act, err := st.action(c.Action)
		if err != nil {
			return false, err
		}
		return false, st.h.Run(ctx, act)

	case "assert_return":
		act, err := st.action(c.Action)
		if err != nil {
			return false, err
		}
		exps := make([]harness.Expectation, len(c.Expected))
		for i, v := range c.Expected {
			if exps[i], err = v.Expectation(); err != nil {
				return false, err
			}
		}
		return false, st.h.AssertReturn(ctx, act, exps...)

	case "assert_return_canonical_nan":
		act, err := st.action(c.Action)
		if err != nil {
			return false, err
		}
		return false, st.h.AssertReturnCanonicalNaN(ctx, act)

	case "assert_return_arithmetic_nan":
		act, err := st.action(c.Action)
		if err != nil {
			return false, err
		}
		return false, st.h.AssertReturnArithmeticNaN(ctx, act)

	case "assert_trap":
		act, err := st.action(c.Action)
		if err != nil {
			return false, err
		}
		return false, st.h.AssertTrap(ctx, act)

	case "assert_exhaustion":
		act, err := st.action(c.Action)
		if err != nil {
			return false, err
		}
		return false, st.h.AssertExhaustion(ctx, act)

	case "assert_malformed", "assert_invalid", "assert_unlinkable", "assert_uninstantiable":
		if c.ModuleType == "text" {
			return true, nil
		}
		wasm, err := st.script.ReadModule(c.Filename)
		if err != nil {
			return false, err
		}
		switch c.Type {
		case "assert_malformed":
			return false, st.h.AssertMalformed(ctx, wasm)
		case "assert_invalid":
			return false, st.h.AssertInvalid(ctx, wasm)
		case "assert_unlinkable":
			return false, st.h.AssertUnlinkable(ctx, wasm)
		default:
			return false, st.h.AssertUninstantiable(ctx, wasm)
		}

	default:
		return false, errors.Unsupported(errors.PhaseLoad, "command type "+c.Type)
	}
}

// instance resolves a module reference: empty for the current module, a
// module name, or a registered namespace.
func (st *state) instance(name string) (*harness.Instance, error) {
	if name == "" {
		if st.current == nil {
			return nil, errors.NotFound(errors.PhaseLoad, "module", "<current>")
		}
		return st.current, nil
	}
	if inst, ok := st.named[name]; ok {
		return inst, nil
	}
	if st.h.Registry().Has(name) {
		return st.h.Registry().Lookup(name), nil
	}
	return nil, errors.NotFound(errors.PhaseLoad, "module", name)
}

func (st *state) action(a Action) (harness.Action, error) {
	inst, err := st.instance(a.Module)
	if err != nil {
		return nil, err
	}

	switch a.Type {
	case "invoke":
		args := make([]any, len(a.Args))
		for i, v := range a.Args {
			val, err := v.Harness()
			if err != nil {
				return nil, err
			}
			args[i] = val
		}
		return st.h.Invoke(inst, a.Field, args...), nil
	case "get":
		return st.h.Read(inst, a.Field), nil
	default:
		return nil, errors.Unsupported(errors.PhaseLoad, "action type "+a.Type)
	}
}
