package pipeline

import (
	"context"
	"log/slog"
)

// Step is one stage of the audit. Steps execute in sequence, each
// reading and extending the shared Audit state. A step returns an
// error only for terminal conditions; degraded results (failed pages,
// missing signals) are recorded in the state and the audit continues.
type Step interface {
	// Do executes the step against the audit state.
	Do(ctx context.Context, audit *Audit) error

	// Name returns the step's name for logging.
	Name() string
}

// Pipeline executes the audit steps in order.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty Pipeline. Steps are added with AddSteps.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddSteps appends steps, executed in the order added.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps in sequence. Cancellation is checked between
// steps; within a step, the step's own context handling applies. The
// first step error aborts the run: the stages feed each other, so a
// terminal failure upstream leaves nothing for downstream to do.
func (p *Pipeline) Execute(ctx context.Context, audit *Audit) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("audit cancelled", "step", step.Name(), "target", audit.Target)
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step", "step", step.Name(), "target", audit.Target)

		if err := step.Do(ctx, audit); err != nil {
			p.logger.Error("step failed", "step", step.Name(), "target", audit.Target, "error", err)
			return err
		}
	}

	return nil
}
