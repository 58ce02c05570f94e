// Package search runs the staged retrieval-and-ranking pipeline over a request-private catalog snapshot.
package search

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dsjohal14/shopsearch/internal/libs/obs"
	"github.com/dsjohal14/shopsearch/internal/scope/catalog"
	"github.com/dsjohal14/shopsearch/internal/scope/query"
	"github.com/dsjohal14/shopsearch/internal/scope/scoring"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// Pipeline executes search requests.
// It holds only read-only configuration; every Execute call owns its own State.
type Pipeline struct {
	source       catalog.Source
	engine       *scoring.Engine
	parserOpts   []query.Option
	logger       zerolog.Logger
	metrics      *obs.Metrics
	defaultLimit int
	maxLimit     int
	stages       []stage
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithEngine sets the scoring engine
func WithEngine(e *scoring.Engine) Option {
	return func(p *Pipeline) {
		if e != nil {
			p.engine = e
		}
	}
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithMetrics sets the metrics sink
func WithMetrics(m *obs.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithBrands supplies the brand vocabulary used when parsing raw queries
func WithBrands(brands []string) Option {
	return func(p *Pipeline) {
		p.parserOpts = append(p.parserOpts, query.WithBrands(brands))
	}
}

// WithLimits sets the default and maximum result limits; non-positive values keep the defaults
func WithLimits(defaultLimit, maxLimit int) Option {
	return func(p *Pipeline) {
		if maxLimit > 0 {
			p.maxLimit = maxLimit
		}
		if defaultLimit > 0 {
			p.defaultLimit = defaultLimit
		}
	}
}

// New creates a pipeline reading from src
func New(src catalog.Source, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:       src,
		engine:       scoring.NewEngine(nil),
		logger:       obs.Logger("search"),
		defaultLimit: DefaultLimit,
		maxLimit:     MaxLimit,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.defaultLimit = min(p.defaultLimit, p.maxLimit)
	p.stages = p.defaultStages()
	return p
}

// Execute runs the seven stages in order.
// The returned Result is never nil. The error is non-nil only when the request is invalid
// (ErrInvalidRequest) or a stage failed (ErrStageFailed); catalog failures degrade to an empty result.
func (p *Pipeline) Execute(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	id := uuid.NewString()
	logger := p.logger.With().Str("execution_id", id).Logger()

	res := newResult(id)

	if err := req.Validate(); err != nil {
		logger.Warn().Err(err).Msg("rejected search request")
		res.fail(err, start)
		p.metrics.ObserveRun(obs.OutcomeInvalid, 0)
		return res, err
	}

	state := State{Request: req}
	for _, st := range p.stages {
		if err := ctx.Err(); err != nil {
			err = fmt.Errorf("%w: %s: %w", ErrStageFailed, st.name, err)
			return p.abort(res, state, err, start, logger)
		}

		next, sum, err := p.runStage(ctx, st, state)
		if err != nil {
			return p.abort(res, state, err, start, logger)
		}

		state = next
		state.Metadata.Steps = append(slices.Clone(state.Metadata.Steps), st.name)
		res.Execution.Summaries = append(res.Execution.Summaries, sum)

		logger.Debug().
			Str("stage", st.name).
			Int("before", sum.Before).
			Int("after", sum.After).
			Bool("fallback", sum.FallbackUsed).
			Str("reason", sum.Reason).
			Msg("stage complete")
	}

	res.succeed(state, start)
	p.metrics.ObserveRun(obs.OutcomeOK, res.TotalFound)

	logger.Info().
		Int("total_found", res.TotalFound).
		Int("returned", len(res.Data)).
		Bool("fallback", res.Execution.FallbackUsed).
		Float64("time_ms", res.Execution.TimeMs).
		Msg("search complete")

	return res, nil
}

func (p *Pipeline) runStage(ctx context.Context, st stage, in State) (out State, sum StepSummary, err error) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: panic: %v", ErrStageFailed, st.name, r)
		}
		p.metrics.ObserveStage(st.name, time.Since(started))
	}()

	out, sum, err = st.run(ctx, in)
	if err != nil {
		return in, sum, fmt.Errorf("%w: %s: %w", ErrStageFailed, st.name, err)
	}
	sum.Stage = st.name
	sum.DurationMs = msSince(started)
	return out, sum, nil
}

func (p *Pipeline) abort(res *Result, state State, err error, start time.Time, logger zerolog.Logger) (*Result, error) {
	res.Execution.Steps = slices.Clone(state.Metadata.Steps)
	res.Filters = state.Filters
	res.Execution.FallbackUsed = state.Filters.FallbackUsed
	res.Execution.CatalogSize = len(state.AllItems)
	res.fail(err, start)
	p.metrics.ObserveRun(obs.OutcomeFailed, 0)

	logger.Error().Err(err).Strs("completed", res.Execution.Steps).Msg("search aborted")
	return res, err
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
