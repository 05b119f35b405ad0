// Package pipeline chains named stages of worker pools into a data-flow
// graph with deterministic sentinel-based shutdown.
//
// Each stage owns an input queue and a fixed number of workers. Workers pull
// items, invoke the stage handler, and forward non-nil results to every
// downstream stage. After all real input is enqueued the producer enqueues
// exactly one shutdown sentinel per first-stage worker; the worker that
// consumes a stage's final sentinel waits for the stage's in-flight items to
// finish forwarding and then passes one sentinel per downstream worker, so
// every stage receives exactly as many sentinels as it has workers and the
// whole graph quiesces without hangs or duplicate signals.
package pipeline

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/lexcrawl/lexcrawl"
)

// Handler processes one item. A nil result drops the item; an error drops
// the item and is logged, never aborting the worker loop.
type Handler func(ctx context.Context, item any) (any, error)

// Stage configures one pipeline stage. Immutable once the pipeline is
// constructed.
type Stage struct {
	// Name identifies the stage in Downstream references and logs.
	Name string

	// Workers is the worker pool size. Defaults to 1. A single-worker
	// stage preserves input order in its output.
	Workers int

	// Handler processes each item.
	Handler Handler

	// CPUBound dispatches the handler through the pipeline's shared
	// CPU executor so heavy work cannot starve I/O-bound stages.
	CPUBound bool

	// MaxConcurrent optionally caps concurrent handler invocations below
	// the worker count.
	MaxConcurrent int

	// Downstream names the stages that receive this stage's results.
	// Referenced stages must appear later in the stage list.
	Downstream []string
}

func (s Stage) workers() int {
	if s.Workers <= 0 {
		return 1
	}
	return s.Workers
}

// sentinelToken is the shutdown signal passed through stage queues.
type sentinelToken struct{}

// Pipeline runs a fixed stage graph over batches of items.
type Pipeline struct {
	stages []Stage
	logger *slog.Logger

	// cpu bounds CPU-heavy handlers across all stages.
	cpu *semaphore.Weighted
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger for handler faults and stage lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithCPUWorkers sets the shared CPU executor size. Defaults to the number
// of CPUs.
func WithCPUWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.cpu = semaphore.NewWeighted(int64(n))
		}
	}
}

// New validates the stage graph and constructs a Pipeline. Stages must have
// unique names and non-nil handlers; downstream references must point at
// later stages, so the graph is acyclic and every stage has one upstream.
func New(stages []Stage, opts ...Option) (*Pipeline, error) {
	if len(stages) == 0 {
		return nil, lexcrawl.Errorf(lexcrawl.EINVALID, "pipeline requires at least one stage")
	}
	index := make(map[string]int, len(stages))
	for i, st := range stages {
		if st.Name == "" {
			return nil, lexcrawl.Errorf(lexcrawl.EINVALID, "stage %d has no name", i)
		}
		if st.Handler == nil {
			return nil, lexcrawl.Errorf(lexcrawl.EINVALID, "stage %q has no handler", st.Name)
		}
		if _, ok := index[st.Name]; ok {
			return nil, lexcrawl.Errorf(lexcrawl.EINVALID, "duplicate stage name %q", st.Name)
		}
		index[st.Name] = i
	}
	fed := make(map[string]bool)
	for i, st := range stages {
		for _, name := range st.Downstream {
			j, ok := index[name]
			if !ok {
				return nil, lexcrawl.Errorf(lexcrawl.EINVALID, "stage %q references unknown stage %q", st.Name, name)
			}
			if j <= i {
				return nil, lexcrawl.Errorf(lexcrawl.EINVALID, "stage %q references non-later stage %q", st.Name, name)
			}
			if fed[name] {
				return nil, lexcrawl.Errorf(lexcrawl.EINVALID, "stage %q has more than one upstream", name)
			}
			fed[name] = true
		}
	}
	p := &Pipeline{
		stages: stages,
		logger: slog.Default(),
		cpu:    semaphore.NewWeighted(int64(runtime.NumCPU())),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// runtimeStage is the per-run state of one stage.
type runtimeStage struct {
	cfg Stage
	in  chan any

	// inflight counts items enqueued but not yet fully processed and
	// forwarded. Add happens before the send, so once the final sentinel
	// is consumed no further Adds can occur and Wait is race-free.
	inflight sync.WaitGroup

	// sentinels counts shutdown signals consumed; the worker consuming
	// the last one propagates downstream.
	sentinels atomic.Int32

	// sem is the optional per-stage concurrency ceiling.
	sem *semaphore.Weighted

	downstream []*runtimeStage
}

// Run feeds items through the stage graph and blocks until every stage has
// drained and every worker has exited. Handler failures drop items and are
// reported through the log only; Run fails only on context cancellation.
func (p *Pipeline) Run(ctx context.Context, items []any) error {
	stages := make([]*runtimeStage, len(p.stages))
	byName := make(map[string]*runtimeStage, len(p.stages))
	for i, cfg := range p.stages {
		rs := &runtimeStage{
			cfg: cfg,
			// Handlers emit at most one result per input, so a stage
			// can never receive more than the batch size plus its own
			// sentinels; sized so sends never block.
			in: make(chan any, len(items)+cfg.workers()),
		}
		if cfg.MaxConcurrent > 0 {
			rs.sem = semaphore.NewWeighted(int64(cfg.MaxConcurrent))
		}
		stages[i] = rs
		byName[cfg.Name] = rs
	}
	for i, cfg := range p.stages {
		for _, name := range cfg.Downstream {
			stages[i].downstream = append(stages[i].downstream, byName[name])
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, rs := range stages {
		for w := 0; w < rs.cfg.workers(); w++ {
			g.Go(func() error {
				return p.worker(ctx, rs)
			})
		}
	}

	// All input and sentinels fit in the first stage's buffer, so the
	// producer never blocks.
	first := stages[0]
	for _, item := range items {
		if item == nil {
			continue
		}
		first.inflight.Add(1)
		first.in <- item
	}
	for i := 0; i < first.cfg.workers(); i++ {
		first.in <- sentinelToken{}
	}

	return g.Wait()
}

func (p *Pipeline) worker(ctx context.Context, rs *runtimeStage) error {
	for {
		var item any
		select {
		case <-ctx.Done():
			return ctx.Err()
		case item = <-rs.in:
		}

		if _, ok := item.(sentinelToken); ok {
			if int(rs.sentinels.Add(1)) == rs.cfg.workers() {
				rs.inflight.Wait()
				for _, d := range rs.downstream {
					for i := 0; i < d.cfg.workers(); i++ {
						select {
						case <-ctx.Done():
							return ctx.Err()
						case d.in <- sentinelToken{}:
						}
					}
				}
			}
			return nil
		}

		out, err := p.invoke(ctx, rs, item)
		switch {
		case err != nil && ctx.Err() != nil:
			rs.inflight.Done()
			return ctx.Err()
		case err != nil:
			p.logger.Error("stage handler failed, dropping item",
				slog.String("stage", rs.cfg.Name),
				slog.String("error", err.Error()),
			)
		case out != nil:
			for _, d := range rs.downstream {
				d.inflight.Add(1)
				select {
				case <-ctx.Done():
					d.inflight.Done()
					rs.inflight.Done()
					return ctx.Err()
				case d.in <- out:
				}
			}
		}
		rs.inflight.Done()
	}
}

// invoke runs the handler under the stage ceiling and, for CPU-bound
// stages, the shared CPU executor.
func (p *Pipeline) invoke(ctx context.Context, rs *runtimeStage, item any) (any, error) {
	if rs.sem != nil {
		if err := rs.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer rs.sem.Release(1)
	}
	if rs.cfg.CPUBound && p.cpu != nil {
		if err := p.cpu.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer p.cpu.Release(1)
	}
	return rs.cfg.Handler(ctx, item)
}
