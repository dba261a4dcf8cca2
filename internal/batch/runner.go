// Package batch plays many scenarios concurrently, each on its own executor.
package batch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aristath/deadline/internal/events"
	"github.com/aristath/deadline/internal/journal"
	"github.com/aristath/deadline/internal/scenario"
	"github.com/aristath/deadline/internal/scheduler"
)

// Result is the outcome of one scenario.
type Result struct {
	Name   string
	RunID  string // Journal run; empty when journaling is off
	Result *scenario.Result
	Err    error
}

// Config configures the runner.
type Config struct {
	Concurrency int              // Max concurrent scenarios (default 4)
	EventBuffer int              // Per-run event subscription buffer (default 256)
	Journal     *journal.Journal // Optional decision journal (nil disables)
	Logger      zerolog.Logger
}

// Runner executes scenarios with bounded concurrency.
type Runner struct {
	config Config
}

// NewRunner creates a new batch runner.
func NewRunner(cfg Config) *Runner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 256
	}
	return &Runner{config: cfg}
}

// Run plays every scenario and returns results in input order. A failing
// scenario is recorded in its result and does not stop the others. Once ctx
// is cancelled, scenarios not yet started are marked with the context error.
func (r *Runner) Run(ctx context.Context, scenarios []*scenario.Scenario) ([]Result, error) {
	results := make([]Result, len(scenarios))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Concurrency)

	for i, sc := range scenarios {
		i, sc := i, sc
		results[i].Name = sc.Name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = fmt.Errorf("scenario %q not started: %w", sc.Name, err)
				return nil
			}
			results[i] = r.runOne(gctx, sc)
			return nil
		})
	}

	_ = g.Wait()
	return results, ctx.Err()
}

// RunFiles loads each path and plays the scenarios. Load failures become
// failed results at the path's position.
func (r *Runner) RunFiles(ctx context.Context, paths []string) ([]Result, error) {
	var loaded []*scenario.Scenario
	var index []int
	results := make([]Result, len(paths))

	for i, p := range paths {
		sc, err := scenario.Load(p)
		if err != nil {
			results[i] = Result{Name: p, Err: err}
			continue
		}
		loaded = append(loaded, sc)
		index = append(index, i)
	}

	played, err := r.Run(ctx, loaded)
	for j, res := range played {
		results[index[j]] = res
	}
	return results, err
}

func (r *Runner) runOne(ctx context.Context, sc *scenario.Scenario) Result {
	logger := r.config.Logger.With().Str("scenario", sc.Name).Logger()
	res := Result{Name: sc.Name}

	var opts []scheduler.Option
	var bus *events.EventBus
	var rec *journal.Recorder

	if r.config.Journal != nil {
		runID, err := r.config.Journal.StartRun(ctx, sc.Name)
		if err != nil {
			// Scheduling goes on without a journal.
			logger.Warn().Err(err).Msg("journal unavailable for scenario")
		} else {
			res.RunID = runID
			bus = events.NewEventBus()
			rec = journal.NewRecorder(r.config.Journal, runID, logger)
			rec.Start(ctx, bus.SubscribeAll(r.config.EventBuffer))
			opts = append(opts, scheduler.WithObserver(events.NewBusObserver(bus)))
		}
	}

	logger.Debug().Int("tasks", len(sc.Tasks)).Int("steps", len(sc.Steps)).Msg("starting scenario")

	exec := scheduler.NewExecutor(opts...)
	out, err := scenario.Apply(exec, sc)

	if bus != nil {
		bus.Close()
		rec.Wait()
		if dropped := bus.Dropped(); dropped > 0 {
			logger.Warn().Uint64("dropped", dropped).Msg("journal missed events")
		}
	}

	if err != nil {
		res.Err = err
		logger.Error().Err(err).Msg("scenario failed")
		return res
	}

	res.Result = out
	logger.Info().
		Int("completed", len(out.Final.Completed)).
		Int("expired", len(out.Final.Expired)).
		Int("total_value", out.Final.TotalValue).
		Int("time", out.Final.Now).
		Msg("scenario finished")
	return res
}
