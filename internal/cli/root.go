// Package cli implements the deadline command line.
package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/aristath/deadline/internal/config"
	"github.com/aristath/deadline/internal/events"
	"github.com/aristath/deadline/internal/journal"
	"github.com/aristath/deadline/internal/logging"
	"github.com/aristath/deadline/internal/scheduler"
)

// app carries state shared by all subcommands.
type app struct {
	globalPath  string
	projectPath string
	logLevel    string
	logFormat   string
	debug       bool

	cfg    *config.Config
	logger zerolog.Logger
}

// NewRootCmd creates the root cobra command for the deadline CLI.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "deadline",
		Short: "Earliest-deadline-first task executor",
		Long: "deadline runs tasks one at a time on a logical clock, always picking the\n" +
			"earliest deadline among tasks that can still finish in time.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		SilenceUsage: true,
	}

	globalPath, projectPath, err := config.DefaultPaths()
	if err != nil {
		globalPath = ""
	}

	root.PersistentFlags().StringVar(&a.globalPath, "global-config", globalPath, "Global config file")
	root.PersistentFlags().StringVar(&a.projectPath, "config", projectPath, "Project config file")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format (text, json)")

	root.AddCommand(
		newDemoCmd(a),
		newReplCmd(a),
		newRunCmd(a),
		newServeCmd(a),
		newTUICmd(a),
		newConfigCmd(a),
	)

	return root
}

// setup loads configuration and builds the logger. Flags override the config file.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.globalPath, a.projectPath)
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if a.debug {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	log.Logger = a.logger
	return nil
}

// openJournal opens the in-memory journal when enabled. A nil journal means journaling is off.
func (a *app) openJournal(ctx context.Context) (*journal.Journal, error) {
	if !a.cfg.Journal.Enabled {
		return nil, nil
	}
	j, err := journal.NewMemoryJournal(ctx, journal.Options{MaxFailures: a.cfg.Journal.MaxFailures})
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	return j, nil
}

// session is one executor wired to a bus, a decision logger and an optional journal run.
type session struct {
	exec     *scheduler.Executor
	bus      *events.EventBus
	journal  *journal.Journal
	recorder *journal.Recorder
	logger   zerolog.Logger
}

func (a *app) newSession(ctx context.Context, name string) (*session, error) {
	s := &session{bus: events.NewEventBus(), logger: a.logger}

	j, err := a.openJournal(ctx)
	if err != nil {
		return nil, err
	}
	if j != nil {
		runID, err := j.StartRun(ctx, name)
		if err != nil {
			a.logger.Warn().Err(err).Msg("journal unavailable, continuing without it")
			j.Close()
		} else {
			s.journal = j
			s.recorder = journal.NewRecorder(j, runID, a.logger)
			s.recorder.Start(ctx, s.bus.SubscribeAll(a.cfg.Events.Buffer))
		}
	}

	s.exec = scheduler.NewExecutor(
		scheduler.WithObserver(events.NewBusObserver(s.bus)),
		scheduler.WithObserver(decisionLogger(a.logger)),
	)
	return s, nil
}

// close stops the bus, waits for the journal to catch up, and returns the journal's per-type counts.
func (s *session) close(ctx context.Context) map[string]int {
	s.bus.Close()
	if s.recorder == nil {
		return nil
	}
	defer s.journal.Close()

	s.recorder.Wait()
	counts, err := s.journal.Counts(ctx, s.recorder.RunID())
	if err != nil {
		s.logger.Warn().Err(err).Str("run_id", s.recorder.RunID()).Msg("failed to read journal counts")
		return nil
	}
	return counts
}

// decisionLogger logs every executor decision at debug level.
func decisionLogger(logger zerolog.Logger) scheduler.Observer {
	return scheduler.ObserverFunc(func(d scheduler.Decision) {
		if d.Kind == scheduler.DecisionTick || d.Kind == scheduler.DecisionWorked {
			logger.Trace().Str("decision", d.Kind.String()).Int("time", d.At).Str("task", d.Task.ID).Msg("decision")
			return
		}
		logger.Debug().
			Str("decision", d.Kind.String()).
			Int("time", d.At).
			Str("task", d.Task.ID).
			Bool("stale", d.Stale).
			Int("total_value", d.TotalValue).
			Msg("decision")
	})
}
