// Package app wires the spectrum registry, undo history, edit journal, and
// configuration into one application shell.
//
// The shell owns the event bus subscriptions that keep the pieces in step:
// a foreground-spectrum change retargets the history manager, a config
// reload re-applies the history bounds, and replay failures surface as
// user-visible messages. All dependencies are injected; nothing here is a
// package-level singleton.
package app

import (
	"fmt"
	"time"

	"github.com/spectrail/spectrail/internal/config"
	"github.com/spectrail/spectrail/internal/engine/history"
	"github.com/spectrail/spectrail/internal/event"
	"github.com/spectrail/spectrail/internal/journal"
	"github.com/spectrail/spectrail/internal/spectrum"
)

// UserMessage is published on event.TopicUserMessage for text the user
// should see, e.g. a failed undo replay.
type UserMessage struct {
	Text string
}

// Application is the assembled shell.
type Application struct {
	cfg    config.Config
	logger *Logger

	Bus     *event.Bus
	Spectra *spectrum.Manager
	History *history.Manager
	Journal *journal.Store // nil when the journal is disabled

	watcher *config.Watcher
	subs    []event.Subscription
}

// Options configures New. Zero values get sensible defaults.
type Options struct {
	// Config is the effective configuration. When zero, config.Default()
	// is used.
	Config config.Config

	// ConfigPath, when set, is watched for live reloads.
	ConfigPath string

	// Logger receives diagnostics. Defaults to a logger at the configured
	// level on stderr.
	Logger *Logger
}

// New assembles an application from options.
func New(opts Options) (*Application, error) {
	cfg := opts.Config
	if cfg == (config.Config{}) {
		cfg = config.Default()
	}

	logger := opts.Logger
	if logger == nil {
		lc := DefaultLoggerConfig()
		lc.Level = ParseLogLevel(cfg.Logging.Level)
		logger = NewLogger(lc)
	}

	bus := event.NewBus()

	a := &Application{
		cfg:     cfg,
		logger:  logger,
		Bus:     bus,
		Spectra: spectrum.NewManager(bus),
	}

	if cfg.Journal.Enabled {
		path := cfg.Journal.Path
		if path == "" {
			var err error
			path, err = config.DefaultJournalPath()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInitialization, err)
			}
		}
		store, err := journal.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInitialization, err)
		}
		a.Journal = store
	}

	a.History = history.NewManager(history.ManagerConfig{
		MaxSteps:    cfg.History.MaxSteps,
		MaxSessions: cfg.History.MaxSessions,
		Logger:      logger.WithComponent("history"),
		Sink:        &busSink{bus: bus, logger: logger},
		Observer:    a.journalObserver(),
	})

	a.subscribe()

	if opts.ConfigPath != "" {
		a.watcher = config.NewWatcher(opts.ConfigPath, a.applyConfig)
		if err := a.watcher.Start(); err != nil {
			// Live reload is a convenience; run without it.
			logger.Warn("config watcher disabled: %v", err)
			a.watcher = nil
		}
	}

	return a, nil
}

// Config returns the effective configuration.
func (a *Application) Config() config.Config {
	return a.cfg
}

// Shutdown stops the config watcher, detaches bus subscriptions, and closes
// the journal.
func (a *Application) Shutdown() error {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	for _, s := range a.subs {
		a.Bus.Unsubscribe(s)
	}
	a.subs = nil

	if a.Journal != nil {
		if err := a.Journal.Close(); err != nil {
			return fmt.Errorf("closing journal: %w", err)
		}
	}
	return nil
}

// subscribe installs the bus handlers binding the pieces together.
func (a *Application) subscribe() {
	// Foreground change retargets the history manager. Delivery is
	// synchronous, so the switch lands before any edit against the new
	// foreground can be recorded.
	a.subs = append(a.subs, a.Bus.Subscribe(event.TopicForegroundChanged, func(ev any) error {
		fg, ok := ev.(spectrum.ForegroundChanged)
		if !ok {
			return fmt.Errorf("unexpected foreground event %T", ev)
		}
		a.History.SetContext(history.NewSessionKey(fg.Token, fg.Samples))
		return nil
	}))

	a.subs = append(a.subs, a.Bus.Subscribe(event.TopicUserMessage, func(ev any) error {
		if msg, ok := ev.(UserMessage); ok {
			a.logger.Warn("%s", msg.Text)
		}
		return nil
	}))
}

// applyConfig re-applies a reloaded configuration to the running pieces.
func (a *Application) applyConfig(cfg config.Config) {
	a.cfg = cfg
	a.logger.SetLevel(ParseLogLevel(cfg.Logging.Level))
	a.History.SetMaxSteps(cfg.History.MaxSteps)
	a.History.SetMaxSessions(cfg.History.MaxSessions)
	a.logger.Info("configuration reloaded")
	a.Bus.Publish(event.TopicConfigChanged, cfg)
}

// journalObserver returns a step observer feeding the journal, or nil when
// the journal is disabled.
func (a *Application) journalObserver() history.StepObserver {
	if a.Journal == nil {
		return nil
	}
	return &journalObserver{store: a.Journal, logger: a.logger.WithComponent("journal")}
}

// journalObserver persists step notifications.
type journalObserver struct {
	store  *journal.Store
	logger *Logger
}

func (o *journalObserver) StepLogged(key history.SessionKey, kind history.StepKind, description string, at time.Time) {
	err := o.store.Append(journal.Entry{
		SessionToken: key.Token(),
		Samples:      spectrum.SampleSet(key.Samples()).String(),
		Kind:         string(kind),
		Description:  description,
		RecordedAt:   at,
	})
	if err != nil {
		// The journal is advisory; a write failure must not block editing.
		o.logger.Warn("journal append failed: %v", err)
	}
}

// busSink forwards replay failures to the user via the bus.
type busSink struct {
	bus    *event.Bus
	logger *Logger
}

func (s *busSink) Warn(msg string, args ...any) {
	text := fmt.Sprintf(msg, args...)
	s.logger.Warn("%s", text)
	s.bus.Publish(event.TopicUserMessage, UserMessage{Text: text})
}
