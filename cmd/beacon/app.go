package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/haukened/beacon/internal/browser/common/clock"
	"github.com/haukened/beacon/internal/browser/common/log"
	"github.com/haukened/beacon/internal/browser/config"
	"github.com/haukened/beacon/internal/browser/domain"
	"github.com/haukened/beacon/internal/browser/gateways/engine"
	"github.com/haukened/beacon/internal/browser/repos/blocklist"
	"github.com/haukened/beacon/internal/browser/repos/blocklist/bloom"
	"github.com/haukened/beacon/internal/browser/repos/blocklist/lru"
	"github.com/haukened/beacon/internal/browser/repos/journal"
	"github.com/haukened/beacon/internal/browser/services/navigator"
)

// newEngine is swapped in tests.
var newEngine = engine.NewEngine

// Application holds the wired browser shell.
type Application struct {
	config      *config.AppConfig
	journal     journal.Journal
	engine      engine.RenderingEngine
	coordinator *navigator.Coordinator
}

// buildApplication constructs all components and wires them together. The
// engine is created but not opened; Run opens it.
func buildApplication(cfg *config.AppConfig, logger log.Logger) (*Application, error) {
	clk := &clock.RealClock{}

	classifier, err := buildClassifier(cfg, logger)
	if err != nil {
		return nil, err
	}

	store, err := openJournal(cfg, logger)
	if err != nil {
		return nil, err
	}
	// blocked attempts are written off the decision path
	j := journal.NewAsync(store, journal.DefaultQueueSize, logger)

	eng, err := newEngine(engine.EngineRod, engine.Options{
		Bin:              cfg.EngineBin,
		DebuggerURL:      cfg.EngineDebuggerURL,
		Headless:         cfg.EngineHeadless,
		GateSubresources: cfg.EngineGateSubresources,
	}, logger)
	if err != nil {
		_ = j.Close()
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	coord, err := navigator.New(navigator.Options{
		Classifier:        classifier,
		Engine:            eng,
		Resolver:          navigator.NewResolver(cfg.SearchEndpoint),
		Recorder:          j,
		Clock:             clk,
		Logger:            logger,
		SupersededHistory: cfg.SupersededHistory,
	})
	if err != nil {
		_ = j.Close()
		return nil, fmt.Errorf("failed to create coordinator: %w", err)
	}

	return &Application{
		config:      cfg,
		journal:     j,
		engine:      eng,
		coordinator: coord,
	}, nil
}

// buildClassifier loads the configured fragment sets and builds the
// classifier with its optional prefilter and verdict cache.
func buildClassifier(cfg *config.AppConfig, logger log.Logger) (*blocklist.Classifier, error) {
	domains, keywords, err := blocklist.LoadFragments(blocklist.Sources{
		Builtin:       cfg.BlocklistBuiltin,
		DomainFiles:   cfg.BlocklistDomains,
		KeywordFiles:  cfg.BlocklistKeywords,
		DocumentFiles: cfg.BlocklistDocuments,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load blocklist: %w", err)
	}

	cache, err := lru.New(cfg.BlocklistCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create verdict cache: %w", err)
	}

	classifier, err := blocklist.New(blocklist.Options{
		Domains:      domains,
		Keywords:     keywords,
		Prefilter:    bloom.NewFactory(),
		PrefilterMin: cfg.BlocklistPrefilterMin,
		Cache:        cache,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build classifier: %w", err)
	}

	st := classifier.Stats()
	log.Info(map[string]any{
		"domains":     st.DomainFragments,
		"keywords":    st.KeywordFragments,
		"prefiltered": st.Prefiltered,
		"cache_size":  cfg.BlocklistCacheSize,
	}, "Classifier configured")
	return classifier, nil
}

// openJournal opens the bbolt journal, or returns a no-op journal when no
// path is configured.
func openJournal(cfg *config.AppConfig, logger log.Logger) (journal.Journal, error) {
	if cfg.JournalPath == "" {
		log.Info(map[string]any{"disabled": true}, "Blocked-attempt journal disabled")
		return journal.Nop{}, nil
	}
	j, err := journal.Open(cfg.JournalPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	log.Info(map[string]any{"path": cfg.JournalPath}, "Blocked-attempt journal opened")
	return j, nil
}

// Run opens the engine, optionally loads start, and drives the coordinator
// from in until in is exhausted, a quit command is read, a signal arrives
// or ctx is cancelled.
func (app *Application) Run(ctx context.Context, start string, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := app.engine.Open(ctx, app.coordinator); err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	log.Info(map[string]any{
		"version":  version,
		"endpoint": app.config.SearchEndpoint,
		"headless": app.config.EngineHeadless,
	}, "Beacon started")

	sh := newShell(app.coordinator, app.journal, out)
	unsubscribe := app.coordinator.Subscribe(sh)
	defer unsubscribe()

	if start != "" {
		sh.submit(ctx, domain.LoadAddress(start))
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return sh.run(gCtx, in)
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			log.Info(map[string]any{"signal": sig.String()}, "Shutdown signal received")
			cancel()
		case <-gCtx.Done():
		}
		return nil
	})

	return g.Wait()
}

// Close shuts the engine down and closes the journal, waiting at most
// defaultShutdownTimeout for the engine.
func (app *Application) Close() error {
	done := make(chan error, 1)
	go func() { done <- app.engine.Close() }()

	var engErr error
	select {
	case engErr = <-done:
	case <-time.After(defaultShutdownTimeout):
		log.Warn(map[string]any{"timeout": defaultShutdownTimeout}, "Engine shutdown timeout exceeded")
		engErr = fmt.Errorf("engine shutdown timeout")
	}

	if err := app.journal.Close(); err != nil {
		return fmt.Errorf("failed to close journal: %w", err)
	}
	if engErr != nil {
		return fmt.Errorf("failed to close engine: %w", engErr)
	}
	log.Info(nil, "Beacon stopped gracefully")
	return nil
}

// printBlocked writes the n most recent journal entries, newest first.
func printBlocked(w io.Writer, j journal.Journal, n int, sites bool) error {
	events, err := j.Recent(n)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}
	st := j.Stats()
	if _, err := fmt.Fprintf(w, "%d blocked attempts\n", st.Total); err != nil {
		return err
	}
	for _, ev := range events {
		if _, err := fmt.Fprintln(w, formatBlocked(ev)); err != nil {
			return err
		}
	}
	if sites {
		for _, s := range sortedSites(st.Sites) {
			if _, err := fmt.Fprintf(w, "%6d  %s\n", st.Sites[s], s); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatBlocked(ev domain.BlockedEvent) string {
	return fmt.Sprintf("%s\t%s\t%s\t%s\t%s",
		ev.At.UTC().Format(time.RFC3339), ev.Checkpoint, ev.Site, ev.Reason, ev.Address)
}
