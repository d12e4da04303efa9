package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/haukened/guardia/internal/guard/common/clock"
	"github.com/haukened/guardia/internal/guard/common/ids"
	"github.com/haukened/guardia/internal/guard/common/log"
	"github.com/haukened/guardia/internal/guard/config"
	"github.com/haukened/guardia/internal/guard/domain"
	"github.com/haukened/guardia/internal/guard/gateways/harness"
	"github.com/haukened/guardia/internal/guard/repos/seed"
	"github.com/haukened/guardia/internal/guard/repos/state"
	"github.com/haukened/guardia/internal/guard/repos/state/bolt"
	"github.com/haukened/guardia/internal/guard/repos/state/memory"
	"github.com/haukened/guardia/internal/guard/repos/verdicts"
	"github.com/haukened/guardia/internal/guard/repos/verdicts/bloom"
	"github.com/haukened/guardia/internal/guard/repos/verdicts/lru"
	"github.com/haukened/guardia/internal/guard/services/firewall"
)

const (
	version = "0.1.0-dev"
	appName = "guardiad"
)

// Application holds all the components of the firewall daemon
type Application struct {
	config     *config.AppConfig
	store      state.Store
	service    *firewall.Service
	transport  *harness.StreamTransport
	dispatcher *harness.Dispatcher
	loaded     state.LoadResult
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	err = log.Configure(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		os.Exit(1)
	}

	log.Info(map[string]any{
		"version":       version,
		"env":           cfg.Env,
		"log_level":     cfg.LogLevel,
		"store_path":    cfg.StorePath,
		"seed_file":     cfg.SeedFile,
		"cache_size":    cfg.CacheSize,
		"bloom_fp_rate": cfg.BloomFPRate,
	}, "Starting "+appName)

	app, err := buildApplication(cfg, os.Stdin, os.Stdout)
	if err != nil {
		log.Fatal(map[string]any{"error": err}, "Failed to build application")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info(map[string]any{"signal": sig.String()}, "Shutdown signal received")
		cancel()
	}()

	if err := app.Run(ctx); err != nil {
		log.Fatal(map[string]any{"error": err}, "Harness failed")
	}

	log.Info(nil, appName+" stopped gracefully")
}

// buildApplication constructs all components and wires them together.
// Commands are read from in and replies written to out.
func buildApplication(cfg *config.AppConfig, in io.Reader, out io.Writer) (*Application, error) {
	clk := &clock.RealClock{}
	logger := log.GetLogger()

	store, err := buildStore(cfg, clk)
	if err != nil {
		return nil, fmt.Errorf("failed to build store: %w", err)
	}

	defaults, err := buildDefaults(cfg, clk, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to build default state: %w", err)
	}

	initial, result := state.LoadOrDefault(store, defaults, logger)

	repo, err := buildRepository(cfg)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to build verdict repository: %w", err)
	}

	service := firewall.New(initial, firewall.Options{
		Repo:   repo,
		Store:  store,
		Clock:  clk,
		IDs:    ids.UUIDGenerator{},
		Logger: logger,
	})

	return &Application{
		config:     cfg,
		store:      store,
		service:    service,
		transport:  harness.NewStreamTransport(in, out, harness.NewJSONCodec(), logger),
		dispatcher: harness.NewDispatcher(service),
		loaded:     result,
	}, nil
}

// buildStore opens the bolt database when a path is configured and falls back
// to an in-memory store otherwise.
func buildStore(cfg *config.AppConfig, clk clock.Clock) (state.Store, error) {
	if cfg.StorePath == "" {
		log.Info(map[string]any{"type": "memory"}, "State store configured")
		return memory.New(), nil
	}
	store, err := bolt.New(cfg.StorePath, cfg.StoreKey, clk)
	if err != nil {
		return nil, err
	}
	log.Info(map[string]any{
		"type": "bolt",
		"path": cfg.StorePath,
		"key":  cfg.StoreKey,
	}, "State store configured")
	return store, nil
}

// buildDefaults returns the first-run state: the seed file if one is
// configured, the built-in defaults otherwise.
func buildDefaults(cfg *config.AppConfig, clk clock.Clock, logger log.Logger) (domain.State, error) {
	if cfg.SeedFile == "" {
		return domain.DefaultState(clk.Now()), nil
	}
	return seed.Load(cfg.SeedFile, clk, ids.UUIDGenerator{}, logger)
}

func buildRepository(cfg *config.AppConfig) (verdicts.Repository, error) {
	cache, err := lru.New(cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create verdict cache: %w", err)
	}
	log.Info(map[string]any{
		"type":          "LRU",
		"size":          cfg.CacheSize,
		"bloom_fp_rate": cfg.BloomFPRate,
	}, "Verdict cache configured")
	return verdicts.NewRepository(cache, bloom.NewFactory(), cfg.BloomFPRate), nil
}

// Run serves harness commands until the input ends or ctx is cancelled, then
// closes the store. Cancellation counts as a clean stop.
func (app *Application) Run(ctx context.Context) error {
	snap := app.service.Snapshot()
	log.Info(map[string]any{
		"source": app.loaded.String(),
		"rules":  len(snap.Rules),
		"logs":   len(snap.Logs),
		"status": snap.Status.String(),
	}, "Firewall ready")

	serveErr := app.transport.Serve(ctx, app.dispatcher)
	if errors.Is(serveErr, context.Canceled) {
		serveErr = nil
	}

	log.Info(nil, "Shutdown initiated")

	st := app.service.Stats()
	log.Info(map[string]any{
		"saves":         st.Saves,
		"save_failures": st.SaveFailures,
		"cache_hits":    st.Verdicts.Hits,
		"cache_misses":  st.Verdicts.Misses,
		"prefiltered":   st.Verdicts.Prefiltered,
		"store_saves":   st.Store.Saves,
		"store_saved":   st.Store.SavedUnix,
		"store_bytes":   st.Store.Bytes,
	}, "Firewall stats")

	if err := app.store.Close(); err != nil {
		log.Warn(map[string]any{"error": err}, "Error closing state store")
		if serveErr == nil {
			return fmt.Errorf("failed to close store: %w", err)
		}
	}
	return serveErr
}
