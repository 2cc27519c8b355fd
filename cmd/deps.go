package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/kmatcher/internal/api"
	"github.com/abhisek/kmatcher/internal/config"
	"github.com/abhisek/kmatcher/internal/logging"
	"github.com/abhisek/kmatcher/internal/store"
)

// deps are the services every command builds from the configuration.
type deps struct {
	cfg    config.Config
	logger *zap.Logger
	client *api.Client
	store  *store.Store
	kv     store.KV
	redis  *store.RedisKV

	closers []func()
}

// loadConfig reads --config and applies the --db and --backend overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Store.Path = p
	}
	if u, _ := cmd.Flags().GetString("backend"); u != "" {
		cfg.Backend.URL = u
	}
	return cfg, cfg.Validate()
}

// resolveDBPath returns the configured database path, falling back to
// KMATCHER_DB and then the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.Store.Path != "" {
		return cfg.Store.Path, store.EnsureDir(cfg.Store.Path)
	}
	return store.DefaultDBPath()
}

// setup opens the store, the answer KV and the backend client. console adds
// log output on stderr for the plain commands.
func setup(ctx context.Context, cmd *cobra.Command, console bool) (*deps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	d := &deps{cfg: cfg}

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}

	logCfg := cfg.Log
	if logCfg.File == "" {
		logCfg.File = logging.DefaultFile(dbPath)
	}
	logCfg.Console = logCfg.Console || console
	logger, closeLog, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}
	d.logger = logger
	d.closers = append(d.closers, closeLog)

	st, err := store.Open(dbPath)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	d.store = st
	d.closers = append(d.closers, func() { _ = st.Close() })

	switch cfg.Store.Backend {
	case config.StoreRedis:
		rkv, err := store.OpenRedis(ctx, store.RedisOptions{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
			Prefix:   cfg.Store.Redis.Prefix,
		})
		if err != nil {
			d.Close()
			return nil, err
		}
		d.kv, d.redis = rkv, rkv
		d.closers = append(d.closers, func() { _ = rkv.Close() })
	case config.StoreMemory:
		d.kv = store.NewMemoryKV()
	default:
		d.kv = st.KV()
	}

	d.client = api.New(cfg.Backend.URL,
		api.WithLogger(logger.Named("api")),
		api.WithRateLimit(cfg.Backend.RateLimit, cfg.Backend.Burst),
		api.WithValidation(cfg.Backend.Validate),
	)

	logger.Info("kmatcher starting",
		zap.String("version", version),
		zap.String("backend", cfg.Backend.URL),
		zap.String("store", cfg.Store.Backend),
		zap.String("db", dbPath),
	)
	return d, nil
}

// Close releases everything in reverse order.
func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}
