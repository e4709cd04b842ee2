package cmd

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/quizbook/internal/app"
	"github.com/abhisek/quizbook/internal/bank"
	"github.com/abhisek/quizbook/internal/config"
	"github.com/abhisek/quizbook/internal/logger"
	"github.com/abhisek/quizbook/internal/store"
)

// runApp loads the bank, opens the progress store, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	b, err := bank.Load(cfg.BankPath)
	if err != nil {
		log.Error("load question bank", zap.String("path", cfg.BankPath), zap.Error(err))
		return err
	}

	repo, closeRepo, err := openProgressRepo(cmd.Context(), cfg)
	if err != nil {
		log.Error("open progress store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
		return err
	}
	defer closeRepo()

	log.Info("starting",
		zap.String("version", version),
		zap.String("config", cfg.File),
		zap.String("bank", cfg.BankPath),
		zap.Int("questions", b.Len()),
		zap.String("store", cfg.Store.Driver),
	)

	return app.Run(app.Options{
		Bank:   b,
		Repo:   repo,
		Logger: log,
	})
}

// openProgressRepo builds the ProgressRepo selected by cfg.Store.Driver.
// The returned func releases the backend's resources.
func openProgressRepo(ctx context.Context, cfg *config.Config) (store.ProgressRepo, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store.Driver {
	case config.DriverSQLite:
		if err := store.EnsureDir(cfg.Store.DSN); err != nil {
			return nil, nil, fmt.Errorf("create database dir: %w", err)
		}
		st, err := store.Open(cfg.Store.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		return st.ProgressRepo(), st.Close, nil

	case config.DriverFile:
		fs, err := store.NewFileStore(cfg.Store.Dir)
		if err != nil {
			return nil, nil, err
		}
		return fs, noop, nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
		if ctx == nil {
			ctx = context.Background()
		}
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Store.RedisAddr, err)
		}
		return store.NewRedisStore(client), client.Close, nil

	case config.DriverMemory:
		return store.NewMemoryStore(), noop, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown store driver %q", config.ErrInvalidConfig, cfg.Store.Driver)
}
