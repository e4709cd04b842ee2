package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/abhisek/quizbook/internal/config"
	"github.com/abhisek/quizbook/internal/store"
)

// Stderr is the log path that sends output to standard error.
const Stderr = "stderr"

// New builds the application logger. Output goes to cfg.Log.Path and never
// to stdout, which belongs to the TUI.
func New(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	var zc zap.Config
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	path := cfg.Log.Path
	if path == "" {
		path = Stderr
	}
	if path != Stderr {
		if err := store.EnsureDir(path); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	zc.OutputPaths = []string{path}
	zc.ErrorOutputPaths = []string{Stderr}

	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l.With(zap.Int("pid", os.Getpid())), nil
}
