package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/taigrr/notebox/internal/config"
	"github.com/taigrr/notebox/internal/export"
	"github.com/taigrr/notebox/internal/kv"
	"github.com/taigrr/notebox/internal/logging"
	"github.com/taigrr/notebox/internal/session"
	"github.com/taigrr/notebox/internal/store"
	"github.com/taigrr/notebox/internal/watch"
)

// app wires the store, its storage and the logger for one process.
type app struct {
	config   *config.Config
	logger   *zap.Logger
	storage  kv.Storage
	store    *store.Store
	session  *session.Session
	exporter *export.Exporter

	closeLog func()
}

// openApp loads the configuration, opens storage and hydrates the store. A
// persisted document that cannot be read is logged and the store starts
// empty.
func openApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	location, err := cfg.StorageLocation()
	if err != nil {
		closeLog()
		return nil, err
	}
	storage, err := kv.Open(cfg.Storage.Backend, location)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	logger.Debug("opened storage",
		zap.String(logging.FieldBackend, cfg.Storage.Backend),
		zap.String(logging.FieldPath, location))

	a := newApp(cfg, logger, storage)
	a.closeLog = closeLog

	// Load failures are already logged by the store.
	_ = a.store.Load(ctx)
	return a, nil
}

// newApp builds the components over an opened storage.
func newApp(cfg *config.Config, logger *zap.Logger, storage kv.Storage) *app {
	st := store.New(storage, &store.Config{
		Key:        cfg.Storage.Key,
		DateLayout: cfg.Notes.DateLayout,
		Queue:      cfg.WriteQueueConfig(),
	}, logger.Named("store"))

	return &app{
		config:   cfg,
		logger:   logger,
		storage:  storage,
		store:    st,
		session:  session.New(st, logger.Named("session")),
		exporter: export.New(),
		closeLog: func() {},
	}
}

// Close flushes pending writes and releases storage.
func (a *app) Close(ctx context.Context) error {
	err := errors.Join(a.store.Close(ctx), a.storage.Close())
	a.closeLog()
	return err
}

// newWatcher returns a watcher reloading the store when its document file
// changes, or nil when watching is off.
func (a *app) newWatcher() (*watch.Watcher, error) {
	if !a.config.Storage.Watch {
		return nil, nil
	}
	fs, ok := a.storage.(*kv.File)
	if !ok {
		return nil, fmt.Errorf("storage watch requires the file backend")
	}
	path, err := fs.ResolvePath(a.config.Storage.Key)
	if err != nil {
		return nil, err
	}
	return watch.New(path, a.store.Load, watch.DefaultDebounce, a.logger.Named("watch"))
}
