// Package backend assembles the persistence and messaging stack from
// configuration.
package backend

import (
	"fmt"

	"saldo/internal/amqp"
	"saldo/internal/config"
	"saldo/internal/ledger"
	"saldo/internal/log"
	"saldo/internal/storage"
)

// Type selects the persisted document's home.
type Type string

const (
	JSONBackend   Type = "json"
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

func (t Type) String() string { return string(t) }

// IsValid reports whether the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case JSONBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result bundles the store with the optional event publisher and the
// cleanup for both.
type Result struct {
	Store     storage.Store
	Publisher ledger.EventPublisher
	Cleanup   CleanupFunc
}

type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// Create builds the store selected by cfg.DataBackend. The AMQP publisher is
// optional: a missing broker downgrades to local-only operation with a
// warning rather than failing startup.
func (f *Factory) Create(cfg *config.Config) (*Result, error) {
	backendType := Type(cfg.DataBackend)
	if !backendType.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	store, err := f.createStore(backendType, cfg)
	if err != nil {
		return nil, err
	}

	var publisher ledger.EventPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events",
				log.FieldError, err)
		} else {
			publisher = amqpClient
			f.logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	cleanup := func() error {
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				f.logger.Warn("Failed to close AMQP client", log.FieldError, err)
			}
		}
		return store.Close()
	}

	f.logger.Info("Initialized backend",
		log.FieldBackend, backendType.String(),
		"events_enabled", publisher != nil)

	return &Result{Store: store, Publisher: publisher, Cleanup: cleanup}, nil
}

func (f *Factory) createStore(t Type, cfg *config.Config) (storage.Store, error) {
	switch t {
	case JSONBackend:
		store, err := storage.NewJSONFileStore(cfg.LedgerPath)
		if err != nil {
			return nil, fmt.Errorf("initialize json store: %w", err)
		}
		f.logger.Info("Using JSON file store", log.FieldPath, cfg.LedgerPath)
		return store, nil

	case SQLiteBackend:
		store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		f.logger.Info("Using SQLite store", log.FieldPath, cfg.SQLiteDBPath)
		return store, nil

	case MemoryBackend:
		f.logger.Info("Using in-memory store, data is not persisted")
		return storage.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", t)
	}
}
