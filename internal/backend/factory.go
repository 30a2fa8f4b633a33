package backend

import (
	"context"
	"fmt"
	"log/slog"

	"fincoach/internal/amqp"
	"fincoach/internal/storage"
	"fincoach/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	amqpClient := f.connectAMQP(config)

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil)

	return &Result{
		Store:   repo,
		AMQP:    amqpClient,
		Cleanup: cleanup(repo.Close, amqpClient),
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*Result, error) {
	store := memory.New()

	amqpClient := f.connectAMQP(config)

	f.logger.Info("Initialized memory backend", "amqp_enabled", amqpClient != nil)

	return &Result{
		Store:   store,
		AMQP:    amqpClient,
		Cleanup: cleanup(store.Close, amqpClient),
	}, nil
}

// connectAMQP initializes the AMQP client when a URL is configured.
// A broker that is down never blocks startup, uploads just skip the
// ingestion event.
func (f *DefaultFactory) connectAMQP(config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}

	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		return nil
	}

	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}

func cleanup(closeStore func() error, amqpClient *amqp.Client) CleanupFunc {
	return func() error {
		var firstErr error
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				firstErr = err
			}
		}
		if err := closeStore(); err != nil && firstErr == nil {
			firstErr = err
		}
		return firstErr
	}
}
