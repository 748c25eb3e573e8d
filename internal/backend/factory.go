package backend

import (
	"context"
	"errors"
	"fmt"

	"homebudget/internal/amqp"
	"homebudget/internal/budget"
	"homebudget/internal/log"
	"homebudget/internal/services"
	"homebudget/internal/storage"
	"homebudget/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory. A nil logger logs to stderr.
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

func (f *DefaultFactory) Create(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *Result
		err error
	)
	switch config.Type {
	case SQLite:
		res, err = f.createSQLite(ctx, config)
	case Memory:
		res = f.createMemory()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	f.attachEvents(ctx, config, res)
	return res, nil
}

func (f *DefaultFactory) createSQLite(ctx context.Context, config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(ctx, config.DBPath, config.NewDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open budget file: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", repo.Path(), "new_db", config.NewDB)
	return &Result{
		Service:  services.NewBudgetService(budget.New(repo.Categories(), repo.Expenses()), nil),
		Location: repo.Path(),
		Cleanup:  repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemory() *Result {
	store := memory.New(true)
	f.logger.Info("Initialized memory backend")
	return &Result{
		Service:  services.NewBudgetService(budget.New(store.Categories(), store.Expenses()), nil),
		Location: "memory",
		Cleanup:  store.Close,
	}
}

// attachEvents connects to the broker when configured. A broker that cannot
// be reached leaves the budget usable without events.
func (f *DefaultFactory) attachEvents(ctx context.Context, config Config, res *Result) {
	if config.AMQPURL == "" {
		return
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change events", log.FieldError, err)
		return
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)

	res.Service.SetPublisher(client)
	res.Events = client
	storeCleanup := res.Cleanup
	res.Cleanup = func() error {
		return errors.Join(client.Close(), storeCleanup())
	}
}
