// Package backend opens the budget store named by the configuration and
// assembles the service every front end drives.
package backend

import (
	"context"

	"homebudget/internal/amqp"
	"homebudget/internal/services"
)

// CleanupFunc releases what a backend holds open.
type CleanupFunc func() error

// Result is an opened budget.
type Result struct {
	Service *services.BudgetService
	// Location describes where the budget lives, for log lines and messages.
	Location string
	// Events is nil unless change events are published.
	Events  *amqp.Client
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	Create(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type Type

	// sqlite
	DBPath string
	NewDB  bool

	// Change events, optional for every type.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Type selects where the budget is kept.
type Type string

const (
	SQLite Type = "sqlite"
	Memory Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case SQLite, Memory:
		return true
	default:
		return false
	}
}
