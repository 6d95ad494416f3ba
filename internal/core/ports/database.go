// Package ports defines the interfaces (ports) for the hexagonal architecture.
package ports

import (
	"context"

	"github.com/enunezf/routinesync/internal/core/domain"
	"github.com/enunezf/routinesync/internal/security"
)

// DatabasePort defines the interface for database operations
type DatabasePort interface {
	ScriptExecutor

	// Connect establishes a connection to the database
	Connect(ctx context.Context) error

	// Ping verifies the connection is still alive
	Ping(ctx context.Context) error

	// Close closes the database connection
	Close() error

	// GetServerInfo retrieves information about the connected server
	GetServerInfo(ctx context.Context) (*domain.ServerInfo, error)

	// SetApprover sets the approver to use for operations
	SetApprover(approver security.Approver)
}

// ScriptExecutor runs one opaque SQL script
type ScriptExecutor interface {
	// ExecuteScript executes script as a single batch. Errors are returned
	// as reported by the server.
	ExecuteScript(ctx context.Context, script string) error
}
