// Package sqlserver provides the SQL Server database adapter implementation.
package sqlserver

import (
	"context"
	"database/sql"

	_ "github.com/microsoft/go-mssqldb" // SQL Server driver
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/enunezf/routinesync/internal/core/domain"
	"github.com/enunezf/routinesync/internal/core/ports"
	"github.com/enunezf/routinesync/internal/security"
)

var _ ports.DatabasePort = (*Adapter)(nil)

var errNotConnected = errors.New("not connected")

// Adapter implements the DatabasePort interface for SQL Server
type Adapter struct {
	config   *domain.ConnectionConfig
	db       *sql.DB
	approver security.Approver
	logger   *zap.Logger
}

// NewAdapter creates a new SQL Server adapter
func NewAdapter(config *domain.ConnectionConfig, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		config:   config,
		approver: security.NewInteractiveApprover(),
		logger:   logger,
	}
}

// Connect establishes a connection to SQL Server
func (a *Adapter) Connect(ctx context.Context) error {
	if err := a.config.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	db, err := sql.Open("sqlserver", a.config.ConnectionString())
	if err != nil {
		return errors.Wrap(err, "failed to open connection")
	}

	// One run uses one connection at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return errors.Wrap(err, "failed to ping database")
	}

	a.logger.Debug("Connected to SQL Server", zap.String("target", a.config.SafeString()))
	a.db = db
	return nil
}

// Ping verifies the connection is still alive
func (a *Adapter) Ping(ctx context.Context) error {
	if a.db == nil {
		return errNotConnected
	}
	return a.db.PingContext(ctx)
}

// Close closes the database connection
func (a *Adapter) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// GetServerInfo retrieves information about the connected SQL Server
func (a *Adapter) GetServerInfo(ctx context.Context) (*domain.ServerInfo, error) {
	if a.db == nil {
		return nil, errNotConnected
	}

	info := &domain.ServerInfo{}

	query := `
		SELECT
			@@VERSION as Version,
			CAST(SERVERPROPERTY('Edition') AS nvarchar(128)) as Edition,
			CAST(SERVERPROPERTY('ProductVersion') AS nvarchar(128)) as ProductVersion,
			@@SERVERNAME as ServerName,
			DB_NAME() as DatabaseName
	`

	row := a.db.QueryRowContext(ctx, query)
	err := row.Scan(&info.Version, &info.Edition, &info.ProductName, &info.ServerName, &info.Database)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get server info")
	}

	return info, nil
}

// ExecuteScript runs the migration script as one batch once the approver
// accepts it.
func (a *Adapter) ExecuteScript(ctx context.Context, script string) error {
	if a.db == nil {
		return errNotConnected
	}

	req := security.ApprovalRequest{
		Operation: "Apply routine migration script",
		SQL:       script,
		Level:     security.Modification,
	}
	if a.config != nil {
		req.ImpactSummary = a.config.SafeString()
	}

	approved, err := a.approver.RequestApproval(req)
	if err != nil {
		return errors.Wrap(err, "approval error")
	}
	if !approved {
		return security.ErrNotApproved
	}

	if _, err := a.db.ExecContext(ctx, script); err != nil {
		return errors.Wrap(err, "execution failed")
	}
	return nil
}

// SetApprover sets the approver to use for operations
func (a *Adapter) SetApprover(approver security.Approver) {
	a.approver = approver
}

// Objects returns an ObjectSource reading from this adapter's connection
func (a *Adapter) Objects() *ObjectSource {
	return NewObjectSource(a.db, a.logger)
}
