package sqlserver

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/enunezf/routinesync/internal/core/domain"
	"github.com/enunezf/routinesync/internal/core/ports"
)

var _ ports.ObjectSource = (*ObjectSource)(nil)

const listObjectsQuery = `
	SELECT DISTINCT
		o.name		AS [object_name],
		o.type_desc	AS [type_desc],
		m.definition	AS [object_text]
	FROM sys.sql_modules m
	INNER JOIN sys.objects o ON m.object_id = o.object_id
	WHERE o.type IN ('TR', 'P', 'IF', 'FN', 'TF')
		AND o.is_ms_shipped = 0
`

// ObjectSource lists the procedures, functions and triggers deployed in the
// connected database.
type ObjectSource struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewObjectSource creates a new object source
func NewObjectSource(db *sql.DB, logger *zap.Logger) *ObjectSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObjectSource{db: db, logger: logger}
}

// ListObjects implements ports.ObjectSource
func (s *ObjectSource) ListObjects(ctx context.Context) (domain.ObjectSet, error) {
	if s.db == nil {
		return nil, errNotConnected
	}

	rows, err := s.db.QueryContext(ctx, listObjectsQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query objects")
	}
	defer rows.Close()

	objects := make(domain.ObjectSet)
	for rows.Next() {
		var (
			name, typeDesc string
			definition     sql.NullString
		)
		if err := rows.Scan(&name, &typeDesc, &definition); err != nil {
			return nil, errors.Wrap(err, "failed to scan object")
		}

		kind, err := domain.ParseObjectKind(typeDesc)
		if err != nil {
			return nil, errors.Wrapf(err, "object %s", name)
		}
		if !definition.Valid {
			s.logger.Warn("Definition not available, possibly encrypted", zap.String("object", name))
		}

		objects.Add(domain.NewSqlObject(name, kind, definition.String))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read objects")
	}

	return objects, nil
}
