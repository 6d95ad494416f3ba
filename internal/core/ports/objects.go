package ports

import (
	"context"

	"github.com/enunezf/routinesync/internal/core/domain"
)

// ObjectSource lists the routines of one side of a reconciliation
type ObjectSource interface {
	// ListObjects returns every object keyed by its lowercased name
	ListObjects(ctx context.Context) (domain.ObjectSet, error)
}
