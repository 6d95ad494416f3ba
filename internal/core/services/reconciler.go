// Package services contains the business logic services.
package services

import (
	"github.com/enunezf/routinesync/internal/core/domain"
)

// Reconcile returns the target objects that are missing from current or
// whose normalized text differs. Missing objects come back with IsNew set.
// Objects only present in current are ignored. The result order is
// unspecified, see domain.SortByName.
func Reconcile(current, target domain.ObjectSet) ([]domain.SqlObject, error) {
	var changed []domain.SqlObject

	for name, tgt := range target {
		cur, exists := current[name]
		if !exists {
			tgt.IsNew = true
			changed = append(changed, tgt)
			continue
		}

		if tgt.SameText(cur) {
			// Files only ever yield scalar functions, so an untouched
			// table-valued function must not count as a mismatch.
			if tgt.Kind != cur.Kind && !(tgt.Kind.IsFunction() && cur.Kind.IsFunction()) {
				return nil, kindMismatch(name, tgt, cur)
			}
			continue
		}

		if tgt.Kind != cur.Kind {
			return nil, kindMismatch(name, tgt, cur)
		}
		changed = append(changed, tgt)
	}

	return changed, nil
}

func kindMismatch(name string, target, current domain.SqlObject) error {
	return &domain.KindMismatchError{
		Name:        name,
		TargetKind:  target.Kind,
		CurrentKind: current.Kind,
	}
}
