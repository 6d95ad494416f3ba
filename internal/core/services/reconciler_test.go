package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enunezf/routinesync/internal/core/domain"
)

// objectRange builds name<i> triggers for i in [from, to) with text
// object_text<i><suffix>.
func objectRange(from, to int, isNew bool, suffix string) domain.ObjectSet {
	set := make(domain.ObjectSet)
	for i := from; i < to; i++ {
		obj := domain.NewSqlObject(
			fmt.Sprintf("name%d", i),
			domain.KindTrigger,
			fmt.Sprintf("object_text%d%s", i, suffix))
		obj.IsNew = isNew
		set.Add(obj)
	}
	return set
}

func sorted(set domain.ObjectSet) []domain.SqlObject {
	objects := make([]domain.SqlObject, 0, len(set))
	for _, name := range set.Names() {
		objects = append(objects, set[name])
	}
	return objects
}

func merge(sets ...domain.ObjectSet) domain.ObjectSet {
	out := make(domain.ObjectSet)
	for _, s := range sets {
		for _, o := range s {
			out.Add(o)
		}
	}
	return out
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name    string
		current domain.ObjectSet
		target  domain.ObjectSet
		want    domain.ObjectSet
	}{
		{
			name:    "all new",
			current: domain.ObjectSet{},
			target:  objectRange(0, 4, false, ""),
			want:    objectRange(0, 4, true, ""),
		},
		{
			name:    "half new",
			current: objectRange(0, 2, false, ""),
			target:  objectRange(0, 4, false, ""),
			want:    objectRange(2, 4, true, ""),
		},
		{
			name:    "all edited",
			current: objectRange(0, 4, false, "1"),
			target:  objectRange(0, 4, false, ""),
			want:    objectRange(0, 4, false, ""),
		},
		{
			name:    "all edited with suffix in target",
			current: objectRange(0, 4, false, ""),
			target:  objectRange(0, 4, false, "1"),
			want:    objectRange(0, 4, false, "1"),
		},
		{
			name:    "half edited half new",
			current: objectRange(0, 2, false, ""),
			target:  objectRange(0, 4, false, "1"),
			want:    merge(objectRange(0, 2, false, "1"), objectRange(2, 4, true, "1")),
		},
		{
			name:    "nothing changed",
			current: objectRange(0, 3, false, ""),
			target:  objectRange(0, 3, false, ""),
			want:    domain.ObjectSet{},
		},
		{
			name:    "orphans in database are ignored",
			current: objectRange(0, 6, false, ""),
			target:  objectRange(0, 2, false, ""),
			want:    domain.ObjectSet{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reconcile(tt.current, tt.target)
			require.NoError(t, err)

			domain.SortByName(got)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, sorted(tt.want), got)
		})
	}
}

func TestReconcile_WhitespaceOnlyChangeIsIgnored(t *testing.T) {
	current := domain.ObjectSet{}
	current.Add(domain.NewSqlObject("p", domain.KindStoredProcedure, "CREATE PROCEDURE p\r\nAS\r\n\r\nSELECT 1\r\n"))
	target := domain.ObjectSet{}
	target.Add(domain.NewSqlObject("p", domain.KindStoredProcedure, "CREATE PROCEDURE p   \nAS\nSELECT 1"))

	got, err := Reconcile(current, target)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReconcile_DoesNotMutateInput(t *testing.T) {
	target := objectRange(0, 2, false, "")
	_, err := Reconcile(domain.ObjectSet{}, target)
	require.NoError(t, err)

	for _, o := range target {
		assert.False(t, o.IsNew)
	}
}

func TestReconcile_KindMismatch(t *testing.T) {
	tests := []struct {
		name    string
		current domain.SqlObject
		target  domain.SqlObject
	}{
		{
			name:    "different text",
			current: domain.NewSqlObject("x", domain.KindTrigger, "CREATE TRIGGER x AS SELECT 1"),
			target:  domain.NewSqlObject("x", domain.KindStoredProcedure, "CREATE PROCEDURE x AS SELECT 2"),
		},
		{
			name:    "equal text",
			current: domain.NewSqlObject("x", domain.KindTrigger, "same"),
			target:  domain.NewSqlObject("x", domain.KindStoredProcedure, "same"),
		},
		{
			name:    "changed table valued function",
			current: domain.NewSqlObject("x", domain.KindTableValuedFunction, "CREATE FUNCTION x() RETURNS @t TABLE (a int) AS BEGIN RETURN END"),
			target:  domain.NewSqlObject("x", domain.KindScalarFunction, "CREATE FUNCTION x() RETURNS @t TABLE (b int) AS BEGIN RETURN END"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := domain.ObjectSet{}
			current.Add(tt.current)
			target := domain.ObjectSet{}
			target.Add(tt.target)

			got, err := Reconcile(current, target)
			require.Error(t, err)
			assert.Nil(t, got)

			var mismatch *domain.KindMismatchError
			require.True(t, errors.As(err, &mismatch))
			assert.Equal(t, "x", mismatch.Name)
			assert.Equal(t, tt.target.Kind, mismatch.TargetKind)
			assert.Equal(t, tt.current.Kind, mismatch.CurrentKind)
		})
	}
}

func TestReconcile_UnchangedTableValuedFunction(t *testing.T) {
	text := "CREATE FUNCTION dbo.f() RETURNS TABLE AS RETURN SELECT 1 AS x"
	current := domain.ObjectSet{}
	current.Add(domain.NewSqlObject("f", domain.KindInlineTableValuedFunction, text))
	target := domain.ObjectSet{}
	target.Add(domain.NewSqlObject("f", domain.KindScalarFunction, text))

	got, err := Reconcile(current, target)
	require.NoError(t, err)
	assert.Empty(t, got)
}
