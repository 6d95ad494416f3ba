package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/enunezf/routinesync/internal/core/domain"
)

type fakeSource struct {
	objects domain.ObjectSet
	err     error
	calls   int
}

func (s *fakeSource) ListObjects(ctx context.Context) (domain.ObjectSet, error) {
	s.calls++
	return s.objects, s.err
}

type recordingExecutor struct {
	scripts []string
	err     error
}

func (e *recordingExecutor) ExecuteScript(ctx context.Context, script string) error {
	e.scripts = append(e.scripts, script)
	return e.err
}

func setOf(objects ...domain.SqlObject) domain.ObjectSet {
	set := make(domain.ObjectSet)
	for _, o := range objects {
		set.Add(o)
	}
	return set
}

func TestPipeline_Run(t *testing.T) {
	database := &fakeSource{objects: setOf(
		domain.NewSqlObject("usp_b", domain.KindStoredProcedure, "CREATE PROCEDURE usp_b AS SELECT 1"),
		domain.NewSqlObject("tr_same", domain.KindTrigger, "CREATE TRIGGER tr_same ON t AFTER INSERT AS SELECT 1"),
		domain.NewSqlObject("usp_orphan", domain.KindStoredProcedure, "CREATE PROCEDURE usp_orphan AS SELECT 1"),
	)}
	files := &fakeSource{objects: setOf(
		domain.NewSqlObject("usp_b", domain.KindStoredProcedure, "CREATE PROCEDURE usp_b AS SELECT 2"),
		domain.NewSqlObject("tr_same", domain.KindTrigger, "CREATE TRIGGER tr_same ON t AFTER INSERT AS SELECT 1   \n\n"),
		domain.NewSqlObject("f_a", domain.KindScalarFunction, "CREATE FUNCTION f_a() RETURNS int AS BEGIN RETURN 1 END"),
	)}
	executor := &recordingExecutor{}
	var out bytes.Buffer

	p := NewPipeline(database, files, executor, WithOutput(&out), WithLogger(zap.NewNop()))
	set, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, set.Changes, 2)
	assert.Equal(t, "f_a", set.Changes[0].Object.Name)
	assert.True(t, set.Changes[0].Object.IsNew)
	assert.Empty(t, set.Changes[0].CurrentText)
	assert.Equal(t, "usp_b", set.Changes[1].Object.Name)
	assert.False(t, set.Changes[1].Object.IsNew)
	assert.Equal(t, "CREATE PROCEDURE usp_b AS SELECT 1", set.Changes[1].CurrentText)

	assert.Equal(t,
		"f_a"+strings.Repeat(".", 77)+"new\n"+
			"usp_b"+strings.Repeat(".", 75)+"changed\n",
		out.String())

	require.Len(t, executor.scripts, 1)
	assert.Equal(t, set.Script, executor.scripts[0])
	assert.Less(t, strings.Index(set.Script, "'f_a'"), strings.Index(set.Script, "'usp_b'"))
	assert.NotContains(t, set.Script, "usp_orphan")
	assert.NotContains(t, set.Script, "tr_same")
}

func TestPipeline_NoChanges(t *testing.T) {
	objects := setOf(domain.NewSqlObject("p", domain.KindStoredProcedure, "CREATE PROCEDURE p AS SELECT 1"))
	executor := &recordingExecutor{}
	var out bytes.Buffer

	set, err := NewPipeline(&fakeSource{objects: objects}, &fakeSource{objects: objects}, executor, WithOutput(&out)).
		Run(context.Background())
	require.NoError(t, err)

	assert.False(t, set.HasChanges())
	assert.Empty(t, set.Script)
	assert.Empty(t, executor.scripts)
	assert.Equal(t, "No changes found\n", out.String())
}

func TestPipeline_PlanDoesNotExecute(t *testing.T) {
	files := &fakeSource{objects: setOf(domain.NewSqlObject("p", domain.KindStoredProcedure, "CREATE PROCEDURE p AS SELECT 1"))}
	executor := &recordingExecutor{}

	set, err := NewPipeline(&fakeSource{objects: domain.ObjectSet{}}, files, executor).Plan(context.Background())
	require.NoError(t, err)

	assert.True(t, set.HasChanges())
	assert.NotEmpty(t, set.Script)
	assert.Empty(t, executor.scripts)
}

func TestPipeline_Errors(t *testing.T) {
	boom := errors.New("boom")
	procedure := domain.NewSqlObject("x", domain.KindStoredProcedure, "CREATE PROCEDURE x AS SELECT 1")
	trigger := domain.NewSqlObject("x", domain.KindTrigger, "CREATE TRIGGER x ON t AFTER INSERT AS SELECT 2")

	t.Run("database source", func(t *testing.T) {
		files := &fakeSource{}
		_, err := NewPipeline(&fakeSource{err: boom}, files, &recordingExecutor{}).Run(context.Background())
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "failed to load database objects")
		assert.Zero(t, files.calls)
	})

	t.Run("unknown kind in files", func(t *testing.T) {
		executor := &recordingExecutor{}
		files := &fakeSource{err: &domain.UnknownObjectKindError{Name: "broken"}}
		_, err := NewPipeline(&fakeSource{objects: domain.ObjectSet{}}, files, executor).Run(context.Background())

		var unknown *domain.UnknownObjectKindError
		require.True(t, errors.As(err, &unknown))
		assert.Equal(t, "broken", unknown.Name)
		assert.Empty(t, executor.scripts)
	})

	t.Run("kind mismatch", func(t *testing.T) {
		executor := &recordingExecutor{}
		_, err := NewPipeline(&fakeSource{objects: setOf(trigger)}, &fakeSource{objects: setOf(procedure)}, executor).
			Run(context.Background())

		var mismatch *domain.KindMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.Empty(t, executor.scripts)
	})

	t.Run("execution failure is returned once", func(t *testing.T) {
		executor := &recordingExecutor{err: boom}
		set, err := NewPipeline(&fakeSource{objects: domain.ObjectSet{}}, &fakeSource{objects: setOf(procedure)}, executor).
			Run(context.Background())

		require.ErrorIs(t, err, boom)
		require.NotNil(t, set)
		assert.Len(t, executor.scripts, 1)
	})

	t.Run("missing executor", func(t *testing.T) {
		_, err := NewPipeline(&fakeSource{objects: domain.ObjectSet{}}, &fakeSource{objects: setOf(procedure)}, nil).
			Run(context.Background())
		require.Error(t, err)
	})
}
