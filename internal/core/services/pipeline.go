package services

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/enunezf/routinesync/internal/core/domain"
	"github.com/enunezf/routinesync/internal/core/ports"
)

// Pipeline reconciles the routines on disk with the ones deployed in the
// database and applies the difference as one transaction.
type Pipeline struct {
	database ports.ObjectSource
	files    ports.ObjectSource
	executor ports.ScriptExecutor
	builder  *ScriptBuilder
	out      io.Writer
	logger   *zap.Logger
}

// PipelineOption customizes a Pipeline
type PipelineOption func(*Pipeline)

// WithOutput sets where the change report is written
func WithOutput(w io.Writer) PipelineOption {
	return func(p *Pipeline) { p.out = w }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = logger }
}

// NewPipeline creates a pipeline. executor may be nil when only Plan is used.
func NewPipeline(database, files ports.ObjectSource, executor ports.ScriptExecutor, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		database: database,
		files:    files,
		executor: executor,
		builder:  NewScriptBuilder(),
		out:      io.Discard,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan loads both object sets, reports the changes and builds the migration
// script without executing it. The script is empty when nothing changed.
func (p *Pipeline) Plan(ctx context.Context) (*domain.ChangeSet, error) {
	current, err := p.database.ListObjects(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load database objects")
	}
	p.logger.Debug("Loaded database objects", zap.Int("count", len(current)))

	target, err := p.files.ListObjects(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load file objects")
	}
	p.logger.Debug("Loaded file objects", zap.Int("count", len(target)))

	changed, err := Reconcile(current, target)
	if err != nil {
		return nil, errors.Wrap(err, "failed to reconcile objects")
	}
	domain.SortByName(changed)

	set := &domain.ChangeSet{Changes: make([]domain.Change, 0, len(changed))}
	for _, obj := range changed {
		change := domain.Change{Object: obj}
		if !obj.IsNew {
			change.CurrentText = current[obj.Name].Text
		}
		set.Changes = append(set.Changes, change)
	}

	if err := set.WriteReport(p.out); err != nil {
		return nil, errors.Wrap(err, "failed to write change report")
	}
	if !set.HasChanges() {
		p.logger.Info("Database is up to date")
		return set, nil
	}

	summary := set.Summary()
	p.logger.Info("Found changes",
		zap.Int("new", summary.New),
		zap.Int("changed", summary.Changed))

	set.Script, err = p.builder.Build(changed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build migration script")
	}
	return set, nil
}

// Run plans and, if there is anything to apply, executes the script once.
func (p *Pipeline) Run(ctx context.Context) (*domain.ChangeSet, error) {
	set, err := p.Plan(ctx)
	if err != nil {
		return nil, err
	}
	if !set.HasChanges() {
		return set, nil
	}

	if p.executor == nil {
		return set, errors.New("no script executor configured")
	}

	p.logger.Debug("Executing migration script", zap.Int("bytes", len(set.Script)))
	if err := p.executor.ExecuteScript(ctx, set.Script); err != nil {
		return set, errors.Wrap(err, "failed to apply migration script")
	}
	p.logger.Info("Migration applied", zap.Int("objects", len(set.Changes)))

	return set, nil
}
