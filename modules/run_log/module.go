// Package run_log provides a SQLite-backed run history as a plan resource.
// The trainer launcher records every spawn in it, so past runs survive
// across invocations of the tool.
package run_log

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"

	"github.com/szhaofelicia/Basketball-GAN/internal/ctxlog"
	"github.com/szhaofelicia/Basketball-GAN/internal/registry"
	"github.com/szhaofelicia/Basketball-GAN/internal/runlog"

	_ "modernc.org/sqlite"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for creating a run_log resource.
type Input struct {
	Path string `tctl:"path"`
}

// CreateRunLog opens (or creates) the SQLite database and prepares the
// run history schema.
func CreateRunLog(ctx context.Context, input *Input) (*runlog.Store, error) {
	logger := ctxlog.FromContext(ctx)

	db, err := sql.Open("sqlite", input.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log database at '%s': %w", input.Path, err)
	}

	store, err := runlog.NewStore(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize run log schema: %w", err)
	}

	logger.Debug("Run log opened.", "path", input.Path)
	return store, nil
}

// DestroyRunLog closes the underlying database handle.
func DestroyRunLog(store *runlog.Store) error {
	return store.Close()
}

// Register registers the asset handlers and interface with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAssetHandler("CreateRunLog", &registry.RegisteredAssetHandler{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		CreateFn:  CreateRunLog,
	})
	r.RegisterAssetHandler("DestroyRunLog", &registry.RegisteredAssetHandler{
		DestroyFn: DestroyRunLog,
	})
	r.RegisterAssetInterface("run_log", reflect.TypeOf((*runlog.Store)(nil)))
}
