// Package env_vars exposes the launcher's process environment to plans,
// so machine-local values such as dataset roots can be templated instead
// of hard-coded.
package env_vars

import (
	"context"
	"os"
	"reflect"
	"strings"

	"github.com/szhaofelicia/Basketball-GAN/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the env_vars launcher.
type Input struct {
	// Prefix narrows the snapshot to variables whose name starts with it.
	// Empty means everything.
	Prefix string `tctl:"prefix"`
}

// Deps is an empty struct because this launcher does not use any resources.
type Deps struct{}

// Output defines the data structure returned by the launcher.
type Output struct {
	All map[string]string `cty:"all"`
}

// OnRunEnvVars is the handler for the 'env_vars' launcher.
func OnRunEnvVars(ctx context.Context, deps *Deps, input *Input) (*Output, error) {
	envMap := make(map[string]string)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if input.Prefix != "" && !strings.HasPrefix(name, input.Prefix) {
			continue
		}
		envMap[name] = value
	}
	return &Output{All: envMap}, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterLauncher("OnRunEnvVars", &registry.RegisteredLauncher{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		NewDeps:   func() any { return new(Deps) },
		Fn:        OnRunEnvVars,
	})
}
