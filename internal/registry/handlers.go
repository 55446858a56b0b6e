package registry

import (
	"fmt"
	"log/slog"
	"reflect"
)

// RegisteredLauncher holds the compiled Go parts of a launcher's lifecycle.
type RegisteredLauncher struct {
	// NewInput returns a pointer to a fresh input struct, or nil when the
	// launcher takes no arguments.
	NewInput func() any
	// InputType is the input struct type, used for manifest parity checks.
	InputType reflect.Type
	// NewDeps returns a pointer to a fresh dependency struct.
	NewDeps func() any
	// Fn is the on_run handler: func(ctx, *Deps, *Input) (output, error).
	Fn any
}

// RegisterLauncher registers a Go handler for a launcher's on_run event.
func (r *Registry) RegisterLauncher(name string, handler *RegisteredLauncher) {
	if _, exists := r.LauncherHandlers[name]; exists {
		panic(fmt.Sprintf("launcher handler with name '%s' already registered", name))
	}
	slog.Debug("Registering launcher handler.", "name", name)
	r.LauncherHandlers[name] = handler
}

// RegisteredAssetHandler holds Go functions for an asset's lifecycle.
type RegisteredAssetHandler struct {
	NewInput  func() any
	InputType reflect.Type
	// CreateFn is func(ctx, *Input) (instance, error).
	CreateFn any
	// DestroyFn is func(instance) error.
	DestroyFn any
}

// RegisterAssetHandler registers Go functions for an asset's lifecycle events.
func (r *Registry) RegisterAssetHandler(name string, handler *RegisteredAssetHandler) {
	if _, exists := r.AssetHandlers[name]; exists {
		panic(fmt.Sprintf("asset handler with name '%s' already registered", name))
	}
	slog.Debug("Registering asset handler.", "name", name)
	r.AssetHandlers[name] = handler
}

// RegisterAssetInterface registers the Go type contract for an asset type.
// Launcher dependency fields are checked against it during injection.
func (r *Registry) RegisterAssetInterface(assetType string, iface reflect.Type) {
	if _, exists := r.AssetInterfaceRegistry[assetType]; exists {
		panic(fmt.Sprintf("interface for asset type '%s' already registered", assetType))
	}
	slog.Debug("Registering asset interface.", "assetType", assetType, "interface", iface.String())
	r.AssetInterfaceRegistry[assetType] = iface
}
