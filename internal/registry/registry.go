package registry

import (
	"reflect"

	"github.com/szhaofelicia/Basketball-GAN/internal/config"
)

// Module is the interface that all compiled-in modules implement to be
// registered with the engine.
type Module interface {
	Register(r *Registry)
}

// Registry holds all registered handlers, definitions, and asset interfaces
// for a single application instance.
type Registry struct {
	LauncherHandlers        map[string]*RegisteredLauncher
	AssetHandlers           map[string]*RegisteredAssetHandler
	DefinitionRegistry      map[string]*config.LauncherDefinition
	AssetDefinitionRegistry map[string]*config.AssetDefinition
	AssetInterfaceRegistry  map[string]reflect.Type
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		LauncherHandlers:        make(map[string]*RegisteredLauncher),
		AssetHandlers:           make(map[string]*RegisteredAssetHandler),
		DefinitionRegistry:      make(map[string]*config.LauncherDefinition),
		AssetDefinitionRegistry: make(map[string]*config.AssetDefinition),
		AssetInterfaceRegistry:  make(map[string]reflect.Type),
	}
}

// PopulateDefinitionsFromModel copies the loaded module definitions from the
// config model into the registry for access during execution.
func (r *Registry) PopulateDefinitionsFromModel(model *config.Model) {
	for key, val := range model.Launchers {
		r.DefinitionRegistry[key] = val
	}
	for key, val := range model.Assets {
		r.AssetDefinitionRegistry[key] = val
	}
}
