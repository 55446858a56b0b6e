// Package schema declares the HCL shapes of launch plans and module
// manifests. These structs are decode targets for gohcl only; the rest of
// the engine works with the format-agnostic config model.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// --- Launch plan structures ---

// ArgsBlock holds the raw body of an `arguments` block within a launch or
// resource. Attributes are extracted lazily so expressions keep their
// evaluation context.
type ArgsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// UsesBlock holds the raw body of a `uses` block within a launch.
type UsesBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// Launch represents a `launch` block from a user's plan file. It is a
// runnable instance of a defined launcher.
type Launch struct {
	LauncherType string     `hcl:"launcher_type,label"`
	Name         string     `hcl:"instance_name,label"`
	Arguments    *ArgsBlock `hcl:"arguments,block"`
	Uses         *UsesBlock `hcl:"uses,block"`
	DependsOn    []string   `hcl:"depends_on,optional"`
}

// Resource represents a `resource` block from a user's plan file. It is a
// managed, stateful instance of a defined asset.
type Resource struct {
	AssetType string     `hcl:"asset_type,label"`
	Name      string     `hcl:"instance_name,label"`
	Arguments *ArgsBlock `hcl:"arguments,block"`
	DependsOn []string   `hcl:"depends_on,optional"`
}

// --- Module manifest structures ---

// Lifecycle maps a launcher's lifecycle event to a registered Go handler.
type Lifecycle struct {
	OnRun string `hcl:"on_run,optional"`
}

// AssetLifecycle maps an asset's create and destroy events to registered
// Go handlers.
type AssetLifecycle struct {
	Create  string `hcl:"create"`
	Destroy string `hcl:"destroy"`
}

// InputDefinition defines a single input argument for a launcher or asset.
type InputDefinition struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	Description string         `hcl:"description,optional"`
	Default     hcl.Expression `hcl:"default,optional"`
}

// OutputDefinition defines a single output value produced by a launcher.
type OutputDefinition struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	Description string         `hcl:"description,optional"`
}

// UsesDefinition defines an asset dependency required by a launcher.
type UsesDefinition struct {
	LocalName string `hcl:"local_name,label"`
	AssetType string `hcl:"asset_type"`
}

// LauncherDefinition represents the HCL manifest for a runnable `launcher` type.
type LauncherDefinition struct {
	Type        string              `hcl:"type,label"`
	Description string              `hcl:"description,optional"`
	Lifecycle   *Lifecycle          `hcl:"lifecycle,block"`
	Inputs      []*InputDefinition  `hcl:"input,block"`
	Outputs     []*OutputDefinition `hcl:"output,block"`
	Uses        []*UsesDefinition   `hcl:"uses,block"`
}

// AssetDefinition represents the HCL manifest for a stateful `asset` type.
type AssetDefinition struct {
	Type        string              `hcl:"type,label"`
	Description string              `hcl:"description,optional"`
	Lifecycle   *AssetLifecycle     `hcl:"lifecycle,block"`
	Inputs      []*InputDefinition  `hcl:"input,block"`
	Outputs     []*OutputDefinition `hcl:"output,block"`
}

// File represents the top-level structure of any configuration file: plan
// files carry launch and resource blocks, manifests carry launcher and
// asset blocks. Mixing them in one file is legal.
type File struct {
	Launches  []*Launch             `hcl:"launch,block"`
	Resources []*Resource           `hcl:"resource,block"`
	Launchers []*LauncherDefinition `hcl:"launcher,block"`
	Assets    []*AssetDefinition    `hcl:"asset,block"`
}
