package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/szhaofelicia/Basketball-GAN/internal/config"
	"github.com/szhaofelicia/Basketball-GAN/internal/ctxlog"
	"github.com/szhaofelicia/Basketball-GAN/internal/fsutil"
	"github.com/szhaofelicia/Basketball-GAN/internal/schema"
)

// Loader reads .hcl plan files and module manifests and translates them
// into the format-agnostic config model.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a new HCL loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load implements config.Loader. Each path may be a single .hcl file or a
// directory that is searched recursively.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)

	model := &config.Model{
		Launchers: make(map[string]*config.LauncherDefinition),
		Assets:    make(map[string]*config.AssetDefinition),
		Plan:      &config.Plan{},
	}

	for _, root := range paths {
		files, err := fsutil.FindFilesByExtension(root, ".hcl")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to discover config files under %q: %w", root, err)
		}
		logger.Debug("Discovered config files.", "root", root, "count", len(files))

		for _, path := range files {
			if err := l.loadFile(ctx, path, model); err != nil {
				return nil, nil, err
			}
		}
	}

	logger.Debug("Configuration model assembled.",
		"launchers", len(model.Launchers),
		"assets", len(model.Assets),
		"launches", len(model.Plan.Launches),
		"resources", len(model.Plan.Resources),
	)
	return model, NewConverter(), nil
}

// loadFile parses a single file and merges its blocks into the model.
func (l *Loader) loadFile(ctx context.Context, path string, model *config.Model) error {
	logger := ctxlog.FromContext(ctx)

	hclFile, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse %s: %w", path, diags)
	}

	var file schema.File
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &file); diags.HasErrors() {
		return fmt.Errorf("failed to decode %s: %w", path, diags)
	}

	for _, def := range file.Launchers {
		if _, exists := model.Launchers[def.Type]; exists {
			logger.Warn("Duplicate launcher manifest found, it will be overwritten.", "type", def.Type, "file", path)
		}
		translated, err := l.translateLauncherDefinition(ctx, def)
		if err != nil {
			return fmt.Errorf("invalid launcher manifest %q in %s: %w", def.Type, path, err)
		}
		model.Launchers[def.Type] = translated
	}
	for _, def := range file.Assets {
		if _, exists := model.Assets[def.Type]; exists {
			logger.Warn("Duplicate asset manifest found, it will be overwritten.", "type", def.Type, "file", path)
		}
		translated, err := l.translateAssetDefinition(ctx, def)
		if err != nil {
			return fmt.Errorf("invalid asset manifest %q in %s: %w", def.Type, path, err)
		}
		model.Assets[def.Type] = translated
	}
	for _, launch := range file.Launches {
		model.Plan.Launches = append(model.Plan.Launches, l.translateLaunch(launch))
	}
	for _, res := range file.Resources {
		model.Plan.Resources = append(model.Plan.Resources, l.translateResource(res))
	}

	logger.Debug("Loaded config file.", "file", path,
		"launchers", len(file.Launchers), "assets", len(file.Assets),
		"launches", len(file.Launches), "resources", len(file.Resources))
	return nil
}
