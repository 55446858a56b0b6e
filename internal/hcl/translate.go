package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/szhaofelicia/Basketball-GAN/internal/config"
	"github.com/szhaofelicia/Basketball-GAN/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// translateLaunch converts the HCL-specific launch schema into the agnostic model.
func (l *Loader) translateLaunch(s *schema.Launch) *config.Launch {
	return &config.Launch{
		LauncherType: s.LauncherType,
		Name:         s.Name,
		Arguments:    extractBodyAttributes(s.Arguments),
		Uses:         extractUsesAttributes(s.Uses),
		DependsOn:    s.DependsOn,
	}
}

// translateResource converts the HCL-specific resource schema into the agnostic model.
func (l *Loader) translateResource(s *schema.Resource) *config.Resource {
	return &config.Resource{
		AssetType: s.AssetType,
		Name:      s.Name,
		Arguments: extractBodyAttributes(s.Arguments),
		DependsOn: s.DependsOn,
	}
}

// translateLauncherDefinition converts a launcher manifest into the agnostic model.
func (l *Loader) translateLauncherDefinition(ctx context.Context, s *schema.LauncherDefinition) (*config.LauncherDefinition, error) {
	def := &config.LauncherDefinition{
		Type:        s.Type,
		Description: s.Description,
		Inputs:      make(map[string]*config.InputDefinition),
		Outputs:     make(map[string]*config.OutputDefinition),
		Uses:        make(map[string]*config.UsesDefinition),
	}
	if s.Lifecycle != nil {
		def.Lifecycle = &config.Lifecycle{OnRun: s.Lifecycle.OnRun}
	}
	for _, in := range s.Inputs {
		translated, err := translateInput(in)
		if err != nil {
			return nil, err
		}
		def.Inputs[in.Name] = translated
	}
	for _, out := range s.Outputs {
		outType, err := translateType(out.Type)
		if err != nil {
			return nil, fmt.Errorf("output %q: %w", out.Name, err)
		}
		def.Outputs[out.Name] = &config.OutputDefinition{
			Name:        out.Name,
			Type:        outType,
			Description: out.Description,
		}
	}
	for _, use := range s.Uses {
		def.Uses[use.LocalName] = &config.UsesDefinition{
			LocalName: use.LocalName,
			AssetType: use.AssetType,
		}
	}
	return def, nil
}

// translateAssetDefinition converts an asset manifest into the agnostic model.
func (l *Loader) translateAssetDefinition(ctx context.Context, s *schema.AssetDefinition) (*config.AssetDefinition, error) {
	def := &config.AssetDefinition{
		Type:        s.Type,
		Description: s.Description,
		Inputs:      make(map[string]*config.InputDefinition),
		Outputs:     make(map[string]*config.OutputDefinition),
	}
	if s.Lifecycle != nil {
		def.Lifecycle = &config.AssetLifecycle{Create: s.Lifecycle.Create, Destroy: s.Lifecycle.Destroy}
	}
	for _, in := range s.Inputs {
		translated, err := translateInput(in)
		if err != nil {
			return nil, err
		}
		def.Inputs[in.Name] = translated
	}
	for _, out := range s.Outputs {
		outType, err := translateType(out.Type)
		if err != nil {
			return nil, fmt.Errorf("output %q: %w", out.Name, err)
		}
		def.Outputs[out.Name] = &config.OutputDefinition{
			Name:        out.Name,
			Type:        outType,
			Description: out.Description,
		}
	}
	return def, nil
}

// translateInput evaluates an input's type expression and default value.
func translateInput(in *schema.InputDefinition) (*config.InputDefinition, error) {
	inType, err := translateType(in.Type)
	if err != nil {
		return nil, fmt.Errorf("input %q: %w", in.Name, err)
	}

	var defaultVal *cty.Value
	var optional bool
	if in.Default != nil {
		val, diags := in.Default.Value(nil)
		// A default is only usable if it evaluates without error and is
		// not null; manifests cannot reference plan values in defaults.
		if !diags.HasErrors() && !val.IsNull() {
			defaultVal = &val
			optional = true
		}
	}

	return &config.InputDefinition{
		Name:        in.Name,
		Type:        inType,
		Description: in.Description,
		Default:     defaultVal,
		Optional:    optional,
	}, nil
}

// translateType resolves a manifest type expression (string, number, bool,
// list(string), any, ...) into a concrete cty.Type.
func translateType(expr hcl.Expression) (cty.Type, error) {
	if expr == nil {
		return cty.DynamicPseudoType, nil
	}
	ty, diags := typeexpr.Type(expr)
	if diags.HasErrors() {
		return cty.NilType, fmt.Errorf("invalid type expression: %w", diags)
	}
	return ty, nil
}

// extractBodyAttributes flattens an arguments block into named expressions.
func extractBodyAttributes(block *schema.ArgsBlock) map[string]hcl.Expression {
	if block == nil || block.Body == nil {
		return nil
	}
	return attributesToExpressions(block.Body)
}

// extractUsesAttributes flattens a uses block into named expressions.
func extractUsesAttributes(block *schema.UsesBlock) map[string]hcl.Expression {
	if block == nil || block.Body == nil {
		return nil
	}
	return attributesToExpressions(block.Body)
}

func attributesToExpressions(body hcl.Body) map[string]hcl.Expression {
	attrs, _ := body.JustAttributes()
	if len(attrs) == 0 {
		return nil
	}
	exprMap := make(map[string]hcl.Expression, len(attrs))
	for name, attr := range attrs {
		exprMap[name] = attr.Expr
	}
	return exprMap
}
