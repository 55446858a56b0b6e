package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/szhaofelicia/Basketball-GAN/internal/config"
	"github.com/szhaofelicia/Basketball-GAN/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// tagName must match the converter's binding tag.
const tagName = "tctl"

// ValidateRegistry performs a strict parity check between manifests and Go
// code: every manifest input must have a matching tagged Go field with a
// compatible type, and vice versa.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string

	for launcherType, def := range r.DefinitionRegistry {
		if def.Lifecycle == nil || def.Lifecycle.OnRun == "" {
			errs = append(errs, fmt.Sprintf("launcher '%s': manifest declares no on_run handler", launcherType))
			continue
		}
		handler, ok := r.LauncherHandlers[def.Lifecycle.OnRun]
		if !ok {
			errs = append(errs, fmt.Sprintf("launcher '%s': handler '%s' is not registered", launcherType, def.Lifecycle.OnRun))
			continue
		}
		errs = append(errs, validateInputs(ctx, "launcher", launcherType, handler.InputType, def.Inputs)...)
	}

	for assetType, def := range r.AssetDefinitionRegistry {
		if def.Lifecycle == nil {
			errs = append(errs, fmt.Sprintf("asset '%s': manifest declares no lifecycle", assetType))
			continue
		}
		create, ok := r.AssetHandlers[def.Lifecycle.Create]
		if !ok || create.CreateFn == nil {
			errs = append(errs, fmt.Sprintf("asset '%s': create handler '%s' is not registered", assetType, def.Lifecycle.Create))
			continue
		}
		destroy, ok := r.AssetHandlers[def.Lifecycle.Destroy]
		if !ok || destroy.DestroyFn == nil {
			errs = append(errs, fmt.Sprintf("asset '%s': destroy handler '%s' is not registered", assetType, def.Lifecycle.Destroy))
		}
		errs = append(errs, validateInputs(ctx, "asset", assetType, create.InputType, def.Inputs)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// validateInputs checks presence and type parity for one definition.
func validateInputs(ctx context.Context, kind, typeName string, inputType reflect.Type, defs map[string]*config.InputDefinition) []string {
	logger := ctxlog.FromContext(ctx)
	var errs []string

	if inputType == nil {
		if len(defs) > 0 {
			errs = append(errs, fmt.Sprintf("%s '%s': manifest declares inputs, but Go handler has no input struct", kind, typeName))
		}
		return errs
	}

	goInputs := make(map[string]reflect.StructField)
	collectTaggedFields(inputType, goInputs)

	for name := range goInputs {
		if _, ok := defs[name]; !ok {
			errs = append(errs, fmt.Sprintf("%s '%s': Go struct has field for input '%s' which is not declared in manifest", kind, typeName, name))
		}
	}
	for name := range defs {
		if _, ok := goInputs[name]; !ok {
			errs = append(errs, fmt.Sprintf("%s '%s': manifest declares input '%s' which is not found in Go struct", kind, typeName, name))
		}
	}

	for name, inputDef := range defs {
		goField, ok := goInputs[name]
		if !ok {
			continue // already reported above
		}
		if inputDef.Type.Equals(cty.DynamicPseudoType) {
			logger.Warn("Manifest input uses 'type = any', which disables static type checking.",
				"kind", kind, "type", typeName, "input", name)
			continue
		}
		goFieldType, err := gocty.ImpliedType(reflect.Zero(goField.Type).Interface())
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s '%s', input '%s': could not imply cty type from Go field type %s: %v",
				kind, typeName, name, goField.Type, err))
			continue
		}
		if !inputDef.Type.Equals(goFieldType) {
			errs = append(errs, fmt.Sprintf("%s '%s', input '%s': type mismatch, manifest requires '%s' but Go field '%s' provides '%s'",
				kind, typeName, name, inputDef.Type.FriendlyName(), goField.Name, goFieldType.FriendlyName()))
		}
	}
	return errs
}

// collectTaggedFields gathers tagged exported fields, flattening embedded
// anonymous structs the same way the converter does.
func collectTaggedFields(structType reflect.Type, out map[string]reflect.StructField) {
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			collectTaggedFields(field.Type, out)
			continue
		}
		if !field.IsExported() {
			continue
		}
		tag := strings.Split(field.Tag.Get(tagName), ",")[0]
		if tag != "" && tag != "-" {
			out[tag] = field
		}
	}
}
