package hcl

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/szhaofelicia/Basketball-GAN/internal/config"
	"github.com/szhaofelicia/Basketball-GAN/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// TagName is the struct tag that binds Go input fields to manifest input
// names. Embedded anonymous structs are flattened, so a module can reuse a
// domain record (such as the trainer configuration) as part of its input.
const TagName = "tctl"

// Converter is the HCL-specific implementation of config.Converter.
type Converter struct{}

// NewConverter creates a new HCL converter.
func NewConverter() *Converter {
	return &Converter{}
}

// DecodeBody evaluates HCL argument expressions, applies manifest defaults,
// and populates the provided Go struct using reflection.
func (c *Converter) DecodeBody(
	ctx context.Context,
	inputStruct any,
	args map[string]hcl.Expression,
	defs map[string]*config.InputDefinition,
	evalCtx *hcl.EvalContext,
) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting HCL body decoding.")

	structVal := reflect.ValueOf(inputStruct)
	if structVal.Kind() != reflect.Ptr || structVal.IsNil() {
		return fmt.Errorf("inputStruct must be a non-nil pointer")
	}

	for _, field := range flattenFields(structVal.Elem()) {
		lookupName := field.tagName
		if lookupName == "" || lookupName == "-" {
			continue
		}

		inputDef, defExists := defs[lookupName]
		if !defExists {
			continue
		}

		targetPtr := field.value.Addr().Interface()
		argExpr, argProvided := args[lookupName]

		if argProvided {
			val, diags := argExpr.Value(evalCtx)
			if diags.HasErrors() {
				return diags
			}
			if err := c.decode(ctx, val, targetPtr); err != nil {
				return fmt.Errorf("failed to decode argument '%s': %w", lookupName, err)
			}
			continue
		}

		if inputDef.Default == nil && !inputDef.Optional {
			return fmt.Errorf("missing required argument %q", lookupName)
		}
		if inputDef.Default != nil {
			if err := c.decode(ctx, *inputDef.Default, targetPtr); err != nil {
				return fmt.Errorf("failed to apply default for '%s': %w", lookupName, err)
			}
		}
	}

	logger.Debug("Finished HCL body decoding successfully.")
	return nil
}

// taggedField pairs a settable struct field with its resolved tag name.
type taggedField struct {
	tagName string
	value   reflect.Value
}

// flattenFields walks a struct value, descending into embedded anonymous
// structs, and returns every settable field carrying the binding tag.
func flattenFields(structVal reflect.Value) []taggedField {
	var out []taggedField
	structType := structVal.Type()

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldVal := structVal.Field(i)

		if field.Anonymous && fieldVal.Kind() == reflect.Struct {
			out = append(out, flattenFields(fieldVal)...)
			continue
		}
		if !fieldVal.CanSet() {
			continue
		}

		tag := field.Tag.Get(TagName)
		name := strings.Split(tag, ",")[0]
		out = append(out, taggedField{tagName: name, value: fieldVal})
	}
	return out
}

// decode converts and assigns a cty.Value into a Go pointer target.
func (c *Converter) decode(ctx context.Context, val cty.Value, goVal any) error {
	logger := ctxlog.FromContext(ctx)
	valPtr := reflect.ValueOf(goVal)
	if valPtr.Kind() != reflect.Ptr {
		return fmt.Errorf("target for decoding must be a pointer, got %T", goVal)
	}

	impliedType, err := gocty.ImpliedType(valPtr.Elem().Interface())
	if err != nil {
		logger.Debug("Could not imply cty.Type from Go type, attempting direct decoding.",
			"go_type", valPtr.Elem().Type().String(), "error", err)
		return gocty.FromCtyValue(val, goVal)
	}

	convertedVal, err := convert.Convert(val, impliedType)
	if err != nil {
		return fmt.Errorf("cannot convert %s to required type %s: %w",
			val.Type().FriendlyName(), impliedType.FriendlyName(), err)
	}

	return gocty.FromCtyValue(convertedVal, goVal)
}

// ToCtyValue converts a native Go value into its corresponding cty.Value.
func (c *Converter) ToCtyValue(v any) (cty.Value, error) {
	if v == nil {
		return cty.NilVal, nil
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type: %w", err)
	}
	return gocty.ToCtyValue(v, ty)
}
