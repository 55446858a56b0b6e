// Package print renders resolved key/value maps to stdout, sorted and
// aligned. Its main use is inspecting assembled trainer commands and
// outputs in dry runs.
package print

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/szhaofelicia/Basketball-GAN/internal/ctxlog"
	"github.com/szhaofelicia/Basketball-GAN/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the print launcher.
type Input struct {
	Title  string            `tctl:"title"`
	Values map[string]string `tctl:"values"`
}

// Deps is an empty struct because this launcher does not use any resources.
type Deps struct{}

// render formats the values as sorted key/value lines with the keys padded
// to a common width, preceded by the title when one is set.
func render(input *Input) string {
	var b strings.Builder
	if input.Title != "" {
		fmt.Fprintf(&b, "%s\n", input.Title)
	}
	if len(input.Values) == 0 {
		b.WriteString("  (empty)\n")
		return b.String()
	}

	keys := make([]string, 0, len(input.Values))
	width := 0
	for k := range input.Values {
		keys = append(keys, k)
		if len(k) > width {
			width = len(k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(&b, "  %-*s = %q\n", width, k, input.Values[k])
	}
	return b.String()
}

// OnRunPrint is the handler for the 'print' launcher's on_run event.
func OnRunPrint(ctx context.Context, deps *Deps, input *Input) (any, error) {
	ctxlog.FromContext(ctx).Info("Printing values.", "count", len(input.Values))
	fmt.Print(render(input))
	return nil, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterLauncher("OnRunPrint", &registry.RegisteredLauncher{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		NewDeps:   func() any { return new(Deps) },
		Fn:        OnRunPrint,
	})
}
