package executor

import (
	"context"
	"fmt"
	"reflect"

	"github.com/szhaofelicia/Basketball-GAN/internal/ctxlog"
	"github.com/szhaofelicia/Basketball-GAN/internal/dag"
)

// runLaunchNode executes a single launch node's on_run handler.
func (e *Executor) runLaunchNode(ctx context.Context, node *dag.Node) error {
	logger := ctxlog.FromContext(ctx).With("launch", node.ID)
	logger.Info("▶️ Starting launch")

	launcherDef, ok := e.registry.DefinitionRegistry[node.LaunchConfig.LauncherType]
	if !ok {
		return fmt.Errorf("unknown launcher type '%s'", node.LaunchConfig.LauncherType)
	}
	if launcherDef.Lifecycle == nil {
		return fmt.Errorf("launcher '%s' has no lifecycle", node.LaunchConfig.LauncherType)
	}
	handlerName := launcherDef.Lifecycle.OnRun
	handler, ok := e.registry.LauncherHandlers[handlerName]
	if !ok {
		return fmt.Errorf("handler '%s' not registered", handlerName)
	}

	evalCtx := e.buildEvalContext(ctx, node)

	var inputStruct any
	if handler.NewInput != nil {
		inputStruct = handler.NewInput()
	}
	if inputStruct != nil {
		err := e.converter.DecodeBody(ctx, inputStruct, node.LaunchConfig.Arguments, launcherDef.Inputs, evalCtx)
		if err != nil {
			return fmt.Errorf("failed to decode arguments for %s: %w", node.ID, err)
		}
	}

	depsStruct, err := e.buildDepsStruct(ctx, node, handler)
	if err != nil {
		return err
	}

	logger.Debug("Calling launch handler.", "handler", handlerName)
	handlerFunc := reflect.ValueOf(handler.Fn)
	callArgs := []reflect.Value{reflect.ValueOf(ctx), reflect.ValueOf(depsStruct)}
	if inputStruct == nil {
		callArgs = append(callArgs, reflect.Zero(handlerFunc.Type().In(2)))
	} else {
		callArgs = append(callArgs, reflect.ValueOf(inputStruct))
	}

	results := handlerFunc.Call(callArgs)
	nativeOutput, errResult := results[0].Interface(), results[1].Interface()
	if errResult != nil {
		return errResult.(error)
	}

	if !isNilOutput(results[0]) {
		ctyOutput, err := e.converter.ToCtyValue(nativeOutput)
		if err != nil {
			return fmt.Errorf("failed to convert handler output for %s: %w", node.ID, err)
		}
		node.Output = ctyOutput
	}

	logger.Info("✅ Finished launch")
	return nil
}
