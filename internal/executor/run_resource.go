package executor

import (
	"context"
	"fmt"
	"reflect"

	"github.com/szhaofelicia/Basketball-GAN/internal/ctxlog"
	"github.com/szhaofelicia/Basketball-GAN/internal/dag"
)

// runResourceNode creates a stateful resource and registers its destruction.
func (e *Executor) runResourceNode(ctx context.Context, node *dag.Node) error {
	logger := ctxlog.FromContext(ctx).With("resource", node.ID)
	logger.Info("▶️ Creating resource")

	assetType := node.ResourceConfig.AssetType
	assetDef, ok := e.registry.AssetDefinitionRegistry[assetType]
	if !ok {
		return fmt.Errorf("unknown asset type '%s'", assetType)
	}
	if assetDef.Lifecycle == nil {
		return fmt.Errorf("asset '%s' has no lifecycle", assetType)
	}

	createHandler, ok := e.registry.AssetHandlers[assetDef.Lifecycle.Create]
	if !ok || createHandler.CreateFn == nil {
		return fmt.Errorf("create handler '%s' not registered", assetDef.Lifecycle.Create)
	}
	destroyHandler, ok := e.registry.AssetHandlers[assetDef.Lifecycle.Destroy]
	if !ok || destroyHandler.DestroyFn == nil {
		return fmt.Errorf("destroy handler '%s' not registered", assetDef.Lifecycle.Destroy)
	}

	var inputStruct any
	if createHandler.NewInput != nil {
		inputStruct = createHandler.NewInput()
	}
	if inputStruct != nil {
		evalCtx := e.buildEvalContext(ctx, node)
		if err := e.converter.DecodeBody(ctx, inputStruct, node.ResourceConfig.Arguments, assetDef.Inputs, evalCtx); err != nil {
			return fmt.Errorf("failed to decode arguments for %s: %w", node.ID, err)
		}
	}

	logger.Debug("Calling resource create handler.", "handler", assetDef.Lifecycle.Create)
	createFunc := reflect.ValueOf(createHandler.CreateFn)
	callArgs := []reflect.Value{reflect.ValueOf(ctx)}
	if inputStruct == nil {
		callArgs = append(callArgs, reflect.Zero(createFunc.Type().In(1)))
	} else {
		callArgs = append(callArgs, reflect.ValueOf(inputStruct))
	}
	results := createFunc.Call(callArgs)
	instance, errResult := results[0].Interface(), results[1].Interface()
	if errResult != nil {
		return errResult.(error)
	}

	e.resourceInstances.Store(node.ID, instance)
	e.pushCleanup(func() {
		e.destroyResource(ctx, node)
	})

	logger.Info("✅ Resource created")
	return nil
}

// destroyResource runs a resource's destroy handler exactly once.
func (e *Executor) destroyResource(ctx context.Context, node *dag.Node) {
	node.RunDestroy(func() {
		logger := ctxlog.FromContext(ctx).With("resource", node.ID)

		instance, ok := e.resourceInstances.Load(node.ID)
		if !ok {
			return
		}

		assetDef, ok := e.registry.AssetDefinitionRegistry[node.ResourceConfig.AssetType]
		if !ok || assetDef.Lifecycle == nil {
			return
		}
		destroyHandler, ok := e.registry.AssetHandlers[assetDef.Lifecycle.Destroy]
		if !ok || destroyHandler.DestroyFn == nil {
			return
		}

		logger.Info("🔥 Destroying resource")
		results := reflect.ValueOf(destroyHandler.DestroyFn).Call([]reflect.Value{reflect.ValueOf(instance)})
		if len(results) > 0 {
			if err, _ := results[0].Interface().(error); err != nil {
				logger.Error("Resource destroy handler failed.", "error", err)
			}
		}
		e.resourceInstances.Delete(node.ID)
	})
}
