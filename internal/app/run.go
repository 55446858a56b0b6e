package app

import (
	"context"
	"fmt"

	"github.com/szhaofelicia/Basketball-GAN/internal/ctxlog"
	"github.com/szhaofelicia/Basketball-GAN/internal/dag"
	"github.com/szhaofelicia/Basketball-GAN/internal/executor"
)

// Run executes the loaded plan.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.appConfig.HealthcheckPort > 0 {
		a.startHealthcheckServer(a.appConfig.HealthcheckPort)
	}

	a.logger.Debug("Building dependency graph from config model...")
	graph, err := dag.Build(ctx, a.config, a.registry)
	if err != nil {
		return fmt.Errorf("failed to build dependency graph: %w", err)
	}
	a.logger.Debug("Dependency graph built.", "node_count", len(graph.Nodes))

	if len(graph.Nodes) == 0 {
		a.logger.Warn("No nodes found in graph, execution not required.")
		return nil
	}

	a.logger.Info("🚀 Starting concurrent execution...")
	exec := executor.New(graph, a.appConfig.WorkerCount, a.registry, a.converter)
	if err := exec.Run(ctx); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("🏁 Execution finished.")

	a.logger.Debug("App.Run method finished.")
	return nil
}
