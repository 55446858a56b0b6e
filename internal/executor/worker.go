package executor

import (
	"context"

	"github.com/szhaofelicia/Basketball-GAN/internal/ctxlog"
	"github.com/szhaofelicia/Basketball-GAN/internal/dag"
)

// worker is the core processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, readyChan chan *dag.Node, cancel context.CancelFunc, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for n := range readyChan {
		workerLogger := logger.With("workerID", workerID, "nodeID", n.ID)

		if ctx.Err() != nil {
			if n.MarkSkipped(ctx.Err()) {
				// Dependents of a drained node are never enqueued, so they
				// must be skipped here too or wg.Wait() never returns.
				e.skipDependents(ctx, n)
				e.wg.Done()
			}
			continue
		}

		workerLogger.Debug("Worker picked up node for execution.")
		n.SetState(dag.Running)

		var err error
		switch n.Type {
		case dag.ResourceNode:
			err = e.runResourceNode(ctx, n)
		case dag.LaunchNode:
			err = e.runLaunchNode(ctx, n)
		}

		if err != nil {
			workerLogger.Error("Node execution failed.", "error", err)
			n.SetState(dag.Failed)
			n.Error = err
			cancel()
			e.skipDependents(ctx, n)
			e.wg.Done()
			continue
		}

		workerLogger.Debug("Node execution succeeded.")
		n.SetState(dag.Done)

		// Unlock dependents whose last dependency just finished.
		for _, dependent := range n.Dependents {
			if dependent.DecrementDepCount() == 0 {
				workerLogger.Debug("Unlocking dependent node.", "dependentID", dependent.ID)
				readyChan <- dependent
			}
		}

		// A finished launch releases its resource dependencies; a resource
		// with no remaining launch dependents can be destroyed early.
		if n.Type == dag.LaunchNode {
			for _, dep := range n.Deps {
				if dep.Type == dag.ResourceNode && dep.DecrementDescendantCount() == 0 {
					workerLogger.Debug("Scheduling early destruction for resource.", "resourceID", dep.ID)
					go e.destroyResource(ctx, dep)
				}
			}
		}

		e.wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}
