// Package executor runs a validated launch graph on a pool of workers,
// propagating failures to dependents and destroying resources as soon as
// nothing left in the graph needs them.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/szhaofelicia/Basketball-GAN/internal/config"
	"github.com/szhaofelicia/Basketball-GAN/internal/ctxlog"
	"github.com/szhaofelicia/Basketball-GAN/internal/dag"
	"github.com/szhaofelicia/Basketball-GAN/internal/registry"
)

// Executor orchestrates the end-to-end execution of a launch graph.
type Executor struct {
	Graph      *dag.Graph
	numWorkers int
	registry   *registry.Registry
	converter  config.Converter

	wg sync.WaitGroup

	// resourceInstances maps resource node IDs to their live instances.
	resourceInstances sync.Map

	// cleanupMu guards the stack of resource destroy callbacks that runs
	// after the graph finishes, covering resources the early-destroy path
	// never reached.
	cleanupMu    sync.Mutex
	cleanupStack []func()
}

// New creates an executor for the given graph.
func New(graph *dag.Graph, workers int, r *registry.Registry, conv config.Converter) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{
		Graph:      graph,
		numWorkers: workers,
		registry:   r,
		converter:  conv,
	}
}

// Run executes the entire graph concurrently and returns an error if any
// node fails. It respects cancellation from the provided context.
func (e *Executor) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	defer e.executeCleanupStack(ctx)

	readyChan := make(chan *dag.Node, len(e.Graph.Nodes))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	rootNodeCount := 0
	for _, node := range e.Graph.Nodes {
		if len(node.Deps) == 0 {
			readyChan <- node
			rootNodeCount++
		}
	}
	logger.Debug("Found all root nodes.", "count", rootNodeCount)

	e.wg.Add(len(e.Graph.Nodes))

	logger.Debug("Starting worker pool.", "workers", e.numWorkers)
	for i := 0; i < e.numWorkers; i++ {
		go e.worker(runCtx, readyChan, cancel, i)
	}

	e.wg.Wait()
	close(readyChan)
	logger.Debug("All nodes completed.")

	var failedNodes []string
	var rootCauseError error
	for _, node := range e.Graph.Nodes {
		if node.GetState() != dag.Failed {
			continue
		}
		logger.Error("Node failed execution.", "nodeID", node.ID, "error", node.Error)
		// A "skipped" error is a symptom, not a cause.
		if node.Error != nil && !strings.HasPrefix(node.Error.Error(), "skipped") && !errors.Is(node.Error, context.Canceled) {
			failedNodes = append(failedNodes, node.ID)
			if rootCauseError == nil {
				rootCauseError = node.Error
			}
		}
	}

	if rootCauseError != nil {
		return fmt.Errorf("execution failed for %s: %w", strings.Join(failedNodes, ", "), rootCauseError)
	}
	return nil
}

// skipDependents recursively marks all downstream nodes as failed.
func (e *Executor) skipDependents(ctx context.Context, node *dag.Node) {
	logger := ctxlog.FromContext(ctx)
	for _, dependent := range node.Dependents {
		if dependent.MarkSkipped(fmt.Errorf("skipped due to upstream failure of '%s'", node.ID)) {
			logger.Warn("Skipping dependent node due to upstream failure.", "nodeID", dependent.ID, "dependency", node.ID)
			e.wg.Done()
			e.skipDependents(ctx, dependent)
		}
	}
}

// pushCleanup registers a destroy callback for the end-of-run sweep.
func (e *Executor) pushCleanup(fn func()) {
	e.cleanupMu.Lock()
	defer e.cleanupMu.Unlock()
	e.cleanupStack = append(e.cleanupStack, fn)
}

// executeCleanupStack destroys any remaining resources in reverse creation
// order. Callbacks are guarded by each node's destroyOnce, so resources
// already destroyed by the early path are not destroyed twice.
func (e *Executor) executeCleanupStack(ctx context.Context) {
	e.cleanupMu.Lock()
	stack := e.cleanupStack
	e.cleanupStack = nil
	e.cleanupMu.Unlock()

	for i := len(stack) - 1; i >= 0; i-- {
		stack[i]()
	}
}
