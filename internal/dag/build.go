package dag

import (
	"context"
	"fmt"

	"github.com/szhaofelicia/Basketball-GAN/internal/config"
	"github.com/szhaofelicia/Basketball-GAN/internal/ctxlog"
	"github.com/szhaofelicia/Basketball-GAN/internal/registry"
)

// Build constructs a complete, validated dependency graph from a config model.
func Build(ctx context.Context, model *config.Model, r *registry.Registry) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.")
	graph := &Graph{Nodes: make(map[string]*Node)}

	// First pass: create all nodes for launches and resources.
	createNodes(ctx, model.Plan, graph)
	logger.Debug("Build: Node creation complete.", "node_count", len(graph.Nodes))

	// Second pass: link dependencies.
	if err := linkNodes(ctx, graph, r); err != nil {
		return nil, err
	}
	logger.Debug("Build: Node linking complete.")

	// Third pass: initialize counters.
	for _, node := range graph.Nodes {
		node.SetInitialCounters()
	}

	if err := graph.detectCycles(); err != nil {
		return nil, fmt.Errorf("error validating dependency graph: %w", err)
	}
	logger.Debug("Build: Graph construction successful.")
	return graph, nil
}

// createNodes performs the first pass of graph creation.
func createNodes(ctx context.Context, plan *config.Plan, graph *Graph) {
	logger := ctxlog.FromContext(ctx)
	for _, l := range plan.Launches {
		id := fmt.Sprintf("launch.%s.%s", l.LauncherType, l.Name)
		if _, exists := graph.Nodes[id]; exists {
			logger.Warn("Duplicate launch definition found, it will be overwritten.", "id", id)
		}
		graph.Nodes[id] = &Node{
			ID:           id,
			Name:         l.Name,
			Type:         LaunchNode,
			LaunchConfig: l,
			Deps:         make(map[string]*Node),
			Dependents:   make(map[string]*Node),
		}
	}
	for _, r := range plan.Resources {
		id := fmt.Sprintf("resource.%s.%s", r.AssetType, r.Name)
		if _, exists := graph.Nodes[id]; exists {
			logger.Warn("Duplicate resource definition found, it will be overwritten.", "id", id)
		}
		graph.Nodes[id] = &Node{
			ID:             id,
			Name:           r.Name,
			Type:           ResourceNode,
			ResourceConfig: r,
			Deps:           make(map[string]*Node),
			Dependents:     make(map[string]*Node),
		}
	}
}

// detectCycles checks for circular dependencies using a depth-first search
// with the classic three-color marking.
func (g *Graph) detectCycles() error {
	visiting := make(map[string]bool)
	visited := make(map[string]bool)

	var visit func(n *Node) error
	visit = func(n *Node) error {
		if visited[n.ID] {
			return nil
		}
		if visiting[n.ID] {
			return fmt.Errorf("cycle detected involving node '%s'", n.ID)
		}
		visiting[n.ID] = true
		for _, dependent := range n.Dependents {
			if err := visit(dependent); err != nil {
				return err
			}
		}
		delete(visiting, n.ID)
		visited[n.ID] = true
		return nil
	}

	for _, n := range g.Nodes {
		if !visited[n.ID] {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}
