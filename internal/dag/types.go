package dag

import (
	"sync"
	"sync/atomic"

	"github.com/szhaofelicia/Basketball-GAN/internal/config"
)

// Graph is the complete, validated execution plan as a collection of nodes
// and their dependency links.
type Graph struct {
	// Nodes provides ID-based lookup for every node in the graph.
	Nodes map[string]*Node
}

// NodeType distinguishes between different kinds of nodes in the graph.
type NodeType int

const (
	// LaunchNode represents a node that executes a launcher.
	LaunchNode NodeType = iota
	// ResourceNode represents a node that manages a stateful asset.
	ResourceNode
)

// State represents the execution state of a node in the graph.
type State int32

const (
	// Pending indicates the node is waiting for its dependencies.
	Pending State = iota
	// Running indicates the node is currently held by a worker.
	Running
	// Done indicates the node completed successfully.
	Done
	// Failed indicates the node failed or was skipped.
	Failed
)

// Node is a single vertex in the execution graph: one unit of work (a
// launch) or one stateful entity (a resource).
type Node struct {
	// ID is the unique identifier, e.g. "launch.trainer.teampos_v4".
	ID string
	// Name is the human-readable instance name from the plan.
	Name string
	// Type distinguishes launch nodes from resource nodes.
	Type NodeType

	// LaunchConfig holds the configuration for a launch node; nil for resources.
	LaunchConfig *config.Launch
	// ResourceConfig holds the configuration for a resource node; nil for launches.
	ResourceConfig *config.Resource

	// Deps holds the nodes this node depends on (predecessors).
	Deps map[string]*Node
	// Dependents holds the nodes that depend on this node (successors).
	Dependents map[string]*Node

	// Error stores any error that occurred during execution.
	Error error
	// Output stores the result of execution for downstream nodes.
	Output any

	// depCount counts unmet dependencies; a node is ready at zero.
	depCount atomic.Int32
	// descendantCount counts remaining launch dependents of a resource,
	// used to destroy resources as soon as nothing needs them.
	descendantCount atomic.Int32
	// state is the node's execution state, managed atomically.
	state atomic.Int32
	// destroyOnce ensures a resource's destroy handler runs exactly once.
	destroyOnce sync.Once
	// skipOnce ensures a node is marked skipped exactly once.
	skipOnce sync.Once
}

// SetInitialCounters primes the dependency and descendant counters after the
// graph has been fully linked.
func (n *Node) SetInitialCounters() {
	n.depCount.Store(int32(len(n.Deps)))

	if n.Type == ResourceNode {
		var launchDependents int32
		for _, dep := range n.Dependents {
			if dep.Type == LaunchNode {
				launchDependents++
			}
		}
		n.descendantCount.Store(launchDependents)
	}
}

// GetState returns the node's current execution state.
func (n *Node) GetState() State {
	return State(n.state.Load())
}

// SetState updates the node's execution state.
func (n *Node) SetState(s State) {
	n.state.Store(int32(s))
}

// DecrementDepCount atomically decrements the unmet dependency counter and
// returns the new value.
func (n *Node) DecrementDepCount() int32 {
	return n.depCount.Add(-1)
}

// DecrementDescendantCount atomically decrements the remaining launch
// dependent counter and returns the new value.
func (n *Node) DecrementDescendantCount() int32 {
	return n.descendantCount.Add(-1)
}

// MarkSkipped transitions the node to Failed with the given reason, at most
// once, and reports whether this call performed the transition.
func (n *Node) MarkSkipped(err error) bool {
	var marked bool
	n.skipOnce.Do(func() {
		n.SetState(Failed)
		n.Error = err
		marked = true
	})
	return marked
}

// RunDestroy invokes fn at most once over the node's lifetime.
func (n *Node) RunDestroy(fn func()) {
	n.destroyOnce.Do(fn)
}
