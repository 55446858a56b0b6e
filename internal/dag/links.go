package dag

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/szhaofelicia/Basketball-GAN/internal/ctxlog"
	"github.com/szhaofelicia/Basketball-GAN/internal/registry"
)

// linkNodes performs the second pass, establishing dependency links.
func linkNodes(ctx context.Context, graph *Graph, r *registry.Registry) error {
	for _, node := range graph.Nodes {
		var dependsOn []string
		var expressions []hcl.Expression

		if node.Type == LaunchNode {
			dependsOn = node.LaunchConfig.DependsOn
			for _, expr := range node.LaunchConfig.Arguments {
				expressions = append(expressions, expr)
			}
			for _, expr := range node.LaunchConfig.Uses {
				expressions = append(expressions, expr)
			}
		} else {
			dependsOn = node.ResourceConfig.DependsOn
			for _, expr := range node.ResourceConfig.Arguments {
				expressions = append(expressions, expr)
			}
		}

		if err := linkExplicitDeps(ctx, node, dependsOn, graph); err != nil {
			return err
		}
		for _, expr := range expressions {
			if err := linkImplicitDeps(ctx, node, expr, graph, r); err != nil {
				return err
			}
		}
	}
	return nil
}

// linkExplicitDeps resolves dependencies from a `depends_on` list. Entries
// name a launch or resource as "<type>.<instance_name>".
func linkExplicitDeps(ctx context.Context, node *Node, dependsOn []string, graph *Graph) error {
	logger := ctxlog.FromContext(ctx)
	for _, depAddr := range dependsOn {
		launchID := "launch." + depAddr
		resourceID := "resource." + depAddr

		var depNode *Node
		var found bool
		if depNode, found = graph.Nodes[launchID]; !found {
			if depNode, found = graph.Nodes[resourceID]; !found {
				return fmt.Errorf("node '%s' depends on non-existent identifier '%s'", node.ID, depAddr)
			}
		}

		if _, exists := node.Deps[depNode.ID]; !exists {
			logger.Debug("Linking explicit dependency.", "from", node.ID, "to", depNode.ID)
			node.Deps[depNode.ID] = depNode
			depNode.Dependents[node.ID] = node
		}
	}
	return nil
}

// linkImplicitDeps parses an expression for variable traversals such as
// launch.trainer.teampos.output.exit_code and creates dependency links.
func linkImplicitDeps(ctx context.Context, node *Node, expr hcl.Expression, graph *Graph, r *registry.Registry) error {
	logger := ctxlog.FromContext(ctx)
	for _, traversal := range expr.Variables() {
		if len(traversal) < 3 {
			continue
		}
		rootName := traversal.RootName()
		if rootName != "launch" && rootName != "resource" {
			continue
		}
		typeAttr, typeOk := traversal[1].(hcl.TraverseAttr)
		nameAttr, nameOk := traversal[2].(hcl.TraverseAttr)
		if !typeOk || !nameOk {
			continue
		}
		depID := fmt.Sprintf("%s.%s.%s", rootName, typeAttr.Name, nameAttr.Name)
		depNode, ok := graph.Nodes[depID]
		if !ok {
			// Could be a reference to something else, like a local value.
			continue
		}

		// If referencing an output, validate it exists in the manifest.
		if len(traversal) > 3 {
			if outputAttr, isOutput := traversal[3].(hcl.TraverseAttr); isOutput && outputAttr.Name == "output" {
				if err := validateOutputReference(traversal, depNode, r); err != nil {
					return err
				}
			}
		}

		if _, exists := node.Deps[depID]; !exists {
			logger.Debug("Linking implicit dependency.", "from", node.ID, "to", depID)
			node.Deps[depID] = depNode
			depNode.Dependents[node.ID] = node
		}
	}
	return nil
}

// validateOutputReference checks that a reference to a launch's output names
// an output declared in the launcher's manifest.
func validateOutputReference(traversal hcl.Traversal, depNode *Node, r *registry.Registry) error {
	if depNode.Type != LaunchNode || len(traversal) < 5 {
		return nil
	}

	outputNameAttr, ok := traversal[4].(hcl.TraverseAttr)
	if !ok {
		return nil
	}
	outputName := outputNameAttr.Name

	launcherDef, ok := r.DefinitionRegistry[depNode.LaunchConfig.LauncherType]
	if !ok {
		return fmt.Errorf("internal error: could not find definition for launcher type %s", depNode.LaunchConfig.LauncherType)
	}
	if _, ok := launcherDef.Outputs[outputName]; ok {
		return nil
	}
	return fmt.Errorf("reference to undeclared output %q on launch %q", outputName, depNode.ID)
}
