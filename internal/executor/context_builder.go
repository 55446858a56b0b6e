package executor

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/szhaofelicia/Basketball-GAN/internal/ctxlog"
	"github.com/szhaofelicia/Basketball-GAN/internal/dag"
	"github.com/zclconf/go-cty/cty"
)

// buildEvalContext creates the HCL evaluation context for a node, exposing
// the outputs of every completed launch as launch.<type>.<name>.output.
func (e *Executor) buildEvalContext(ctx context.Context, node *dag.Node) *hcl.EvalContext {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Building HCL evaluation context.", "node", node.ID)

	launchOutputsByType := make(map[string]map[string]cty.Value)

	for _, graphNode := range e.Graph.Nodes {
		if graphNode.Type != dag.LaunchNode || graphNode.GetState() != dag.Done || graphNode.Output == nil {
			continue
		}
		outVal, ok := graphNode.Output.(cty.Value)
		if !ok || outVal.IsNull() {
			continue
		}

		launcherType := graphNode.LaunchConfig.LauncherType
		instanceName := graphNode.Name
		if _, ok := launchOutputsByType[launcherType]; !ok {
			launchOutputsByType[launcherType] = make(map[string]cty.Value)
		}
		launchOutputsByType[launcherType][instanceName] = cty.ObjectVal(map[string]cty.Value{
			"output": outVal,
		})
	}

	finalOutputs := make(map[string]cty.Value)
	for launcherType, instances := range launchOutputsByType {
		finalOutputs[launcherType] = cty.ObjectVal(instances)
	}

	vars := map[string]cty.Value{
		"launch": cty.ObjectVal(finalOutputs),
	}
	return &hcl.EvalContext{Variables: vars}
}
