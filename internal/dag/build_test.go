package dag

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/szhaofelicia/Basketball-GAN/internal/config"
	"github.com/szhaofelicia/Basketball-GAN/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// expr parses an HCL expression used as a launch argument.
func expr(t *testing.T, src string) hcl.Expression {
	t.Helper()
	e, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())
	return e
}

// newModel wraps launches and resources in a config model.
func newModel(launches []*config.Launch, resources []*config.Resource) *config.Model {
	return &config.Model{
		Launchers: make(map[string]*config.LauncherDefinition),
		Assets:    make(map[string]*config.AssetDefinition),
		Plan:      &config.Plan{Launches: launches, Resources: resources},
	}
}

func TestBuild_ExplicitDependency(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	model := newModel([]*config.Launch{
		{LauncherType: "trainer", Name: "main"},
		{LauncherType: "print", Name: "report", DependsOn: []string{"trainer.main"}},
	}, nil)

	// --- Act ---
	graph, err := Build(context.Background(), model, registry.New())

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, graph.Nodes, 2)

	trainer := graph.Nodes["launch.trainer.main"]
	print := graph.Nodes["launch.print.report"]
	require.NotNil(t, trainer)
	require.NotNil(t, print)

	assert.Contains(t, print.Deps, trainer.ID)
	assert.Contains(t, trainer.Dependents, print.ID)
}

func TestBuild_ImplicitOutputDependency(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	r := registry.New()
	r.DefinitionRegistry["trainer"] = &config.LauncherDefinition{
		Type: "trainer",
		Outputs: map[string]*config.OutputDefinition{
			"checkpoint_name": {Name: "checkpoint_name", Type: cty.String},
		},
	}
	model := newModel([]*config.Launch{
		{LauncherType: "trainer", Name: "main"},
		{
			LauncherType: "print",
			Name:         "report",
			Arguments: map[string]hcl.Expression{
				"input": expr(t, `{ checkpoint = launch.trainer.main.output.checkpoint_name }`),
			},
		},
	}, nil)

	// --- Act ---
	graph, err := Build(context.Background(), model, r)

	// --- Assert ---
	require.NoError(t, err)
	assert.Contains(t, graph.Nodes["launch.print.report"].Deps, "launch.trainer.main")
}

func TestBuild_UndeclaredOutputReference(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	r := registry.New()
	r.DefinitionRegistry["trainer"] = &config.LauncherDefinition{
		Type:    "trainer",
		Outputs: map[string]*config.OutputDefinition{},
	}
	model := newModel([]*config.Launch{
		{LauncherType: "trainer", Name: "main"},
		{
			LauncherType: "print",
			Name:         "report",
			Arguments: map[string]hcl.Expression{
				"input": expr(t, `{ v = launch.trainer.main.output.no_such_output }`),
			},
		},
	}, nil)

	// --- Act ---
	_, err := Build(context.Background(), model, r)

	// --- Assert ---
	require.Error(t, err)
	assert.Contains(t, err.Error(), `undeclared output "no_such_output"`)
}

func TestBuild_ResourceUsesDependency(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	model := newModel([]*config.Launch{
		{
			LauncherType: "trainer",
			Name:         "main",
			Uses: map[string]hcl.Expression{
				"run_log": expr(t, `resource.run_log.history`),
			},
		},
	}, []*config.Resource{
		{AssetType: "run_log", Name: "history"},
	})

	// --- Act ---
	graph, err := Build(context.Background(), model, registry.New())

	// --- Assert ---
	require.NoError(t, err)

	resNode := graph.Nodes["resource.run_log.history"]
	require.NotNil(t, resNode)
	assert.Contains(t, graph.Nodes["launch.trainer.main"].Deps, resNode.ID)
}

func TestBuild_MissingExplicitDependency(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	model := newModel([]*config.Launch{
		{LauncherType: "print", Name: "report", DependsOn: []string{"trainer.missing"}},
	}, nil)

	// --- Act ---
	_, err := Build(context.Background(), model, registry.New())

	// --- Assert ---
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-existent identifier 'trainer.missing'")
}

func TestBuild_CycleDetection(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	model := newModel([]*config.Launch{
		{LauncherType: "print", Name: "a", DependsOn: []string{"print.b"}},
		{LauncherType: "print", Name: "b", DependsOn: []string{"print.a"}},
	}, nil)

	// --- Act ---
	_, err := Build(context.Background(), model, registry.New())

	// --- Assert ---
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle detected")
}

func TestBuild_InitialCounters(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	model := newModel([]*config.Launch{
		{
			LauncherType: "trainer",
			Name:         "main",
			Uses: map[string]hcl.Expression{
				"run_log": expr(t, `resource.run_log.history`),
			},
		},
		{LauncherType: "print", Name: "report", DependsOn: []string{"trainer.main"}},
	}, []*config.Resource{
		{AssetType: "run_log", Name: "history"},
	})

	// --- Act ---
	graph, err := Build(context.Background(), model, registry.New())

	// --- Assert ---
	require.NoError(t, err)

	// The resource has one launch dependent, so one remaining descendant.
	resNode := graph.Nodes["resource.run_log.history"]
	assert.Equal(t, int32(0), resNode.DecrementDescendantCount(), "one launch dependent expected")

	// The trainer waits on the resource; the print waits on the trainer.
	assert.Equal(t, int32(0), graph.Nodes["launch.trainer.main"].DecrementDepCount())
	assert.Equal(t, int32(0), graph.Nodes["launch.print.report"].DecrementDepCount())
}
