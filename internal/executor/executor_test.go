package executor

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	hcllib "github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/szhaofelicia/Basketball-GAN/internal/config"
	"github.com/szhaofelicia/Basketball-GAN/internal/dag"
	"github.com/szhaofelicia/Basketball-GAN/internal/hcl"
	"github.com/szhaofelicia/Basketball-GAN/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// expr parses an HCL expression used as a launch argument.
func expr(t *testing.T, src string) hcllib.Expression {
	t.Helper()
	e, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcllib.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())
	return e
}

// recorder tracks handler invocations across goroutines.
type recorder struct {
	mu    sync.Mutex
	order []string
}

func (r *recorder) add(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, name)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

type workInput struct {
	Msg string `tctl:"msg"`
}

type workOutput struct {
	Echo string `cty:"echo"`
}

type workDeps struct{}

// newWorkRegistry registers the "work" launcher whose handler records its
// input message in rec before returning it as output.
func newWorkRegistry(rec *recorder, fail map[string]error) *registry.Registry {
	r := registry.New()
	r.RegisterLauncher("OnRunWork", &registry.RegisteredLauncher{
		NewInput:  func() any { return new(workInput) },
		InputType: reflect.TypeOf(workInput{}),
		NewDeps:   func() any { return new(workDeps) },
		Fn: func(ctx context.Context, deps *workDeps, input *workInput) (*workOutput, error) {
			rec.add(input.Msg)
			if err := fail[input.Msg]; err != nil {
				return nil, err
			}
			return &workOutput{Echo: input.Msg}, nil
		},
	})
	r.DefinitionRegistry["work"] = &config.LauncherDefinition{
		Type:      "work",
		Lifecycle: &config.Lifecycle{OnRun: "OnRunWork"},
		Inputs: map[string]*config.InputDefinition{
			"msg": {Name: "msg", Type: cty.String},
		},
		Outputs: map[string]*config.OutputDefinition{
			"echo": {Name: "echo", Type: cty.String},
		},
	}
	return r
}

// buildGraph wraps dag.Build for a plan-only model.
func buildGraph(t *testing.T, r *registry.Registry, launches []*config.Launch, resources []*config.Resource) *dag.Graph {
	t.Helper()
	model := &config.Model{
		Launchers: make(map[string]*config.LauncherDefinition),
		Assets:    make(map[string]*config.AssetDefinition),
		Plan:      &config.Plan{Launches: launches, Resources: resources},
	}
	graph, err := dag.Build(context.Background(), model, r)
	require.NoError(t, err)
	return graph
}

func TestRun_RespectsDependencyOrder(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	rec := &recorder{}
	r := newWorkRegistry(rec, nil)
	graph := buildGraph(t, r, []*config.Launch{
		{LauncherType: "work", Name: "first", Arguments: map[string]hcllib.Expression{"msg": expr(t, `"first"`)}},
		{LauncherType: "work", Name: "second", DependsOn: []string{"work.first"},
			Arguments: map[string]hcllib.Expression{"msg": expr(t, `"second"`)}},
		{LauncherType: "work", Name: "third", DependsOn: []string{"work.second"},
			Arguments: map[string]hcllib.Expression{"msg": expr(t, `"third"`)}},
	}, nil)

	// --- Act ---
	err := New(graph, 4, r, hcl.NewConverter()).Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, rec.snapshot())
}

func TestRun_FailureSkipsDependents(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	rec := &recorder{}
	boom := errors.New("trainer exploded")
	r := newWorkRegistry(rec, map[string]error{"first": boom})
	graph := buildGraph(t, r, []*config.Launch{
		{LauncherType: "work", Name: "first", Arguments: map[string]hcllib.Expression{"msg": expr(t, `"first"`)}},
		{LauncherType: "work", Name: "second", DependsOn: []string{"work.first"},
			Arguments: map[string]hcllib.Expression{"msg": expr(t, `"second"`)}},
	}, nil)

	// --- Act ---
	err := New(graph, 4, r, hcl.NewConverter()).Run(context.Background())

	// --- Assert ---
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "launch.work.first")
	assert.Equal(t, []string{"first"}, rec.snapshot(), "dependent must not run")
	assert.Equal(t, dag.Failed, graph.Nodes["launch.work.second"].GetState())
}

func TestRun_OutputFlowsDownstream(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	rec := &recorder{}
	r := newWorkRegistry(rec, nil)
	graph := buildGraph(t, r, []*config.Launch{
		{LauncherType: "work", Name: "producer", Arguments: map[string]hcllib.Expression{"msg": expr(t, `"payload"`)}},
		{LauncherType: "work", Name: "consumer",
			Arguments: map[string]hcllib.Expression{"msg": expr(t, `launch.work.producer.output.echo`)}},
	}, nil)

	// --- Act ---
	err := New(graph, 4, r, hcl.NewConverter()).Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"payload", "payload"}, rec.snapshot())
}

// fakeAsset is the instance type produced by the test asset.
type fakeAsset struct {
	created   time.Time
	destroyed bool
	mu        sync.Mutex
}

type assetInput struct {
	Label string `tctl:"label"`
}

type assetDeps struct {
	Asset *fakeAsset `tctl:"asset"`
}

func TestRun_ResourceLifecycle(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	rec := &recorder{}
	instance := &fakeAsset{}

	r := registry.New()
	r.RegisterAssetHandler("CreateFake", &registry.RegisteredAssetHandler{
		NewInput:  func() any { return new(assetInput) },
		InputType: reflect.TypeOf(assetInput{}),
		CreateFn: func(ctx context.Context, input *assetInput) (*fakeAsset, error) {
			rec.add("create:" + input.Label)
			instance.created = time.Now()
			return instance, nil
		},
	})
	r.RegisterAssetHandler("DestroyFake", &registry.RegisteredAssetHandler{
		DestroyFn: func(a *fakeAsset) error {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.destroyed = true
			rec.add("destroy")
			return nil
		},
	})
	r.RegisterAssetInterface("fake", reflect.TypeOf((*fakeAsset)(nil)))
	r.AssetDefinitionRegistry["fake"] = &config.AssetDefinition{
		Type:      "fake",
		Lifecycle: &config.AssetLifecycle{Create: "CreateFake", Destroy: "DestroyFake"},
		Inputs: map[string]*config.InputDefinition{
			"label": {Name: "label", Type: cty.String},
		},
	}

	r.RegisterLauncher("OnRunUser", &registry.RegisteredLauncher{
		NewInput:  nil,
		InputType: nil,
		NewDeps:   func() any { return new(assetDeps) },
		Fn: func(ctx context.Context, deps *assetDeps, _ *struct{}) (any, error) {
			require.NotNil(t, deps.Asset, "resource instance must be injected")
			require.False(t, deps.Asset.destroyed, "resource must be alive while in use")
			rec.add("use")
			return nil, nil
		},
	})
	r.DefinitionRegistry["user"] = &config.LauncherDefinition{
		Type:      "user",
		Lifecycle: &config.Lifecycle{OnRun: "OnRunUser"},
	}

	graph := buildGraph(t, r, []*config.Launch{
		{LauncherType: "user", Name: "main",
			Uses: map[string]hcllib.Expression{"asset": expr(t, `resource.fake.shared`)}},
	}, []*config.Resource{
		{AssetType: "fake", Name: "shared",
			Arguments: map[string]hcllib.Expression{"label": expr(t, `"shared"`)}},
	})

	// --- Act ---
	err := New(graph, 2, r, hcl.NewConverter()).Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)

	instance.mu.Lock()
	destroyed := instance.destroyed
	instance.mu.Unlock()
	assert.True(t, destroyed, "resource must be destroyed once the run finishes")

	order := rec.snapshot()
	require.Len(t, order, 3)
	assert.Equal(t, "create:shared", order[0])
	assert.Equal(t, "use", order[1])
	assert.Equal(t, "destroy", order[2])
}

func TestRun_CancellationReleasesDependentsOfSkippedNodes(t *testing.T) {
	t.Parallel()

	// A failing root cancels the run while an independent chain is still
	// queued. The drained chain head is skipped on the cancelled-context
	// path; its dependent must be skipped with it or Run never returns.
	// Root draining order follows map iteration, so repeat the scenario.
	for i := 0; i < 40; i++ {
		// --- Arrange ---
		rec := &recorder{}
		boom := errors.New("trainer exploded")
		r := newWorkRegistry(rec, map[string]error{"a": boom})
		graph := buildGraph(t, r, []*config.Launch{
			{LauncherType: "work", Name: "a", Arguments: map[string]hcllib.Expression{"msg": expr(t, `"a"`)}},
			{LauncherType: "work", Name: "b", Arguments: map[string]hcllib.Expression{"msg": expr(t, `"b"`)}},
			{LauncherType: "work", Name: "c", DependsOn: []string{"work.b"},
				Arguments: map[string]hcllib.Expression{"msg": expr(t, `"c"`)}},
		}, nil)

		// --- Act ---
		done := make(chan error, 1)
		go func() {
			done <- New(graph, 1, r, hcl.NewConverter()).Run(context.Background())
		}()

		// --- Assert ---
		select {
		case err := <-done:
			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
		case <-time.After(5 * time.Second):
			t.Fatalf("iteration %d: Run did not return; a dependent of a skipped node was never released", i)
		}
	}
}

func TestRun_CancelledContextSkipsPendingNodes(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	rec := &recorder{}
	r := newWorkRegistry(rec, nil)
	graph := buildGraph(t, r, []*config.Launch{
		{LauncherType: "work", Name: "only", Arguments: map[string]hcllib.Expression{"msg": expr(t, `"only"`)}},
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// --- Act ---
	err := New(graph, 1, r, hcl.NewConverter()).Run(ctx)

	// --- Assert ---
	require.NoError(t, err, "cancellation is not a node failure")
	assert.Empty(t, rec.snapshot())
}
