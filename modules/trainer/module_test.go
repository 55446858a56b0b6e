package trainer

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	hcllib "github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/szhaofelicia/Basketball-GAN/internal/hcl"
	"github.com/szhaofelicia/Basketball-GAN/internal/runlog"
	"github.com/szhaofelicia/Basketball-GAN/internal/trainspec"

	_ "modernc.org/sqlite"
)

// expr parses an HCL expression used as a launch argument.
func expr(t *testing.T, src string) hcllib.Expression {
	t.Helper()
	e, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcllib.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())
	return e
}

// TestManifestDefaultsMatchTrainspec decodes the real manifest with only the
// required arguments supplied and checks that every default lands on the
// same values as trainspec.Default. A drift between the manifest and the Go
// defaults would silently change training runs.
func TestManifestDefaultsMatchTrainspec(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	ctx := context.Background()
	model, converter, err := hcl.NewLoader().Load(ctx, "manifest.hcl")
	require.NoError(t, err)

	launcherDef, ok := model.Launchers["trainer"]
	require.True(t, ok, "manifest must declare the trainer launcher")
	require.Equal(t, "OnRunTrainer", launcherDef.Lifecycle.OnRun)
	require.Contains(t, launcherDef.Uses, "run_log")

	args := map[string]hcllib.Expression{
		"script":      expr(t, `"../sgan/train.py"`),
		"dataset_dir": expr(t, `"/data/nfl/NFL_v3_s125"`),
	}

	// --- Act ---
	input := &Input{}
	err = converter.DecodeBody(ctx, input, args, launcherDef.Inputs, nil)

	// --- Assert ---
	require.NoError(t, err)

	expected := trainspec.Default()
	expected.DatasetDir = "/data/nfl/NFL_v3_s125"
	assert.Equal(t, expected, input.Config)

	assert.Equal(t, "python", input.Python)
	assert.Equal(t, "../sgan/train.py", input.Script)
	assert.Empty(t, input.SchemaDir)
	assert.False(t, input.DryRun)
}

func TestOnRunTrainer_DryRun(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	input := &Input{
		Config: trainspec.Default(),
		Python: "python",
		Script: "/opt/sgan/train.py",
		DryRun: true,
	}
	input.DatasetDir = "/data/nfl/NFL_v3_s125"

	// --- Act ---
	out, err := OnRunTrainer(context.Background(), &Deps{}, input)

	// --- Assert ---
	require.NoError(t, err)
	assert.True(t, out.DryRun)
	assert.Equal(t, 0, out.ExitCode)
	assert.Equal(t, "/opt/sgan", out.WorkDir)
	assert.Equal(t, input.CheckpointName, out.CheckpointName)

	// python + script + 38 "--flag value" pairs.
	require.Len(t, out.Command, 2+2*38)
	assert.Equal(t, "python", out.Command[0])
	assert.Equal(t, "/opt/sgan/train.py", out.Command[1])
	assert.Equal(t, "--model", out.Command[2])
	assert.Equal(t, "team_pos", out.Command[3])
}

func TestOnRunTrainer_InvalidConfigRejectedBeforeSpawn(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	input := &Input{
		Config: trainspec.Default(),
		Python: "python",
		Script: "/does/not/matter/train.py",
	}
	// DatasetDir left empty: invalid.

	// --- Act ---
	_, err := OnRunTrainer(context.Background(), &Deps{}, input)

	// --- Assert ---
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset_dir")
}

func TestOnRunTrainer_SchemaCheck(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	schemaDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(schemaDir, "nfl.json"),
		[]byte(`{"name": "nfl", "positions": ["QB"], "with_ball": true}`), 0o600))

	valid := &Input{
		Config:    trainspec.Default(),
		Python:    "python",
		Script:    "/opt/sgan/train.py",
		SchemaDir: schemaDir,
		DryRun:    true,
	}
	valid.DatasetDir = "/data/nfl/NFL_v3_s125"

	missing := *valid
	missing.Schema = "hockey"

	// --- Act / Assert ---
	_, err := OnRunTrainer(context.Background(), &Deps{}, valid)
	require.NoError(t, err)

	_, err = OnRunTrainer(context.Background(), &Deps{}, &missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema check failed")
}

// newTestRunLog opens an in-memory run log store.
func newTestRunLog(t *testing.T) *runlog.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	store, err := runlog.NewStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// writeFakeTrainer writes a shell script standing in for train.py and
// returns its path. Spawning it through /bin/sh mirrors how the real
// trainer is spawned through python.
func writeFakeTrainer(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "train.py")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o700))
	return path
}

func TestOnRunTrainer_SpawnsAndRecordsRun(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	script := writeFakeTrainer(t, "#!/bin/sh\necho training\nexit 0\n")
	store := newTestRunLog(t)

	input := &Input{
		Config: trainspec.Default(),
		Python: "/bin/sh",
		Script: script,
	}
	input.DatasetDir = t.TempDir()

	// --- Act ---
	out, err := OnRunTrainer(context.Background(), &Deps{RunLog: store}, input)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 0, out.ExitCode)
	assert.Equal(t, filepath.Dir(script), out.WorkDir)
	assert.GreaterOrEqual(t, out.DurationSeconds, 0.0)

	runs, err := store.RecentRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runlog.StatusSucceeded, runs[0].Status)
	assert.Equal(t, input.CheckpointName, runs[0].CheckpointName)
	assert.Equal(t, out.Command, runs[0].Command)
}

func TestOnRunTrainer_PropagatesExitCode(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	script := writeFakeTrainer(t, "#!/bin/sh\necho boom >&2\nexit 3\n")
	store := newTestRunLog(t)

	input := &Input{
		Config: trainspec.Default(),
		Python: "/bin/sh",
		Script: script,
	}
	input.DatasetDir = t.TempDir()

	// --- Act ---
	_, err := OnRunTrainer(context.Background(), &Deps{RunLog: store}, input)

	// --- Assert ---
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited with code 3")
	assert.Contains(t, err.Error(), "boom", "stderr tail should be carried in the error")

	runs, err := store.RecentRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runlog.StatusFailed, runs[0].Status)
	assert.Equal(t, 3, runs[0].ExitCode)
}

func TestOnRunTrainer_MissingScript(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	input := &Input{
		Config: trainspec.Default(),
		Python: "/bin/sh",
		Script: filepath.Join(t.TempDir(), "train.py"),
	}
	input.DatasetDir = t.TempDir()

	// --- Act ---
	_, err := OnRunTrainer(context.Background(), &Deps{}, input)

	// --- Assert ---
	require.Error(t, err)
	assert.Contains(t, err.Error(), "training script not found")
}
