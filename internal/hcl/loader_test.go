package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// writeHCL drops an .hcl file into dir.
func writeHCL(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoad_PlanAndManifestAcrossFiles(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	writeHCL(t, dir, "manifest.hcl", `
		launcher "trainer" {
			description = "test launcher"
			lifecycle {
				on_run = "OnRunTrainer"
			}
			input "script" {
				type = string
			}
			input "batch_size" {
				type    = number
				default = 128
			}
			output "exit_code" {
				type = number
			}
		}

		asset "run_log" {
			lifecycle {
				create  = "CreateRunLog"
				destroy = "DestroyRunLog"
			}
			input "path" {
				type = string
			}
		}
	`)
	writeHCL(t, dir, "plan.hcl", `
		resource "run_log" "history" {
			arguments {
				path = "runs.db"
			}
		}

		launch "trainer" "main" {
			arguments {
				script = "../sgan/train.py"
			}
			uses {
				run_log = resource.run_log.history
			}
		}
	`)

	// --- Act ---
	model, converter, err := NewLoader().Load(context.Background(), dir)

	// --- Assert ---
	require.NoError(t, err)
	require.NotNil(t, converter)

	launcherDef, ok := model.Launchers["trainer"]
	require.True(t, ok, "launcher manifest should be loaded")
	assert.Equal(t, "OnRunTrainer", launcherDef.Lifecycle.OnRun)
	require.Contains(t, launcherDef.Inputs, "script")
	assert.True(t, cty.String.Equals(launcherDef.Inputs["script"].Type))
	assert.Nil(t, launcherDef.Inputs["script"].Default)

	batchDef := launcherDef.Inputs["batch_size"]
	require.NotNil(t, batchDef.Default)
	assert.True(t, batchDef.Optional)
	assert.Contains(t, launcherDef.Outputs, "exit_code")

	assetDef, ok := model.Assets["run_log"]
	require.True(t, ok, "asset manifest should be loaded")
	assert.Equal(t, "CreateRunLog", assetDef.Lifecycle.Create)

	require.Len(t, model.Plan.Launches, 1)
	launch := model.Plan.Launches[0]
	assert.Equal(t, "trainer", launch.LauncherType)
	assert.Equal(t, "main", launch.Name)
	assert.Contains(t, launch.Arguments, "script")
	assert.Contains(t, launch.Uses, "run_log")

	require.Len(t, model.Plan.Resources, 1)
	assert.Equal(t, "run_log", model.Plan.Resources[0].AssetType)
	assert.Equal(t, "history", model.Plan.Resources[0].Name)
}

func TestLoad_SingleFilePath(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	writeHCL(t, dir, "plan.hcl", `
		launch "print" "hello" {
			arguments {
				input = { greeting = "hi" }
			}
		}
	`)

	// --- Act ---
	model, _, err := NewLoader().Load(context.Background(), filepath.Join(dir, "plan.hcl"))

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, model.Plan.Launches, 1)
	assert.Equal(t, "print", model.Plan.Launches[0].LauncherType)
}

func TestLoad_SyntaxErrorIsReported(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	writeHCL(t, dir, "broken.hcl", `
		launch "print" "broken" {
			arguments {
	`)

	// --- Act ---
	_, _, err := NewLoader().Load(context.Background(), dir)

	// --- Assert ---
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestLoad_MissingPath(t *testing.T) {
	t.Parallel()

	_, _, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
}
