package trainspec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgs_GoldenDefault(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	cfg := Default()
	cfg.DatasetDir = "/data/nfl/NFL_v3_s125"

	expected := []string{
		"--model", "team_pos",
		"--dataset_name", "NFL_v3_s125",
		"--dataset_dir", "/data/nfl/NFL_v3_s125",
		"--schema", "nfl",
		"--output_dir", "../experiments",
		"--delim", "tab",
		"--d_type", "local",
		"--pred_len", "8",
		"--encoder_h_dim_g", "32",
		"--encoder_h_dim_d", "64",
		"--decoder_h_dim", "32",
		"--embedding_dim", "16",
		"--bottleneck_dim", "32",
		"--mlp_dim", "128",
		"--num_layers", "1",
		"--noise_type", "gaussian",
		"--noise_mix_type", "global",
		"--pool_every_timestep", "0",
		"--l2_loss_weight", "1",
		"--batch_norm", "0",
		"--dropout", "0.5",
		"--batch_size", "128",
		"--g_learning_rate", "0.001",
		"--g_steps", "1",
		"--d_learning_rate", "0.001",
		"--d_steps", "2",
		"--checkpoint_every", "10",
		"--print_every", "50",
		"--num_iterations", "40000",
		"--num_epochs", "800",
		"--pooling_type", "pool_net",
		"--clipping_threshold_g", "1.5",
		"--best_k", "10",
		"--interaction_activation", "none",
		"--checkpoint_name", "nfl125.teampos_v4.aln6.dg05.gg05.d5.e16",
		"--restore_from_checkpoint", "0",
		"--g_gamma", "0.5",
		"--d_gamma", "0.5",
	}

	// --- Act ---
	args := cfg.Args()

	// --- Assert ---
	if diff := cmp.Diff(expected, args); diff != "" {
		t.Errorf("Args() mismatch (-want +got):\n%s", diff)
	}
}

func TestArgs_Deterministic(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	cfg := Default()
	cfg.DatasetDir = "/data/nfl/NFL_v3_s125"

	// --- Act ---
	first := cfg.Args()
	second := cfg.Args()

	// --- Assert ---
	assert.Equal(t, first, second, "identical configs must produce identical command lines")
}

func TestArgs_BooleansAreNumericFlags(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	cfg := Default()
	cfg.PoolEveryTimestep = true
	cfg.BatchNorm = true
	cfg.RestoreFromCheckpoint = true

	// --- Act ---
	args := cfg.Args()

	// --- Assert ---
	flags := make(map[string]string)
	require.Zero(t, len(args)%2, "args must come in --flag value pairs")
	for i := 0; i < len(args); i += 2 {
		flags[args[i]] = args[i+1]
	}
	assert.Equal(t, "1", flags["--pool_every_timestep"])
	assert.Equal(t, "1", flags["--batch_norm"])
	assert.Equal(t, "1", flags["--restore_from_checkpoint"])
}
