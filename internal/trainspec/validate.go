package trainspec

import (
	"fmt"
	"strings"
)

// Enumerations accepted by the trainer.
var (
	validModels       = []string{"team_pos", "team", "vanilla"}
	validDelims       = []string{"tab", "space"}
	validDTypes       = []string{"local", "global"}
	validNoiseTypes   = []string{"gaussian", "uniform"}
	validNoiseMixes   = []string{"global", "ped"}
	validPoolingTypes = []string{"pool_net", "spool", "none"}
	validActivations  = []string{"none", "relu", "tanh", "sigmoid"}
)

// Validate checks the configuration before a trainer process is spawned.
// The legacy launch scripts passed values through unchecked; a bad enum or
// range was only discovered minutes into a run.
func (c Config) Validate() error {
	var errs []string

	checkEnum := func(flag, val string, valid []string) {
		for _, v := range valid {
			if val == v {
				return
			}
		}
		errs = append(errs, fmt.Sprintf("%s: %q is not one of %s", flag, val, strings.Join(valid, "|")))
	}
	checkPositive := func(flag string, val int) {
		if val <= 0 {
			errs = append(errs, fmt.Sprintf("%s: must be positive, got %d", flag, val))
		}
	}
	checkPositiveF := func(flag string, val float64) {
		if val <= 0 {
			errs = append(errs, fmt.Sprintf("%s: must be positive, got %g", flag, val))
		}
	}

	if c.DatasetName == "" {
		errs = append(errs, "dataset_name: must not be empty")
	}
	if c.DatasetDir == "" {
		errs = append(errs, "dataset_dir: must not be empty")
	}
	if c.Schema == "" {
		errs = append(errs, "schema: must not be empty")
	}
	if c.CheckpointName == "" {
		errs = append(errs, "checkpoint_name: must not be empty")
	}

	checkEnum("model", c.Model, validModels)
	checkEnum("delim", c.Delim, validDelims)
	checkEnum("d_type", c.DType, validDTypes)
	checkEnum("noise_type", c.NoiseType, validNoiseTypes)
	checkEnum("noise_mix_type", c.NoiseMixType, validNoiseMixes)
	checkEnum("pooling_type", c.PoolingType, validPoolingTypes)
	checkEnum("interaction_activation", c.InteractionActivation, validActivations)

	checkPositive("pred_len", c.PredLen)
	checkPositive("encoder_h_dim_g", c.EncoderHDimG)
	checkPositive("encoder_h_dim_d", c.EncoderHDimD)
	checkPositive("decoder_h_dim", c.DecoderHDim)
	checkPositive("embedding_dim", c.EmbeddingDim)
	checkPositive("bottleneck_dim", c.BottleneckDim)
	checkPositive("mlp_dim", c.MLPDim)
	checkPositive("num_layers", c.NumLayers)
	checkPositive("batch_size", c.BatchSize)
	checkPositive("g_steps", c.GSteps)
	checkPositive("d_steps", c.DSteps)
	checkPositive("checkpoint_every", c.CheckpointEvery)
	checkPositive("print_every", c.PrintEvery)
	checkPositive("num_iterations", c.NumIterations)
	checkPositive("num_epochs", c.NumEpochs)
	checkPositive("best_k", c.BestK)

	checkPositiveF("g_learning_rate", c.GLearningRate)
	checkPositiveF("d_learning_rate", c.DLearningRate)

	if c.Dropout < 0 || c.Dropout > 1 {
		errs = append(errs, fmt.Sprintf("dropout: must be within [0, 1], got %g", c.Dropout))
	}
	if c.L2LossWeight < 0 {
		errs = append(errs, fmt.Sprintf("l2_loss_weight: must not be negative, got %g", c.L2LossWeight))
	}
	if c.ClippingThresholdG < 0 {
		errs = append(errs, fmt.Sprintf("clipping_threshold_g: must not be negative, got %g", c.ClippingThresholdG))
	}
	if c.GGamma <= 0 || c.GGamma > 1 {
		errs = append(errs, fmt.Sprintf("g_gamma: must be within (0, 1], got %g", c.GGamma))
	}
	if c.DGamma <= 0 || c.DGamma > 1 {
		errs = append(errs, fmt.Sprintf("d_gamma: must be within (0, 1], got %g", c.DGamma))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid training configuration:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
