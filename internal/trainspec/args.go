package trainspec

import "strconv"

// Args assembles the trainer's argument list. Every flag is always passed,
// in declaration order, so that identical configs produce identical
// command lines run after run.
func (c Config) Args() []string {
	args := make([]string, 0, 2*38)

	addStr := func(flag, val string) {
		args = append(args, "--"+flag, val)
	}
	addInt := func(flag string, val int) {
		addStr(flag, strconv.Itoa(val))
	}
	addFloat := func(flag string, val float64) {
		addStr(flag, strconv.FormatFloat(val, 'g', -1, 64))
	}
	// The trainer's argparse layer treats booleans as 0/1 integers.
	addBool := func(flag string, val bool) {
		if val {
			addStr(flag, "1")
		} else {
			addStr(flag, "0")
		}
	}

	addStr("model", c.Model)
	addStr("dataset_name", c.DatasetName)
	addStr("dataset_dir", c.DatasetDir)
	addStr("schema", c.Schema)
	addStr("output_dir", c.OutputDir)
	addStr("delim", c.Delim)
	addStr("d_type", c.DType)

	addInt("pred_len", c.PredLen)
	addInt("encoder_h_dim_g", c.EncoderHDimG)
	addInt("encoder_h_dim_d", c.EncoderHDimD)
	addInt("decoder_h_dim", c.DecoderHDim)
	addInt("embedding_dim", c.EmbeddingDim)
	addInt("bottleneck_dim", c.BottleneckDim)
	addInt("mlp_dim", c.MLPDim)
	addInt("num_layers", c.NumLayers)

	addStr("noise_type", c.NoiseType)
	addStr("noise_mix_type", c.NoiseMixType)
	addBool("pool_every_timestep", c.PoolEveryTimestep)
	addFloat("l2_loss_weight", c.L2LossWeight)
	addBool("batch_norm", c.BatchNorm)
	addFloat("dropout", c.Dropout)

	addInt("batch_size", c.BatchSize)
	addFloat("g_learning_rate", c.GLearningRate)
	addInt("g_steps", c.GSteps)
	addFloat("d_learning_rate", c.DLearningRate)
	addInt("d_steps", c.DSteps)

	addInt("checkpoint_every", c.CheckpointEvery)
	addInt("print_every", c.PrintEvery)
	addInt("num_iterations", c.NumIterations)
	addInt("num_epochs", c.NumEpochs)

	addStr("pooling_type", c.PoolingType)
	addFloat("clipping_threshold_g", c.ClippingThresholdG)
	addInt("best_k", c.BestK)
	addStr("interaction_activation", c.InteractionActivation)

	addStr("checkpoint_name", c.CheckpointName)
	addBool("restore_from_checkpoint", c.RestoreFromCheckpoint)

	addFloat("g_gamma", c.GGamma)
	addFloat("d_gamma", c.DGamma)

	return args
}
