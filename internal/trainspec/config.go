// Package trainspec defines the hyperparameter record handed to the
// external trajectory-GAN trainer, the assembly of its command line, and
// the validation the original launch scripts never performed.
package trainspec

// Config is the flat training configuration. One field per trainer flag, in
// the order the flags are passed on the command line. The zero value is not
// runnable; start from Default.
type Config struct {
	Model       string `tctl:"model"`
	DatasetName string `tctl:"dataset_name"`
	DatasetDir  string `tctl:"dataset_dir"`
	Schema      string `tctl:"schema"`
	OutputDir   string `tctl:"output_dir"`
	Delim       string `tctl:"delim"`
	DType       string `tctl:"d_type"`

	PredLen       int `tctl:"pred_len"`
	EncoderHDimG  int `tctl:"encoder_h_dim_g"`
	EncoderHDimD  int `tctl:"encoder_h_dim_d"`
	DecoderHDim   int `tctl:"decoder_h_dim"`
	EmbeddingDim  int `tctl:"embedding_dim"`
	BottleneckDim int `tctl:"bottleneck_dim"`
	MLPDim        int `tctl:"mlp_dim"`
	NumLayers     int `tctl:"num_layers"`

	NoiseType         string  `tctl:"noise_type"`
	NoiseMixType      string  `tctl:"noise_mix_type"`
	PoolEveryTimestep bool    `tctl:"pool_every_timestep"`
	L2LossWeight      float64 `tctl:"l2_loss_weight"`
	BatchNorm         bool    `tctl:"batch_norm"`
	Dropout           float64 `tctl:"dropout"`

	BatchSize     int     `tctl:"batch_size"`
	GLearningRate float64 `tctl:"g_learning_rate"`
	GSteps        int     `tctl:"g_steps"`
	DLearningRate float64 `tctl:"d_learning_rate"`
	DSteps        int     `tctl:"d_steps"`

	CheckpointEvery int `tctl:"checkpoint_every"`
	PrintEvery      int `tctl:"print_every"`
	NumIterations   int `tctl:"num_iterations"`
	NumEpochs       int `tctl:"num_epochs"`

	PoolingType           string  `tctl:"pooling_type"`
	ClippingThresholdG    float64 `tctl:"clipping_threshold_g"`
	BestK                 int     `tctl:"best_k"`
	InteractionActivation string  `tctl:"interaction_activation"`

	CheckpointName        string `tctl:"checkpoint_name"`
	RestoreFromCheckpoint bool   `tctl:"restore_from_checkpoint"`

	GGamma float64 `tctl:"g_gamma"`
	DGamma float64 `tctl:"d_gamma"`
}

// Default returns the team/position configuration used for the NFL_v3_s125
// runs. DatasetDir is intentionally left empty: it was always a
// machine-local path and must be supplied per launch.
func Default() Config {
	return Config{
		Model:       "team_pos",
		DatasetName: "NFL_v3_s125",
		DatasetDir:  "",
		Schema:      "nfl",
		OutputDir:   "../experiments",
		Delim:       "tab",
		DType:       "local",

		PredLen:       8,
		EncoderHDimG:  32,
		EncoderHDimD:  64,
		DecoderHDim:   32,
		EmbeddingDim:  16,
		BottleneckDim: 32,
		MLPDim:        128,
		NumLayers:     1,

		NoiseType:         "gaussian",
		NoiseMixType:      "global",
		PoolEveryTimestep: false,
		L2LossWeight:      1,
		BatchNorm:         false,
		Dropout:           0.5,

		BatchSize:     128,
		GLearningRate: 1e-3,
		GSteps:        1,
		DLearningRate: 1e-3,
		DSteps:        2,

		CheckpointEvery: 10,
		PrintEvery:      50,
		NumIterations:   40000,
		NumEpochs:       800,

		PoolingType:           "pool_net",
		ClippingThresholdG:    1.5,
		BestK:                 10,
		InteractionActivation: "none",

		CheckpointName:        "nfl125.teampos_v4.aln6.dg05.gg05.d5.e16",
		RestoreFromCheckpoint: false,

		GGamma: 0.5,
		DGamma: 0.5,
	}
}
