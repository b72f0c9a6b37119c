package core

// ProcessorConfig carries the settings shared by every block processor
// in this module: the sample rate the data was captured at and the
// block size the processor works in.
type ProcessorConfig struct {
	SampleRate float64
	BlockSize  int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns the 48 kHz / 1024-sample configuration
// used when the caller passes no options.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: 48000,
		BlockSize:  1024,
	}
}

// WithSampleRate sets the processing sample rate in Hz. Non-positive
// rates leave the config unchanged.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate <= 0 {
			return
		}

		cfg.SampleRate = sampleRate
	}
}

// WithBlockSize sets the processing block size in samples. Non-positive
// sizes leave the config unchanged.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize <= 0 {
			return
		}

		cfg.BlockSize = blockSize
	}
}

// ApplyProcessorOptions folds opts over the default config. Nil options
// are skipped.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
