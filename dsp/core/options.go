package core

import (
	"errors"
	"fmt"
)

// ProcessMode tells processors whether they run against a real-time deadline.
type ProcessMode int

const (
	// ProcessRealtime is the default host-driven mode.
	ProcessRealtime ProcessMode = iota
	// ProcessOffline renders faster or slower than real time.
	ProcessOffline
)

// String returns the mode name.
func (m ProcessMode) String() string {
	switch m {
	case ProcessRealtime:
		return "realtime"
	case ProcessOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// SampleSize is the host sample word size in bits.
type SampleSize int

const (
	Sample32 SampleSize = 32
	Sample64 SampleSize = 64
)

// ErrInvalidConfig is returned by ProcessorConfig.Validate.
var ErrInvalidConfig = errors.New("invalid processor config")

// ProcessorConfig defines common DSP processing settings.
type ProcessorConfig struct {
	SampleRate float64
	BlockSize  int // maximum samples per block
	Mode       ProcessMode
	SampleSize SampleSize
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns sensible defaults for offline and streaming use.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: 48000,
		BlockSize:  1024,
		Mode:       ProcessRealtime,
		SampleSize: Sample32,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the maximum number of samples per block.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithProcessMode selects realtime or offline processing.
func WithProcessMode(mode ProcessMode) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if mode == ProcessRealtime || mode == ProcessOffline {
			cfg.Mode = mode
		}
	}
}

// WithSampleSize sets the host sample word size.
func WithSampleSize(size SampleSize) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if size == Sample32 || size == Sample64 {
			cfg.SampleSize = size
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Validate reports whether cfg can drive block processing.
func (cfg ProcessorConfig) Validate() error {
	if cfg.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be > 0: %v", ErrInvalidConfig, cfg.SampleRate)
	}
	if cfg.BlockSize <= 0 {
		return fmt.Errorf("%w: block size must be > 0: %d", ErrInvalidConfig, cfg.BlockSize)
	}
	if cfg.SampleSize != Sample32 && cfg.SampleSize != Sample64 {
		return fmt.Errorf("%w: sample size must be 32 or 64: %d", ErrInvalidConfig, cfg.SampleSize)
	}
	return nil
}
