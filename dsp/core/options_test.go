package core

import (
	"errors"
	"testing"
)

func TestApplyProcessorOptions(t *testing.T) {
	cfg := ApplyProcessorOptions(
		WithSampleRate(96000),
		WithBlockSize(2048),
		WithProcessMode(ProcessOffline),
		WithSampleSize(Sample64),
	)
	if cfg.SampleRate != 96000 {
		t.Fatalf("sample rate = %v, want 96000", cfg.SampleRate)
	}
	if cfg.BlockSize != 2048 {
		t.Fatalf("block size = %d, want 2048", cfg.BlockSize)
	}
	if cfg.Mode != ProcessOffline {
		t.Fatalf("mode = %v, want offline", cfg.Mode)
	}
	if cfg.SampleSize != Sample64 {
		t.Fatalf("sample size = %d, want 64", cfg.SampleSize)
	}
}

func TestInvalidOptionsIgnored(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(0), WithBlockSize(-1), WithProcessMode(7), WithSampleSize(24))
	def := DefaultProcessorConfig()
	if cfg != def {
		t.Fatalf("cfg = %#v, want %#v", cfg, def)
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultProcessorConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	bad := []ProcessorConfig{
		{SampleRate: 0, BlockSize: 64, SampleSize: Sample32},
		{SampleRate: 48000, BlockSize: 0, SampleSize: Sample32},
		{SampleRate: 48000, BlockSize: 64, SampleSize: 16},
	}
	for i, cfg := range bad {
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("case %d: err = %v, want ErrInvalidConfig", i, err)
		}
	}
}

func TestProcessModeString(t *testing.T) {
	if ProcessRealtime.String() != "realtime" || ProcessOffline.String() != "offline" {
		t.Fatal("unexpected mode names")
	}
}
