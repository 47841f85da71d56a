package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-modgraph/dsp/core"
)

func ExampleApplyProcessorOptions() {
	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(44100),
		core.WithBlockSize(256),
		core.WithProcessMode(core.ProcessOffline),
	)

	fmt.Printf("sampleRate=%.0f blockSize=%d mode=%s\n", cfg.SampleRate, cfg.BlockSize, cfg.Mode)

	// Output:
	// sampleRate=44100 blockSize=256 mode=offline
}

func ExampleAddInto() {
	buf := make([]float64, 2, 4)
	buf[0], buf[1] = 1, 2
	buf = core.EnsureLen(buf, 4)

	copied := copy(buf[2:], []float64{3, 4})
	fmt.Println(copied, buf)

	core.AddInto(buf, []float64{1, 1})
	core.Zero(buf[2:])
	fmt.Println(buf)

	// Output:
	// 2 [1 2 3 4]
	// [2 3 0 0]
}
