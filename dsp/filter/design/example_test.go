package design_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-modgraph/dsp/filter/design"
)

func ExampleLowpass() {
	lp := design.Lowpass(1000, 1/math.Sqrt2, 48000)
	hp := design.Highpass(1000, 1/math.Sqrt2, 48000)

	for _, f := range []float64{100, 1000, 10000} {
		fmt.Printf("%5.0f Hz: low %.2f dB, high %.2f dB\n", f,
			20*math.Log10(design.MagnitudeAt(lp, f, 48000)),
			20*math.Log10(design.MagnitudeAt(hp, f, 48000)))
	}
	// Output:
	//   100 Hz: low -0.00 dB, high -40.03 dB
	//  1000 Hz: low -3.01 dB, high -3.01 dB
	// 10000 Hz: low -42.74 dB, high -0.00 dB
}
