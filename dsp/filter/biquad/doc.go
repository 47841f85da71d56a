// Package biquad provides the second-order IIR filter runtime used by the
// graph's filter modules.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. Coefficient design
// (lowpass, highpass) lives in dsp/filter/design.
package biquad
