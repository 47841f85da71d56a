// Package design provides RBJ-style biquad coefficient designers for the
// graph's low-pass and high-pass modules.
//
// The functions in this package produce coefficients consumable by
// dsp/filter/biquad for runtime processing.
package design
