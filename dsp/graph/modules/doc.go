// Package modules provides the built-in graph module variants and a
// registry that builds them from definitions.
//
// Variants exchange per-voice values: midi-in emits one note value per
// active voice, and audio-rate modules emit one buffer per voice tagged with
// the same voice index. Control inputs (waveform, envelope times, cutoff,
// gain, level, on/off) take normalized values in [0, 1], the range host
// parameter automation delivers; definition parameters use plain units.
package modules
