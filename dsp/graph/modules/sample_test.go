package modules

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-modgraph/dsp/graph"
	"github.com/cwbudde/algo-modgraph/internal/testutil"
	"github.com/cwbudde/algo-modgraph/internal/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSample(t *testing.T, data ...float64) *Sample {
	t.Helper()

	s := NewSample()
	s.SetClip(&wav.Clip{SampleRate: int(testRate), Channels: [][]float64{data}})
	s.SetSampleRate(testRate)
	require.NoError(t, s.Prepare(testConfig()))

	return s
}

func TestSample_OneShotPlayback(t *testing.T) {
	t.Parallel()

	s := newTestSample(t, 0, 1, 2, 3)
	ctx := testContext()

	assert.False(t, s.HasFinished(), "not triggered yet")

	step(t, s, ctx, inputs{SampleNoteInput: {note(0, 60, true)}})

	out := outputs(s, SampleSampleOutput)
	require.Len(t, out, 1)

	want := make([]float64, testBlock)
	copy(want, []float64{0, 1, 2, 3})
	testutil.RequireSliceNearlyEqual(t, out[0].Buffer, want, 1e-12)
	assert.True(t, s.HasFinished())

	// note-off does not retrigger, the voice stays quiet
	step(t, s, ctx, inputs{SampleNoteInput: {note(0, 60, false)}})
	assert.Empty(t, outputs(s, SampleSampleOutput))
}

func TestSample_NewOnsetRetriggers(t *testing.T) {
	t.Parallel()

	s := newTestSample(t, 1, 2)
	ctx := testContext()

	step(t, s, ctx, inputs{SampleNoteInput: {held(0, 60, 1)}})
	step(t, s, ctx, inputs{SampleNoteInput: {held(0, 60, 1)}})
	assert.Empty(t, outputs(s, SampleSampleOutput), "held note plays once")

	step(t, s, ctx, inputs{SampleNoteInput: {held(0, 60, 2)}})

	out := outputs(s, SampleSampleOutput)
	require.Len(t, out, 1)
	assert.InDelta(t, 1.0, out[0].Buffer[0], 1e-12)
	assert.InDelta(t, 2.0, out[0].Buffer[1], 1e-12)
}

func TestSample_Transposes(t *testing.T) {
	t.Parallel()

	s := newTestSample(t, 0, 1, 2, 3, 4)
	step(t, s, testContext(), inputs{SampleNoteInput: {note(0, 72, true)}})

	buf := outputs(s, SampleSampleOutput)[0].Buffer
	testutil.RequireSliceNearlyEqual(t, buf[:4], []float64{0, 2, 4, 0}, 1e-12)
}

func TestSample_InterpolatesAndMixesDown(t *testing.T) {
	t.Parallel()

	s := NewSample()
	s.SetClip(&wav.Clip{SampleRate: int(testRate) / 2, Channels: [][]float64{{0, 2, 4}, {0, 0, 0}}})
	s.SetSampleRate(testRate)
	require.NoError(t, s.Prepare(testConfig()))

	assert.Equal(t, 3, s.Len())

	step(t, s, testContext(), inputs{SampleNoteInput: {note(0, 60, true)}})
	buf := outputs(s, SampleSampleOutput)[0].Buffer
	testutil.RequireSliceNearlyEqual(t, buf[:6], []float64{0, 0.5, 1, 1.5, 2, 0}, 1e-12)
}

func TestSample_InitializeLoadsWav(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "hit.wav")

	var buf bytes.Buffer
	require.NoError(t, wav.Encode(&buf, 48000, [][]float64{{0.5, 0.25}}))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	s := NewSample()
	require.NoError(t, s.Initialize(graph.Definition{Type: TypeSample, Params: map[string]any{"path": path, "root": 48}}))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 48, s.root)

	err := NewSample().Initialize(graph.Definition{Type: TypeSample, Params: map[string]any{"path": filepath.Join(t.TempDir(), "missing.wav")}})
	require.Error(t, err)
}

func TestLoadClip_RejectsUnknownExtension(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	_, err := LoadClip(path)
	require.ErrorContains(t, err, "unsupported file type")
}

func TestDecodeOpusPackets_Framing(t *testing.T) {
	t.Parallel()

	_, err := DecodeOpusPackets(bytes.NewReader(nil))
	require.ErrorIs(t, err, errNoPackets)

	// zero-length packets are skipped
	_, err = DecodeOpusPackets(bytes.NewReader([]byte{0, 0, 0, 0}))
	require.ErrorIs(t, err, errNoPackets)

	// length prefix promises more than the stream holds
	var truncated bytes.Buffer
	require.NoError(t, binary.Write(&truncated, binary.LittleEndian, uint16(10)))
	truncated.Write([]byte{1, 2, 3})

	_, err = DecodeOpusPackets(&truncated)
	require.Error(t, err)

	_, err = DecodeOpusPackets(bytes.NewReader([]byte{5}))
	require.Error(t, err)
}

func TestPacketDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		toc  byte
		want int // 2.5 ms units
	}{
		{name: "silk nb 10ms", toc: 0x00, want: 4},
		{name: "silk nb 20ms", toc: 0x08, want: 8},
		{name: "silk wb 60ms", toc: 0x58, want: 24},
		{name: "hybrid 20ms", toc: 0x68, want: 8},
		{name: "celt 2.5ms", toc: 0x80, want: 1},
		{name: "celt 20ms", toc: 0xF8, want: 8},
		{name: "two equal frames", toc: 0x09, want: 16},
		{name: "two sized frames", toc: 0x0A, want: 16},
		{name: "arbitrary count", toc: 0x0B, want: 8},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, packetDuration(tc.toc), tc.name)
	}

	assert.Equal(t, 320, packetFrames(0x08, 16000), "20 ms at 16 kHz")
}
