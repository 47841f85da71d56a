// Package wav reads and writes RIFF/WAVE files as deinterleaved float64
// channels.
package wav

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	formatPCM        = 1
	formatFloat      = 3
	formatExtensible = 0xFFFE
)

var (
	// ErrNotWave reports input that is not a RIFF/WAVE stream.
	ErrNotWave = errors.New("wav: not a RIFF/WAVE stream")
	// ErrUnsupportedFormat reports an encoding this package cannot decode.
	ErrUnsupportedFormat = errors.New("wav: unsupported sample format")
)

// Clip is decoded audio, one slice per channel.
type Clip struct {
	SampleRate int
	Channels   [][]float64
}

// Frames returns the number of samples per channel.
func (c *Clip) Frames() int {
	if len(c.Channels) == 0 {
		return 0
	}

	return len(c.Channels[0])
}

type format struct {
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// Decode reads a WAVE stream. PCM 8/16/24/32-bit and IEEE float 32/64-bit
// data are supported; chunks other than "fmt " and "data" are skipped.
func Decode(r io.Reader) (*Clip, error) {
	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWave, err)
	}

	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return nil, ErrNotWave
	}

	var (
		f       format
		haveFmt bool
	)

	for {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("wav: missing data chunk")
			}

			return nil, fmt.Errorf("wav: read chunk header: %w", err)
		}

		id := string(chunk[0:4])
		size := binary.LittleEndian.Uint32(chunk[4:8])

		switch id {
		case "fmt ":
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("wav: read fmt chunk: %w", err)
			}

			parsed, err := parseFormat(body)
			if err != nil {
				return nil, err
			}

			f, haveFmt = parsed, true
		case "data":
			if !haveFmt {
				return nil, fmt.Errorf("wav: data chunk before fmt chunk")
			}

			data := make([]byte, size)

			n, err := io.ReadFull(r, data)
			if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("wav: read data chunk: %w", err)
			}

			return decodeSamples(f, data[:n])
		default:
			if _, err := io.CopyN(io.Discard, r, int64(size)+int64(size&1)); err != nil {
				return nil, fmt.Errorf("wav: skip %q chunk: %w", id, err)
			}

			continue
		}

		if size&1 == 1 {
			if _, err := io.CopyN(io.Discard, r, 1); err != nil {
				return nil, fmt.Errorf("wav: chunk padding: %w", err)
			}
		}
	}
}

func parseFormat(body []byte) (format, error) {
	if len(body) < 16 {
		return format{}, fmt.Errorf("wav: fmt chunk too short (%d bytes)", len(body))
	}

	f := format{
		AudioFormat:   binary.LittleEndian.Uint16(body[0:2]),
		NumChannels:   binary.LittleEndian.Uint16(body[2:4]),
		SampleRate:    binary.LittleEndian.Uint32(body[4:8]),
		ByteRate:      binary.LittleEndian.Uint32(body[8:12]),
		BlockAlign:    binary.LittleEndian.Uint16(body[12:14]),
		BitsPerSample: binary.LittleEndian.Uint16(body[14:16]),
	}

	// extensible: the sub-format GUID starts with the plain format code
	if f.AudioFormat == formatExtensible && len(body) >= 26 {
		f.AudioFormat = binary.LittleEndian.Uint16(body[24:26])
	}

	if f.NumChannels == 0 || f.SampleRate == 0 {
		return format{}, fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedFormat, f.NumChannels, f.SampleRate)
	}

	switch {
	case f.AudioFormat == formatPCM && (f.BitsPerSample == 8 || f.BitsPerSample == 16 || f.BitsPerSample == 24 || f.BitsPerSample == 32):
	case f.AudioFormat == formatFloat && (f.BitsPerSample == 32 || f.BitsPerSample == 64):
	default:
		return format{}, fmt.Errorf("%w: format %d, %d bits", ErrUnsupportedFormat, f.AudioFormat, f.BitsPerSample)
	}

	return f, nil
}

func decodeSamples(f format, data []byte) (*Clip, error) {
	width := int(f.BitsPerSample / 8)
	channels := int(f.NumChannels)
	frames := len(data) / (width * channels)

	clip := &Clip{SampleRate: int(f.SampleRate), Channels: make([][]float64, channels)}
	for ch := range clip.Channels {
		clip.Channels[ch] = make([]float64, frames)
	}

	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			off := (i*channels + ch) * width
			clip.Channels[ch][i] = sampleAt(f, data[off:off+width])
		}
	}

	return clip, nil
}

func sampleAt(f format, b []byte) float64 {
	if f.AudioFormat == formatFloat {
		if f.BitsPerSample == 64 {
			return math.Float64frombits(binary.LittleEndian.Uint64(b))
		}

		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	}

	switch f.BitsPerSample {
	case 8:
		return (float64(b[0]) - 128) / 128
	case 16:
		return float64(int16(binary.LittleEndian.Uint16(b))) / (1 << 15)
	case 24:
		v := int32(b[0]) | int32(b[1])<<8 | int32(int8(b[2]))<<16
		return float64(v) / (1 << 23)
	default:
		return float64(int32(binary.LittleEndian.Uint32(b))) / (1 << 31)
	}
}

// Encode writes channels as a 32-bit IEEE float WAVE stream. Channels
// shorter than the first are padded with silence.
func Encode(w io.Writer, sampleRate int, channels [][]float64) error {
	if len(channels) == 0 || len(channels) > math.MaxUint16 {
		return fmt.Errorf("wav: cannot encode %d channels", len(channels))
	}

	if sampleRate <= 0 {
		return fmt.Errorf("wav: invalid sample rate %d", sampleRate)
	}

	frames := len(channels[0])
	numCh := len(channels)
	dataSize := frames * numCh * 4

	bw := bufio.NewWriter(w)

	header := make([]byte, 0, 44)
	header = append(header, "RIFF"...)
	header = binary.LittleEndian.AppendUint32(header, uint32(36+dataSize))
	header = append(header, "WAVEfmt "...)
	header = binary.LittleEndian.AppendUint32(header, 16)
	header = binary.LittleEndian.AppendUint16(header, formatFloat)
	header = binary.LittleEndian.AppendUint16(header, uint16(numCh))
	header = binary.LittleEndian.AppendUint32(header, uint32(sampleRate))
	header = binary.LittleEndian.AppendUint32(header, uint32(sampleRate*numCh*4))
	header = binary.LittleEndian.AppendUint16(header, uint16(numCh*4))
	header = binary.LittleEndian.AppendUint16(header, 32)
	header = append(header, "data"...)
	header = binary.LittleEndian.AppendUint32(header, uint32(dataSize))

	if _, err := bw.Write(header); err != nil {
		return fmt.Errorf("wav: write header: %w", err)
	}

	var sample [4]byte

	for i := 0; i < frames; i++ {
		for _, ch := range channels {
			var v float64
			if i < len(ch) {
				v = ch[i]
			}

			binary.LittleEndian.PutUint32(sample[:], math.Float32bits(float32(v)))

			if _, err := bw.Write(sample[:]); err != nil {
				return fmt.Errorf("wav: write samples: %w", err)
			}
		}
	}

	return bw.Flush()
}
