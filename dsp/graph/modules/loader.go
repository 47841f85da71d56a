package modules

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-modgraph/internal/wav"
	"github.com/pion/opus"
)

// maxOpusFrame is the largest decoded Opus frame: 120 ms at 48 kHz, stereo.
const maxOpusFrame = 5760 * 2

var errNoPackets = errors.New("sample: opus stream has no packets")

// LoadClip reads a sample file, choosing the decoder by extension:
// .wav for RIFF/WAVE, .opus for length-prefixed Opus packets.
func LoadClip(path string) (*wav.Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav", ".wave":
		clip, err := wav.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("sample: %s: %w", path, err)
		}

		return clip, nil
	case ".opus":
		clip, err := DecodeOpusPackets(f)
		if err != nil {
			return nil, fmt.Errorf("sample: %s: %w", path, err)
		}

		return clip, nil
	default:
		return nil, fmt.Errorf("sample: unsupported file type %q", ext)
	}
}

// DecodeOpusPackets decodes a stream of Opus packets, each preceded by its
// length as a little-endian uint16. The clip takes the sample rate of the
// first packet's bandwidth; stereo packets are kept as two channels.
func DecodeOpusPackets(r io.Reader) (*wav.Clip, error) {
	dec := opus.NewDecoder()
	pcm := make([]byte, maxOpusFrame*2)

	var (
		clip     *wav.Clip
		lenBuf   [2]byte
		channels int
	)

	for {
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return nil, fmt.Errorf("opus packet length: %w", err)
		}

		packet := make([]byte, binary.LittleEndian.Uint16(lenBuf[:]))
		if _, err := io.ReadFull(r, packet); err != nil {
			return nil, fmt.Errorf("opus packet body: %w", err)
		}

		if len(packet) == 0 {
			continue
		}

		bandwidth, stereo, err := dec.Decode(packet, pcm)
		if err != nil {
			return nil, fmt.Errorf("opus decode: %w", err)
		}

		if clip == nil {
			channels = 1
			if stereo {
				channels = 2
			}

			clip = &wav.Clip{SampleRate: int(bandwidth.SampleRate()), Channels: make([][]float64, channels)}
		}

		frames := packetFrames(packet[0], int(bandwidth.SampleRate()))
		appendPCM16(clip, pcm, frames, stereo)
	}

	if clip == nil {
		return nil, errNoPackets
	}

	return clip, nil
}

// packetFrames returns the samples per channel a packet decodes to, from
// the frame duration in its TOC byte and the decoded sample rate.
func packetFrames(toc byte, sampleRate int) int {
	return int(int64(packetDuration(toc)) * int64(sampleRate) / 400)
}

// packetDuration returns the duration of one packet in units of 2.5 ms,
// counting every frame the TOC frame-count code declares.
func packetDuration(toc byte) int {
	config := toc >> 3

	var unit int

	switch {
	case config < 12: // SILK: 10, 20, 40, 60 ms
		unit = [...]int{4, 8, 16, 24}[config%4]
	case config < 16: // hybrid: 10, 20 ms
		unit = [...]int{4, 8}[config%2]
	default: // CELT: 2.5, 5, 10, 20 ms
		unit = [...]int{1, 2, 4, 8}[config%4]
	}

	// code 0 is one frame; codes 1 and 2 carry two; code 3 is treated as one
	if code := toc & 0x3; code == 1 || code == 2 {
		unit *= 2
	}

	return unit
}

func appendPCM16(clip *wav.Clip, pcm []byte, frames int, stereo bool) {
	step := 1
	if stereo {
		step = 2
	}

	frames = min(frames, len(pcm)/(2*step))

	for i := 0; i < frames; i++ {
		for ch := range clip.Channels {
			idx := (i*step + min(ch, step-1)) * 2
			s := int16(binary.LittleEndian.Uint16(pcm[idx : idx+2]))
			clip.Channels[ch] = append(clip.Channels[ch], float64(s)/(1<<15))
		}
	}
}
