// Package pcm decodes the raw speech payload returned by the generative
// backend into playable samples.
package pcm

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// Decode/format errors.
var (
	ErrMalformedPayload       = errors.New("malformed base64 payload")
	ErrUnsupportedAudioFormat = errors.New("unsupported audio format")
)

// sampleWidth is the byte width of one sample (little-endian signed 16-bit).
const sampleWidth = 2

// Decode converts a base64-encoded payload to raw bytes. Pure and
// deterministic: identical input yields identical output.
func Decode(payload string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return raw, nil
}

// Buffer holds decoded, normalized PCM audio ready for playback.
type Buffer struct {
	samples    [][2]float64
	sampleRate int
	channels   int
}

// DecodeAudioData interprets raw little-endian 16-bit PCM at the given sample
// rate and channel count, normalizing integer samples to [-1, 1). Mono input
// is duplicated to both output channels.
func DecodeAudioData(raw []byte, sampleRate, channels int) (*Buffer, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: rate=%d channels=%d", ErrUnsupportedAudioFormat, sampleRate, channels)
	}
	frameSize := sampleWidth * channels
	if len(raw)%frameSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of frame size %d", ErrUnsupportedAudioFormat, len(raw), frameSize)
	}

	frames := len(raw) / frameSize
	samples := make([][2]float64, frames)
	for i := 0; i < frames; i++ {
		base := i * frameSize
		left := normalize(int16(binary.LittleEndian.Uint16(raw[base:])))
		right := left
		if channels > 1 {
			right = normalize(int16(binary.LittleEndian.Uint16(raw[base+sampleWidth:])))
		}
		samples[i] = [2]float64{left, right}
	}

	return &Buffer{samples: samples, sampleRate: sampleRate, channels: channels}, nil
}

func normalize(s int16) float64 {
	return float64(s) / 32768.0
}

// SampleRate returns the buffer's sample rate in Hz.
func (b *Buffer) SampleRate() int {
	return b.sampleRate
}

// Channels returns the source channel count.
func (b *Buffer) Channels() int {
	return b.channels
}

// Len returns the number of frames.
func (b *Buffer) Len() int {
	return len(b.samples)
}

// At returns the normalized stereo sample at frame i.
func (b *Buffer) At(i int) [2]float64 {
	return b.samples[i]
}

// Duration returns the playback duration of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b.sampleRate == 0 {
		return 0
	}
	return time.Duration(len(b.samples)) * time.Second / time.Duration(b.sampleRate)
}
