// Package audio plays decoded narration through the system speaker.
package audio

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"

	"snaptour/pkg/pcm"
)

// Service defines the interface for narration playback control.
type Service interface {
	// Play starts playback of a decoded buffer, stopping any current
	// playback first. onComplete fires when playback finishes naturally.
	Play(buf *pcm.Buffer, onComplete func()) error
	// Stop stops current playback.
	Stop()
	// IsPlaying returns true if audio is currently playing.
	IsPlaying() bool
}

// Player implements Service using gopxl/beep. At most one stream plays at a
// time; starting a new one stops the previous.
type Player struct {
	mu                 sync.Mutex
	playing            bool
	generation         int
	speakerInitialized bool
	targetRate         beep.SampleRate
}

// New creates a new Player.
func New() *Player {
	return &Player{}
}

// Play starts playback of a decoded buffer.
func (p *Player) Play(buf *pcm.Buffer, onComplete func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	if err := p.ensureSpeakerInitialized(); err != nil {
		return err
	}

	p.generation++
	gen := p.generation
	p.playing = true

	src := &bufferStreamer{buf: buf}
	resampled := beep.Resample(3, beep.SampleRate(buf.SampleRate()), p.targetRate, src)

	speaker.Play(beep.Seq(resampled, beep.Callback(func() {
		go func() {
			p.mu.Lock()
			// A newer Play/Stop already superseded this stream
			if p.generation == gen {
				p.playing = false
			}
			p.mu.Unlock()

			if onComplete != nil {
				onComplete()
			}
		}()
	})))

	slog.Debug("Audio: playback started", "duration", buf.Duration(), "rate", buf.SampleRate())
	return nil
}

// Stop stops current playback.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.playing {
		speaker.Clear()
		p.generation++
		p.playing = false
	}
}

// IsPlaying returns true if audio is currently playing.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *Player) ensureSpeakerInitialized() error {
	const targetSampleRate = 48000
	if !p.speakerInitialized {
		err := speaker.Init(beep.SampleRate(targetSampleRate), beep.SampleRate(targetSampleRate).N(time.Second/10))
		if err != nil {
			slog.Error("Failed to initialize speaker", "error", err)
			return err
		}
		p.speakerInitialized = true
		p.targetRate = beep.SampleRate(targetSampleRate)
	}
	return nil
}

// bufferStreamer adapts a pcm.Buffer to beep.Streamer.
type bufferStreamer struct {
	buf *pcm.Buffer
	pos int
}

func (s *bufferStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= s.buf.Len() {
		return 0, false
	}
	for n < len(samples) && s.pos < s.buf.Len() {
		samples[n] = s.buf.At(s.pos)
		s.pos++
		n++
	}
	return n, true
}

func (s *bufferStreamer) Err() error {
	return nil
}
