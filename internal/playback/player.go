// Package playback plays an open-ended stream of PCM16 chunks as one
// seamless audio stream, independent of arrival timing.
package playback

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	mp3 "github.com/hajimehoshi/go-mp3"

	"lingocall/internal/audio"
)

// Sink is the underlying audio output device.
type Sink interface {
	Write(pcm []byte) error
	Suspended() bool
	Resume() error
	Close() error
}

type chunk struct {
	id  string
	pcm []byte
}

// Player queues arriving PCM16 chunks and renders them in order on a single
// writer goroutine, so concurrent producers are serialized naturally.
type Player struct {
	sink       Sink
	sampleRate int
	logger     *slog.Logger

	queue chan chunk
	done  chan struct{}

	closeOnce sync.Once
}

func NewPlayer(sink Sink, sampleRate int, logger *slog.Logger) *Player {
	if sampleRate <= 0 {
		sampleRate = 24000
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Player{
		sink:       sink,
		sampleRate: sampleRate,
		logger:     logger,
		queue:      make(chan chunk, 64),
		done:       make(chan struct{}),
	}
	go p.run()
	return p
}

// Add16BitPCM appends one chunk to the playback queue. When the queue is
// saturated the oldest pending chunk is dropped; playback is live and a late
// chunk is worse than a missing one.
func (p *Player) Add16BitPCM(samples []int16, chunkID string) {
	c := chunk{id: chunkID, pcm: audio.Int16ToBytes(samples)}
	for {
		select {
		case <-p.done:
			return
		case p.queue <- c:
			return
		default:
		}

		select {
		case stale := <-p.queue:
			p.logger.Warn("playback queue saturated, dropping chunk", "chunkId", stale.id)
		default:
		}
	}
}

// ResumeIfSuspended recovers a suspended output device. The before/after
// states are logged for diagnosability.
func (p *Player) ResumeIfSuspended() {
	if !p.sink.Suspended() {
		return
	}
	p.logger.Info("audio output suspended, resuming", "stateBefore", "suspended")
	if err := p.sink.Resume(); err != nil {
		p.logger.Warn("audio output resume failed", "error", err)
		return
	}
	p.logger.Info("audio output resumed", "stateAfter", sinkState(p.sink))
}

// PlayMP3 decodes an MP3 stream (ring and connect tones) and renders it
// through the same queue, downmixed to mono and resampled to the player
// rate.
func (p *Player) PlayMP3(r io.Reader) error {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return fmt.Errorf("mp3 decode error: %w", err)
	}
	if dec.SampleRate() <= 0 {
		return errors.New("mp3 reported an invalid sample rate")
	}

	rs := newResampler(dec.SampleRate(), p.sampleRate)
	buf := make([]byte, 4096)
	for {
		n, err := dec.Read(buf)
		if n > 0 {
			// go-mp3 always emits 16-bit interleaved stereo.
			samples := audio.DownmixStereo(audio.BytesToInt16(buf[:n]))
			if out := rs.push(samples); len(out) > 0 {
				p.Add16BitPCM(out, uuid.NewString())
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("mp3 read error: %w", err)
		}
	}
}

// Interrupt best-effort drops any queued chunks. Failures are logged, never
// surfaced.
func (p *Player) Interrupt() {
	for {
		select {
		case c := <-p.queue:
			p.logger.Debug("interrupt dropped pending chunk", "chunkId", c.id)
		default:
			return
		}
	}
}

// Close stops the writer and releases the output device.
func (p *Player) Close() error {
	p.closeOnce.Do(func() {
		p.Interrupt()
		close(p.done)
	})
	return p.sink.Close()
}

func (p *Player) run() {
	for {
		select {
		case <-p.done:
			return
		case c := <-p.queue:
			p.ResumeIfSuspended()
			if err := p.sink.Write(c.pcm); err != nil {
				p.logger.Warn("playback write failed", "chunkId", c.id, "error", err)
			}
		}
	}
}

func sinkState(s Sink) string {
	if s.Suspended() {
		return "suspended"
	}
	return "running"
}
