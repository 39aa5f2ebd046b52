package audio

import (
	"context"
	"errors"
	"fmt"
	"io"

	"lingocall/internal/ports"
)

// Graph turns a live audio source into fixed-size PCM16 blocks. The source
// is either an externally supplied stream (the remote participant's audio,
// whose lifecycle the caller owns) or a freshly acquired microphone session
// owned by the graph.
type Graph struct {
	source    io.Reader
	owned     ports.AudioSession
	blockSize int
	buf       []byte
}

// OpenGraph resolves the capture source. When external is nil a microphone
// session is acquired through capture and owned by the graph.
func OpenGraph(ctx context.Context, capture ports.AudioCapture, external io.Reader, cfg ports.AudioConfig) (*Graph, error) {
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = 4096
	}

	g := &Graph{
		blockSize: cfg.BlockSize,
		buf:       make([]byte, cfg.BlockSize*4),
	}

	if external != nil {
		g.source = external
		return g, nil
	}

	session, err := capture.Start(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("microphone acquisition failed: %w", err)
	}
	g.source = session
	g.owned = session
	return g, nil
}

// NextBlock blocks until one full capture block is available and returns it
// converted to PCM16. A truncated trailing block at end of stream is dropped
// and reported as io.EOF.
func (g *Graph) NextBlock() ([]int16, error) {
	if _, err := io.ReadFull(g.source, g.buf); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	return PCM16FromFloat32(Float32FromBytes(g.buf)), nil
}

// Close stops a self-acquired microphone session. An externally supplied
// source is left untouched; its owner closes it.
func (g *Graph) Close() error {
	if g.owned == nil {
		return nil
	}
	return g.owned.Stop()
}
