package playback

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"
)

// FFPlaySink renders PCM16 to the default output device through an ffplay
// subprocess reading s16le from stdin.
type FFPlaySink struct {
	command    string
	sampleRate int

	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	waitErr <-chan error
	closed  bool
}

func NewFFPlaySink(command string, sampleRate int) *FFPlaySink {
	if command == "" {
		command = "ffplay"
	}
	if sampleRate <= 0 {
		sampleRate = 24000
	}
	return &FFPlaySink{command: command, sampleRate: sampleRate}
}

// Suspended reports whether the output process is not currently running.
// The player resumes a suspended sink before rendering the next chunk.
func (s *FFPlaySink) Suspended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd == nil
}

// Resume spawns a fresh output process if none is running.
func (s *FFPlaySink) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("sink is closed")
	}
	if s.cmd != nil {
		return nil
	}
	return s.spawnLocked()
}

func (s *FFPlaySink) Write(pcm []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("sink is closed")
	}
	if s.cmd == nil {
		if err := s.spawnLocked(); err != nil {
			return err
		}
	}

	if _, err := s.stdin.Write(pcm); err != nil {
		// The process went away mid-write; mark the sink suspended so
		// the next chunk respawns it.
		s.dropProcessLocked()
		return fmt.Errorf("audio output write failed: %w", err)
	}
	return nil
}

func (s *FFPlaySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if s.cmd == nil {
		return nil
	}

	_ = s.stdin.Close()
	select {
	case <-s.waitErr:
	case <-time.After(1200 * time.Millisecond):
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		<-s.waitErr
	}
	s.cmd = nil
	s.stdin = nil
	return nil
}

func (s *FFPlaySink) spawnLocked() error {
	args := []string{
		"-hide_banner",
		"-loglevel", "warning",
		"-nodisp",
		"-f", "s16le",
		"-ar", strconv.Itoa(s.sampleRate),
		"-ch_layout", "mono",
		"-i", "-",
	}

	cmd := exec.Command(s.command, args...)
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to create ffplay stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffplay: %w", err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	s.cmd = cmd
	s.stdin = stdin
	s.waitErr = waitErr
	return nil
}

func (s *FFPlaySink) dropProcessLocked() {
	if s.stdin != nil {
		_ = s.stdin.Close()
	}
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	s.cmd = nil
	s.stdin = nil
}
