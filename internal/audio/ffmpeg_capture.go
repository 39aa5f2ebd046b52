package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"lingocall/internal/ports"
)

// Startup and shutdown windows for the capture subprocess. ffmpeg that
// cannot open its input device dies almost immediately, so a short spinup
// watch catches that before the caller gets a dead pipe. On stop the
// process gets the interrupt grace to flush, then is killed.
const (
	captureSpinup  = 300 * time.Millisecond
	interruptGrace = 1500 * time.Millisecond
)

// FFMPEGCapture acquires the microphone through an ffmpeg subprocess.
// Samples arrive on stdout as little-endian float32 in [-1, 1] at the
// configured rate. Denoise and loudness normalization run inside the
// ffmpeg filter graph, so blocks reach the translation stream
// speech-ready.
type FFMPEGCapture struct {
	command string
}

func NewFFMPEGCapture(command string) *FFMPEGCapture {
	if command == "" {
		command = "ffmpeg"
	}
	return &FFMPEGCapture{command: command}
}

func captureArgs(cfg ports.AudioConfig) []string {
	return []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", cfg.InputFormat,
		"-i", cfg.InputDevice,
		"-af", "afftdn,dynaudnorm",
		"-ac", strconv.Itoa(cfg.Channels),
		"-ar", strconv.Itoa(cfg.SampleRate),
		"-f", "f32le",
		"-",
	}
}

func (c *FFMPEGCapture) Start(ctx context.Context, cfg ports.AudioConfig) (ports.AudioSession, error) {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = "pulse"
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = "default"
	}

	cmd := exec.CommandContext(ctx, c.command, captureArgs(cfg)...)
	var diag bytes.Buffer
	cmd.Stderr = &diag

	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg spawn: %w", err)
	}

	exited := make(chan error, 1)
	go func() {
		exited <- cmd.Wait()
		close(exited)
	}()

	select {
	case err := <-exited:
		detail := strings.TrimSpace(diag.String())
		if err != nil && detail != "" {
			return nil, fmt.Errorf("ffmpeg quit before capture began: %w: %s", err, detail)
		}
		if err != nil {
			return nil, fmt.Errorf("ffmpeg quit before capture began: %w", err)
		}
		return nil, errors.New("ffmpeg quit before capture began")
	case <-time.After(captureSpinup):
	}

	return &micProcess{
		out:    out,
		diag:   &diag,
		proc:   cmd.Process,
		exited: exited,
	}, nil
}

// micProcess is a live ffmpeg capture. Reads stream raw samples straight
// from the subprocess.
type micProcess struct {
	out  io.ReadCloser
	diag *bytes.Buffer

	proc   *os.Process
	exited <-chan error

	once    sync.Once
	stopped error
}

func (p *micProcess) Read(b []byte) (int, error) {
	return p.out.Read(b)
}

func (p *micProcess) Close() error {
	return p.Stop()
}

func (p *micProcess) Stop() error {
	p.once.Do(func() {
		if p.proc != nil {
			_ = p.proc.Signal(os.Interrupt)
		}
		p.stopped = p.awaitExit()

		if err := p.out.Close(); err != nil && !errors.Is(err, os.ErrClosed) && p.stopped == nil {
			p.stopped = err
		}
		if p.stopped != nil {
			if detail := strings.TrimSpace(p.diag.String()); detail != "" {
				p.stopped = fmt.Errorf("%w: %s", p.stopped, detail)
			}
		}
	})
	return p.stopped
}

// awaitExit waits for the interrupted process to finish, escalating to kill
// when the grace period runs out. A nonzero exit status is how ffmpeg
// acknowledges the interrupt, not a failure.
func (p *micProcess) awaitExit() error {
	select {
	case err, ok := <-p.exited:
		if !ok {
			return nil
		}
		return ignoreExitStatus(err)
	case <-time.After(interruptGrace):
	}

	if p.proc != nil {
		_ = p.proc.Kill()
	}
	if err, ok := <-p.exited; ok {
		return ignoreExitStatus(err)
	}
	return nil
}

func ignoreExitStatus(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}
