// Package stderr captures output the audio backend writes straight to file
// descriptor 2 (ALSA through oto) so it does not tear the now-playing view.
package stderr

import (
	"bufio"
	"io"
	"log/slog"
	"strings"
)

const lineBuffer = 100

// Capture is an active redirection of fd 2. Lines arrive on Lines until
// Stop restores the terminal.
type Capture struct {
	lines   chan string
	done    chan struct{}
	restore func() error
}

// Lines receives captured lines, trimmed and non-empty. It is closed once
// the capture stops and the pipe is drained.
func (c *Capture) Lines() <-chan string {
	return c.lines
}

// Stop restores fd 2 and waits for buffered output to be forwarded.
// Safe to call more than once.
func (c *Capture) Stop() error {
	if c.restore == nil {
		return nil
	}
	err := c.restore()
	c.restore = nil
	<-c.done
	return err
}

// forward copies lines from r to lines and logs each one. Lines are dropped
// when the reader falls behind. It closes lines and done when r ends.
func forward(r io.Reader, lines chan<- string, done chan<- struct{}, logger *slog.Logger) {
	defer close(done)
	defer close(lines)
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		logger.Debug("audio backend", "line", line)
		select {
		case lines <- line:
		default:
		}
	}
}

func newCapture(r io.Reader, restore func() error, logger *slog.Logger) *Capture {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Capture{
		lines:   make(chan string, lineBuffer),
		done:    make(chan struct{}),
		restore: restore,
	}
	go forward(r, c.lines, c.done, logger.With("component", "stderr"))
	return c
}
