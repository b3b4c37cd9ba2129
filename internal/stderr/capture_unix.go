//go:build !windows

package stderr

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"syscall"
)

// Start redirects fd 2 into a pipe. Call it before the speaker is
// initialized. On error nothing is redirected.
func Start(logger *slog.Logger) (*Capture, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	fd := int(os.Stderr.Fd())
	orig, err := syscall.Dup(fd)
	if err != nil {
		r.Close()
		w.Close()
		return nil, fmt.Errorf("dup stderr: %w", err)
	}
	if err := syscall.Dup2(int(w.Fd()), fd); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		return nil, fmt.Errorf("redirect stderr: %w", err)
	}

	restore := func() error {
		// fd 2 and w both hold the write end; the reader sees EOF once
		// both are gone.
		errRestore := syscall.Dup2(orig, fd)
		return errors.Join(errRestore, syscall.Close(orig), w.Close())
	}
	return newCapture(r, restore, logger), nil
}
