package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// InterruptHandler turns SIGINT/SIGTERM into cooperative cancellation. A second
// signal exits immediately.
type InterruptHandler struct {
	cancel      context.CancelFunc
	onInterrupt func()
	out         io.Writer
	sigChan     chan os.Signal
	done        chan struct{}
	interrupted atomic.Bool
}

// NewInterruptHandler creates a handler that calls onInterrupt (optional) and cancel on the first signal
func NewInterruptHandler(cancel context.CancelFunc, onInterrupt func(), out io.Writer) *InterruptHandler {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	return &InterruptHandler{
		cancel:      cancel,
		onInterrupt: onInterrupt,
		out:         out,
		sigChan:     sigChan,
		done:        make(chan struct{}),
	}
}

// Start starts the interrupt handler in a goroutine
func (h *InterruptHandler) Start() {
	go h.handleSignals()
}

func (h *InterruptHandler) handleSignals() {
	select {
	case <-h.sigChan:
	case <-h.done:
		return
	}
	h.interrupted.Store(true)
	fmt.Fprintln(h.out, "\n\n⚠️  Interrupted, cancelling generation...")
	if h.onInterrupt != nil {
		h.onInterrupt()
	}
	h.cancel()

	select {
	case <-h.sigChan:
		os.Exit(130) // standard exit code for SIGINT
	case <-h.done:
	}
}

// IsInterrupted returns whether a signal was received
func (h *InterruptHandler) IsInterrupted() bool {
	return h.interrupted.Load()
}

// Stop stops the signal handling
func (h *InterruptHandler) Stop() {
	signal.Stop(h.sigChan)
	close(h.done)
}
