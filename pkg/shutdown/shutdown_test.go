package shutdown

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestWithSignalsCancelsOnSignal(t *testing.T) {
	ctx, cancel := withSignals(context.Background(), syscall.SIGUSR1)
	defer cancel()

	p, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatalf("find process: %v", err)
	}
	if err := p.Signal(syscall.SIGUSR1); err != nil {
		t.Fatalf("signal: %v", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled after signal")
	}
}

func TestWithSignalsParentCancel(t *testing.T) {
	parent, parentCancel := context.WithCancel(context.Background())
	ctx, cancel := WithSignals(parent)
	defer cancel()

	parentCancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled with parent")
	}
}
