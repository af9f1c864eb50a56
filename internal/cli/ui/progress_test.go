package ui

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a buffer shared with the spinner goroutine
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerStartStop(t *testing.T) {
	var out syncBuffer
	spinner := NewSpinner(&out, SpinnerOptions{Message: "Loading", NoColor: true, Interval: 5 * time.Millisecond})

	spinner.Start()
	spinner.Start()
	time.Sleep(30 * time.Millisecond)
	spinner.UpdateMessage("Checking")
	time.Sleep(30 * time.Millisecond)
	spinner.Stop()

	output := out.String()
	if !strings.Contains(output, "Loading") || !strings.Contains(output, "Checking") {
		t.Errorf("Expected both messages in %q", output)
	}
	if !strings.HasSuffix(output, "\r\033[K") {
		t.Errorf("Expected the line to be cleared, got %q", output)
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var out syncBuffer
	spinner := NewSpinner(&out, SpinnerOptions{NoColor: true})

	spinner.Stop()
	if out.String() != "" {
		t.Errorf("Stop without Start should write nothing, got %q", out.String())
	}

	spinner.Start()
	spinner.Stop()
	spinner.Stop()
}

func TestSpinnerDefaultInterval(t *testing.T) {
	spinner := NewSpinner(&bytes.Buffer{}, SpinnerOptions{})
	if spinner.interval != 100*time.Millisecond {
		t.Errorf("Expected 100ms, got %v", spinner.interval)
	}
}

func TestWithSpinner(t *testing.T) {
	var out syncBuffer
	err := WithSpinner(&out, "Loading 3 files", true, func() error { return nil })
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Loading 3 files (") {
		t.Errorf("Expected a success line, got %q", out.String())
	}
}

func TestWithSpinnerError(t *testing.T) {
	var out syncBuffer
	boom := errors.New("boom")
	err := WithSpinner(&out, "Loading", true, func() error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("Expected the callback error, got %v", err)
	}
	if !strings.Contains(out.String(), "❌ Loading failed") {
		t.Errorf("Expected a failure line, got %q", out.String())
	}
}
