package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

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

func TestSpinnerSilentWithoutTerminal(t *testing.T) {
	var out syncBuffer
	s := newSpinner("searching", &out, false)
	s.Start()
	s.Stop()
	if out.String() != "" {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestSpinnerClearsLineOnStop(t *testing.T) {
	var out syncBuffer
	s := newSpinner("searching", &out, true)
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()
	s.Stop()

	got := out.String()
	if !strings.Contains(got, "searching") {
		t.Fatalf("expected spinner message, got %q", got)
	}
	if !strings.HasSuffix(got, "\r\033[K") {
		t.Fatalf("expected line clear at the end, got %q", got)
	}
}
