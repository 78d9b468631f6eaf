package terminal

import (
	"encoding/json"
	"os"
	"testing"
	"time"
)

// Start/Stop require a real tty (term.MakeRaw fails on a pipe), so these
// tests exercise the Render/Flush buffering contract only.

func newPipeDriver(t *testing.T) (*ANSIDriver, *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	t.Cleanup(func() { r.Close(); w.Close() })
	return New(r, w), r
}

func TestRenderBuffersWithoutWriting(t *testing.T) {
	d, r := newPipeDriver(t)

	payload, _ := json.Marshal(map[string]any{"write": "hi", "x": 2, "y": 3})
	if err := d.Render(payload); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if d.buf.Len() == 0 {
		t.Fatal("expected Render to buffer output, buffer is empty")
	}

	// Nothing should have reached the pipe yet.
	r.SetReadDeadline(time.Now().Add(20 * time.Millisecond))
	buf := make([]byte, 1)
	if _, err := r.Read(buf); err == nil {
		t.Fatal("expected no data on the pipe before Flush")
	}
}

func TestFlushWritesBufferedContentAndResets(t *testing.T) {
	d, r := newPipeDriver(t)

	payload, _ := json.Marshal(map[string]any{"write": "hello", "x": 0, "y": 0})
	if err := d.Render(payload); err != nil {
		t.Fatalf("Render: %v", err)
	}

	done := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 64)
		n, _ := r.Read(buf)
		done <- buf[:n]
	}()

	if err := d.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	got := <-done
	if len(got) == 0 {
		t.Fatal("expected Flush to write buffered bytes to out")
	}
	if d.buf.Len() != 0 {
		t.Fatal("expected Flush to reset the buffer")
	}
}

func TestRenderRejectsMalformedPayload(t *testing.T) {
	d, _ := newPipeDriver(t)
	if err := d.Render(json.RawMessage(`not json`)); err == nil {
		t.Fatal("expected error decoding malformed render payload")
	}
}

func TestSizeFallsBackWhenNotATerminal(t *testing.T) {
	d, _ := newPipeDriver(t)
	w, h := d.Size()
	if w != 80 || h != 24 {
		t.Fatalf("expected fallback size 80x24 on a non-tty, got %dx%d", w, h)
	}
}
