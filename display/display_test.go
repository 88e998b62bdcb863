package display

import (
	"bytes"
	"strings"
	"testing"

	"padterm/pad"
)

func TestFlushWritesLocalTerminal(t *testing.T) {
	var out bytes.Buffer

	d, err := New(4, 10, &out)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	p, err := d.Screen.NewPad(4, 10)
	if err != nil {
		t.Fatalf("NewPad: %v", err)
	}
	err = p.PutRune('A')
	if err != nil {
		t.Fatalf("PutRune: %v", err)
	}

	err = d.Screen.Refresh(p, 0, 0, 0, 0, 3, 9)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if !strings.Contains(out.String(), "A") {
		t.Errorf("flush output missing pad content: %q", out.String())
	}
}

func TestFlushNothingDirty(t *testing.T) {
	var out bytes.Buffer

	d, err := New(4, 10, &out)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = d.Flush(d.Screen.Virtual())
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output for a clean screen, got %q", out.String())
	}
}

func TestResizeQueuesRepaint(t *testing.T) {
	var out bytes.Buffer

	d, err := New(4, 10, &out)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = d.Resize(6, 12)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if d.Screen.Rows() != 6 || d.Screen.Cols() != 12 {
		t.Fatalf("expected 6x12, got %dx%d", d.Screen.Rows(), d.Screen.Cols())
	}

	p, err := d.Screen.NewPad(6, 12)
	if err != nil {
		t.Fatalf("NewPad: %v", err)
	}
	err = d.Screen.Refresh(p, 0, 0, 0, 0, 5, 11)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if !strings.Contains(out.String(), "\033[2J") {
		t.Errorf("expected full repaint after resize, got %q", out.String())
	}
}

func TestStreamingGate(t *testing.T) {
	d, err := New(4, 10, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if d.Streaming() {
		t.Fatal("streaming should start disabled")
	}
	d.SetStreaming(true)
	if !d.Streaming() {
		t.Fatal("streaming should be enabled")
	}
}

func TestFlushIsPadFlusher(t *testing.T) {
	var _ pad.Flusher = &Display{}
}
