package stream

import (
	"io"
	"testing"

	"padterm/constants"
	"padterm/protocol"
)

func TestStreamWriteRead(t *testing.T) {
	s := New()

	go func() {
		_, _ = s.Write([]byte("hello"))
	}()

	buf := make([]byte, 16)
	n, err := s.Read(buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(buf[:n]) != "hello" {
		t.Errorf("Read() = %q, want %q", buf[:n], "hello")
	}
}

func TestStreamWriteFrame(t *testing.T) {
	s := New()

	go func() {
		if _, err := s.WriteFrame(constants.FRAME, []byte("payload")); err != nil {
			t.Errorf("WriteFrame() error = %v", err)
		}
	}()

	buf := make([]byte, 64)
	n, err := s.Read(buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	cmd, data, err := protocol.Decode(buf[:n])
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if cmd != constants.FRAME || string(data) != "payload" {
		t.Errorf("frame = %v %q, want FRAME %q", cmd, data, "payload")
	}
}

func TestStreamClose(t *testing.T) {
	s := New()
	_ = s.Close()

	if _, err := s.Write([]byte("x")); err != io.EOF {
		t.Errorf("Write() after close error = %v, want EOF", err)
	}
	if _, err := s.Read(make([]byte, 4)); err != io.EOF {
		t.Errorf("Read() after close error = %v, want EOF", err)
	}
}
