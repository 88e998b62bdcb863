// Package stream implements a blocking broadcast byte stream: one writer,
// readers that sleep until data arrives. Used to decouple the refresh path
// from slow websocket viewers.
package stream

import (
	"bytes"
	"io"
	"sync"

	"padterm/protocol"
)

// Stream is a byte stream with blocking reads.
type Stream struct {
	buffer bytes.Buffer
	mu     sync.Mutex
	cond   *sync.Cond
	closed bool
}

// New creates a new instance of Stream.
func New() *Stream {
	s := &Stream{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Write implements the io.Writer interface.
func (s *Stream) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, io.EOF
	}

	n, err = s.buffer.Write(p)
	s.cond.Broadcast() // notify all readers
	return n, err
}

// WriteFrame frames cmd and payload with the wire protocol and appends the
// package to the stream.
func (s *Stream) WriteFrame(cmd byte, payload []byte) (n int, err error) {
	buff := make([]byte, len(payload)+protocol.HeaderSize+protocol.TrailerSize)
	n, err = protocol.Encode(buff, cmd, payload)
	if err != nil {
		return 0, err
	}
	return s.Write(buff[:n])
}

// Read implements the io.Reader interface.
// Blocks until data is available or the stream is closed.
func (s *Stream) Read(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.buffer.Len() == 0 {
		if s.closed {
			return 0, io.EOF
		}
		s.cond.Wait() // wait for data to be available
	}

	return s.buffer.Read(p)
}

// Close marks the stream as closed.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.cond.Broadcast() // notify all readers
	return nil
}
