package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func Test_checksum(t *testing.T) {
	type args struct {
		data []byte
	}
	tests := []struct {
		name string
		args args
		want uint32
	}{
		{"empty", args{[]byte{}}, 2166136261},
		{"a", args{[]byte{'a'}}, 3826002220},
		{"ab", args{[]byte{'a', 'b'}}, 1294271946},
		{"abc", args{[]byte{'a', 'b', 'c'}}, 440920331},
		{"abcd", args{[]byte{'a', 'b', 'c', 'd'}}, 3459545533},
		{"abcde", args{[]byte{'a', 'b', 'c', 'd', 'e'}}, 1956368136},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checksum(tt.args.data); got != tt.want {
				t.Errorf("checksum(%v) = %v, want %v",
					string(tt.args.data), got, tt.want)
			}
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	payload := []byte("\033[1;1Hhello")
	buf := make([]byte, len(payload)+HeaderSize+TrailerSize)

	n, err := Encode(buf, 0x1, payload)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if n != len(payload)+HeaderSize+TrailerSize {
		t.Errorf("Encode() = %v, want %v", n,
			len(payload)+HeaderSize+TrailerSize)
	}

	cmd, data, err := Decode(buf[:n])
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if cmd != 0x1 {
		t.Errorf("Decode() cmd = %v, want 0x1", cmd)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("Decode() data = %q, want %q", data, payload)
	}
}

func TestDecodeCorrupted(t *testing.T) {
	payload := []byte("frame")
	buf := make([]byte, 64)
	n, err := Encode(buf, 0x2, payload)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	buf[HeaderSize] ^= 0xFF
	if _, _, err := Decode(buf[:n]); !errors.Is(err, ErrInvalidChecksum) {
		t.Errorf("Decode() error = %v, want ErrInvalidChecksum", err)
	}

	if _, _, err := Decode(buf[:HeaderSize]); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Decode() error = %v, want ErrInvalidSize", err)
	}
}

func TestEncodeSmallBuffer(t *testing.T) {
	buf := make([]byte, 4)
	if _, err := Encode(buf, 0x1, []byte("too big")); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Encode() error = %v, want ErrInvalidSize", err)
	}
}
