package protocol

import (
	"encoding/binary"
	"fmt"
)

/*
Protocol format
XYYYYZZZZZZ...ZZZZZZCCCC

Where:

X: command byte
YYYY: data length (32 bits, big endian)
ZZZZZZ...ZZZZZZ: data (array of bytes)
CCCC: checksum (FNV-1a, 32 bits, big endian)

The checksum is calculated over the command
byte, the data length and the data itself.
*/

const (
	HeaderSize  = 5 // command byte + data length
	TrailerSize = 4

	MaxDataSize    = 256 * 1024
	MaxPackageSize = HeaderSize + MaxDataSize + TrailerSize
)

var (
	ErrInvalidSize     = fmt.Errorf("invalid data size")
	ErrInvalidChecksum = fmt.Errorf("invalid checksum")
)

func checksum(data []byte) uint32 {
	const (
		offsetBasis = uint32(2166136261)
		prime       = 16777619
	)

	h := offsetBasis
	for _, b := range data {
		h ^= uint32(b)
		h *= prime
	}
	return h
}

// Encode frames cmd and data into dest and returns the package length.
func Encode(dest []byte, cmd byte, data []byte) (int, error) {
	lenData := len(data)
	if lenData > MaxDataSize {
		return 0, ErrInvalidSize
	}
	if len(dest) < lenData+HeaderSize+TrailerSize {
		return 0, ErrInvalidSize
	}

	dest[0] = cmd
	binary.BigEndian.PutUint32(dest[1:], uint32(lenData))
	copy(dest[HeaderSize:], data)
	h := checksum(dest[:HeaderSize+lenData])
	binary.BigEndian.PutUint32(dest[HeaderSize+lenData:], h)
	return HeaderSize + lenData + TrailerSize, nil
}

// Decode verifies one framed package and returns its command and payload.
// The payload aliases src.
func Decode(src []byte) (cmd byte, data []byte, err error) {
	if len(src) < HeaderSize+TrailerSize {
		return 0, nil, ErrInvalidSize
	}
	lenData := int(binary.BigEndian.Uint32(src[1:]))
	if lenData > MaxDataSize {
		return 0, nil, ErrInvalidSize
	}
	if len(src) < HeaderSize+lenData+TrailerSize {
		return 0, nil, ErrInvalidSize
	}
	h := binary.BigEndian.Uint32(src[HeaderSize+lenData:])
	if h != checksum(src[:HeaderSize+lenData]) {
		return 0, nil, ErrInvalidChecksum
	}
	return src[0], src[HeaderSize : HeaderSize+lenData], nil
}
