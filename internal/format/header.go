// Package format provides the header shared by gramsift's binary files.
package format

import "errors"

// Header layout (4 bytes):
//
//	signature (1 byte, 'g' = 0x67)
//	type (1 byte, identifies format)
//	version (1 byte)
//	flags (1 byte)
//
// Type codes:
//
//	'x' = gram index
const (
	Signature  = 'g'
	HeaderSize = 4

	TypeGramIndex = 'x'

	// FlagComplete indicates the file was fully written (not a partial/crashed write).
	FlagComplete = 0x01
	// FlagCompressed indicates the payload after the header is a zstd stream.
	FlagCompressed = 0x02
)

var (
	ErrHeaderTooSmall    = errors.New("header too small")
	ErrSignatureMismatch = errors.New("signature mismatch")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrVersionMismatch   = errors.New("version mismatch")
	ErrIncomplete        = errors.New("file was not completely written")
)

// Header represents the common 4-byte header.
type Header struct {
	Type    byte
	Version byte
	Flags   byte
}

// Has reports whether every bit of flag is set.
func (h Header) Has(flag byte) bool {
	return h.Flags&flag == flag
}

// Encode writes the header to a 4-byte array.
func (h Header) Encode() [HeaderSize]byte {
	return [HeaderSize]byte{Signature, h.Type, h.Version, h.Flags}
}

// Decode reads a header from the given buffer.
// Returns ErrHeaderTooSmall if buf is less than HeaderSize bytes.
// Returns ErrSignatureMismatch if the signature byte is not 'g'.
func Decode(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, ErrHeaderTooSmall
	}
	if buf[0] != Signature {
		return Header{}, ErrSignatureMismatch
	}
	return Header{
		Type:    buf[1],
		Version: buf[2],
		Flags:   buf[3],
	}, nil
}

// DecodeAndValidate reads a header and checks type, version and the
// FlagComplete bit.
func DecodeAndValidate(buf []byte, expectedType, expectedVersion byte) (Header, error) {
	h, err := Decode(buf)
	if err != nil {
		return Header{}, err
	}
	if h.Type != expectedType {
		return Header{}, ErrTypeMismatch
	}
	if h.Version != expectedVersion {
		return Header{}, ErrVersionMismatch
	}
	if !h.Has(FlagComplete) {
		return Header{}, ErrIncomplete
	}
	return h, nil
}
