package encoder

import "encoding/base64"

// Base64Encoder implements the Encoder interface with URL-safe base64, so
// that cursors survive query strings without escaping.
type Base64Encoder struct{}

var _ Encoder = (*Base64Encoder)(nil)

// NewBase64Encoder constructs an Encoder that implements a base64 encoding
// as specified by the encoding/base64 package.
func NewBase64Encoder() *Base64Encoder {
	return &Base64Encoder{}
}

// Decode rejects non-canonical encodings. Without strict trailing-bit
// checking, two distinct token strings could decode to identical bytes and a
// flipped final character would sail through tamper detection.
func (e *Base64Encoder) Decode(s string) ([]byte, error) {
	return base64.URLEncoding.Strict().DecodeString(s)
}

func (e *Base64Encoder) Encode(data []byte) (string, error) {
	return base64.URLEncoding.EncodeToString(data), nil
}
