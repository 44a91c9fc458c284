// Package encoder contains the transport encoding applied to continuation
// cursors.
package encoder

// Encoder turns raw cursor bytes into a wire-safe string and back.
type Encoder interface {
	Decode(string) ([]byte, error)
	Encode([]byte) (string, error)
}

// NoopEncoder passes data through unchanged. Useful in tests.
type NoopEncoder struct{}

var _ Encoder = (*NoopEncoder)(nil)

func NewNoopEncoder() *NoopEncoder {
	return &NoopEncoder{}
}

func (e NoopEncoder) Decode(s string) ([]byte, error) {
	return []byte(s), nil
}

func (e NoopEncoder) Encode(data []byte) (string, error) {
	return string(data), nil
}
