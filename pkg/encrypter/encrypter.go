// Package encrypter provides authenticated encryption for continuation
// cursors. Authentication is the load-bearing property: a forged or
// bit-flipped cursor must fail outright, never decode to garbage.
package encrypter

// Encrypter seals and opens raw cursor payload bytes.
type Encrypter interface {
	Decrypt([]byte) ([]byte, error)
	Encrypt([]byte) ([]byte, error)
}

// NoopEncrypter passes data through unchanged. Useful in tests.
type NoopEncrypter struct{}

var _ Encrypter = (*NoopEncrypter)(nil)

func NewNoopEncrypter() *NoopEncrypter {
	return &NoopEncrypter{}
}

func (e *NoopEncrypter) Decrypt(data []byte) ([]byte, error) {
	return data, nil
}

func (e *NoopEncrypter) Encrypt(data []byte) ([]byte, error) {
	return data, nil
}
