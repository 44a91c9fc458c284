package encrypter

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// keyDerivationSalt is fixed on purpose: every server instance sharing
	// the same application secret must derive the same cipher key, or
	// cursors would not be portable across instances.
	keyDerivationSalt = "partstream_cursor_salt"

	keyDerivationIterations = 100_000
	keyLengthBytes          = 32
)

// GCMEncrypter implements Encrypter with AES-256-GCM. The cipher key is
// derived from the application secret with PBKDF2-HMAC-SHA256 rather than
// using the secret directly, so the secret's other uses are not weakened by
// its use here.
type GCMEncrypter struct {
	cipherMode cipher.AEAD
}

var _ Encrypter = (*GCMEncrypter)(nil)

// NewGCMEncrypter derives a cipher key from the given secret and returns an
// AEAD encrypter ready for use.
func NewGCMEncrypter(secret string) (*GCMEncrypter, error) {
	if secret == "" {
		return nil, errors.New("encrypter: secret must not be empty")
	}

	key := pbkdf2.Key([]byte(secret), []byte(keyDerivationSalt), keyDerivationIterations, keyLengthBytes, sha256.New)

	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(c)
	if err != nil {
		return nil, err
	}

	return &GCMEncrypter{cipherMode: gcm}, nil
}

// Decrypt opens a GCM-sealed byte array. Any modification of the ciphertext
// or nonce fails authentication.
func (e *GCMEncrypter) Decrypt(data []byte) ([]byte, error) {
	nonceSize := e.cipherMode.NonceSize()
	if len(data) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	return e.cipherMode.Open(nil, nonce, ciphertext, nil)
}

// Encrypt seals the given byte array, prefixing the random nonce.
func (e *GCMEncrypter) Encrypt(data []byte) ([]byte, error) {
	nonce := make([]byte, e.cipherMode.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return e.cipherMode.Seal(nonce, nonce, data, nil), nil
}
