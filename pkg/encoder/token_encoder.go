package encoder

import (
	"github.com/partstream/partstream/pkg/encrypter"
)

// TokenEncoder composes an encrypter and an encoder into the pipeline a
// cursor travels through: encrypt-then-encode on the way out,
// decode-then-decrypt on the way in.
type TokenEncoder struct {
	encrypter encrypter.Encrypter
	encoder   Encoder
}

var _ Encoder = (*TokenEncoder)(nil)

// NewTokenEncoder constructs an Encoder that includes an encrypter and encoder.
func NewTokenEncoder(encrypter encrypter.Encrypter, encoder Encoder) *TokenEncoder {
	return &TokenEncoder{
		encrypter: encrypter,
		encoder:   encoder,
	}
}

// Decode will first decode the given string with its encoder, then decrypt
// the result with its encrypter.
func (e *TokenEncoder) Decode(s string) ([]byte, error) {
	decoded, err := e.encoder.Decode(s)
	if err != nil {
		return nil, err
	}

	return e.encrypter.Decrypt(decoded)
}

// Encode will first encrypt the given data with its encrypter, then encode
// the result with its encoder.
func (e *TokenEncoder) Encode(data []byte) (string, error) {
	encrypted, err := e.encrypter.Encrypt(data)
	if err != nil {
		return "", err
	}

	return e.encoder.Encode(encrypted)
}
