package encoder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBase64EmptyDecode(t *testing.T) {
	encoder := NewBase64Encoder()

	got, err := encoder.Decode("")
	require.NoError(t, err)

	require.Equal(t, []byte{}, got)
}

func TestBase64EmptyEncode(t *testing.T) {
	encoder := NewBase64Encoder()

	got, err := encoder.Encode([]byte{})
	require.NoError(t, err)

	require.Empty(t, got)
}

func TestBase64EncodeDecode(t *testing.T) {
	encoder := NewBase64Encoder()
	want := []byte(`{"position":4}`)

	encoded, err := encoder.Encode(want)
	require.NoError(t, err)

	got, err := encoder.Decode(encoded)
	require.NoError(t, err)

	require.Equal(t, want, got)
}

func TestBase64DecodeGarbage(t *testing.T) {
	encoder := NewBase64Encoder()

	_, err := encoder.Decode("not base64!!")
	require.Error(t, err)
}
