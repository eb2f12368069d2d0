package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	encoded := Encode("hunter2")
	assert.NotEqual(t, "hunter2", encoded)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", decoded)
}

func TestDecodeEmptyIsEmpty(t *testing.T) {
	decoded, err := Decode("")
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestDecodeBadEncoding(t *testing.T) {
	_, err := Decode("not base64!!!")
	assert.ErrorIs(t, err, ErrBadEncoding)
}
