package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	date := time.Date(2024, 5, 12, 14, 30, 0, 0, time.UTC)

	token := EncodeCursor(date, "act-42")
	require.NotEmpty(t, token)

	decoded, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.True(t, decoded.Date.Equal(date))
	assert.Equal(t, "act-42", decoded.ID)
}

func TestDecodeCursor_RejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("not base64 at all!!")
	assert.Error(t, err)

	// Valid base64, invalid payload.
	_, err = DecodeCursor("bm90IGpzb24")
	assert.Error(t, err)
}

func TestCursorTokensAreOpaque(t *testing.T) {
	token := EncodeCursor(time.Now(), "a")
	assert.NotContains(t, token, "=")
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
}
