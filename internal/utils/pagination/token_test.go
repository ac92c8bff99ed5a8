package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeCursor(t *testing.T) {
	createdAt := time.Date(2026, 5, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeCursor(createdAt, "TRF01HZX")
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedAt, key, err := DecodeCursor(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.True(t, createdAt.Equal(decodedAt), "Created at should match after decode")
	assert.Equal(t, "TRF01HZX", key)

	// non-UTC input round-trips to the same instant
	local := createdAt.In(time.FixedZone("X", 3*3600))
	decodedAt, _, err = DecodeCursor(EncodeCursor(local, "k"))
	assert.NoError(t, err)
	assert.True(t, local.Equal(decodedAt))
}

func TestDecodeCursorError(t *testing.T) {
	_, _, err := DecodeCursor("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode")

	noSeparator := base64.URLEncoding.EncodeToString([]byte("2026-05-15T00:00:00Z"))
	_, _, err = DecodeCursor(noSeparator)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	badDate := base64.URLEncoding.EncodeToString([]byte("notadate|TRF1"))
	_, _, err = DecodeCursor(badDate)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "created_at parse")
}

func TestIsBefore(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Second)

	assert.True(t, IsBefore(t0, "B", t1, "A"), "older record is on a later page")
	assert.False(t, IsBefore(t1, "A", t0, "B"))
	assert.True(t, IsBefore(t0, "A", t0, "B"), "same instant breaks ties by key")
	assert.False(t, IsBefore(t0, "B", t0, "B"), "cursor row itself is excluded")
}
