package whop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractStoreRecord(t *testing.T) {
	payload := "0:[\"$@1\",[\"children\"]]\n" +
		`1:{"data":{"id":"pass_X","route":"doge-7"},"status":"ok"}` + "\n" +
		"2:null\n"

	record, err := extractStoreRecord(payload)
	require.NoError(t, err)
	assert.Equal(t, "pass_X", record.ExternalID)
	assert.Equal(t, "doge-7", record.Route)
}

func TestExtractStoreRecord_NoMarker(t *testing.T) {
	payload := "0:[\"$@1\"]\n1:null\n"

	_, err := extractStoreRecord(payload)
	assert.ErrorIs(t, err, ErrNoResultRecord)
}

func TestExtractStoreRecord_MalformedObject(t *testing.T) {
	payload := `1:{"data":{"id":` + "\n"

	_, err := extractStoreRecord(payload)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestExtractStoreRecord_MissingFields(t *testing.T) {
	cases := []string{
		`1:{"data":{"id":"pass_X"}}`,
		`1:{"data":{"route":"doge-7"}}`,
		`1:{"data":{}}`,
	}

	for _, payload := range cases {
		_, err := extractStoreRecord(payload)
		assert.ErrorIs(t, err, ErrIncompleteRecord, "payload %q", payload)
	}
}

func TestExtractStoreRecord_BracesInsideStrings(t *testing.T) {
	payload := `1:{"data":{"id":"pass_{weird}","route":"a-}b{"},"rest":"x"}`

	record, err := extractStoreRecord(payload)
	require.NoError(t, err)
	assert.Equal(t, "pass_{weird}", record.ExternalID)
	assert.Equal(t, "a-}b{", record.Route)
}

func TestBraceDelimited_Unbalanced(t *testing.T) {
	_, ok := braceDelimited(`1:{"data":{"id":"x"`)
	assert.False(t, ok)

	_, ok = braceDelimited("no braces here")
	assert.False(t, ok)
}
