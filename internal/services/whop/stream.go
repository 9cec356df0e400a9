package whop

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"whopgen/internal/models"
)

// The store-creation endpoint does not answer with a clean JSON document.
// It streams a sequence of newline-delimited records, one of which carries a
// brace-delimited JSON value tagged with a "data" marker. These errors let
// callers tell the failure modes apart.
var (
	// ErrNoResultRecord means no line in the stream carried the data marker.
	ErrNoResultRecord = errors.New("whop: stream contains no result record")
	// ErrMalformedRecord means the tagged line had no parseable JSON object.
	ErrMalformedRecord = errors.New("whop: result record is malformed")
	// ErrIncompleteRecord means the result object lacks an id or a route.
	ErrIncompleteRecord = errors.New("whop: result record missing id or route")
)

const resultMarker = `"data"`

type resultEnvelope struct {
	Data struct {
		ID    string `json:"id"`
		Route string `json:"route"`
	} `json:"data"`
}

// extractStoreRecord scans a streamed response for the record tagged with
// the data marker and parses the embedded JSON object out of that line.
func extractStoreRecord(payload string) (models.StoreRecord, error) {
	for _, line := range strings.Split(payload, "\n") {
		if !strings.Contains(line, resultMarker) {
			continue
		}

		object, ok := braceDelimited(line)
		if !ok {
			return models.StoreRecord{}, fmt.Errorf("%w: no JSON object on tagged line", ErrMalformedRecord)
		}

		var envelope resultEnvelope
		if err := json.Unmarshal([]byte(object), &envelope); err != nil {
			return models.StoreRecord{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}

		if envelope.Data.ID == "" || envelope.Data.Route == "" {
			return models.StoreRecord{}, ErrIncompleteRecord
		}

		return models.StoreRecord{
			ExternalID: envelope.Data.ID,
			Route:      envelope.Data.Route,
		}, nil
	}

	return models.StoreRecord{}, ErrNoResultRecord
}

// braceDelimited returns the substring from the first '{' on the line to its
// matching closing brace, honouring JSON string quoting.
func braceDelimited(line string) (string, bool) {
	start := strings.IndexByte(line, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(line); i++ {
		ch := line[i]

		if escaped {
			escaped = false
			continue
		}

		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return line[start : i+1], true
				}
			}
		}
	}

	return "", false
}
