package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/pitchdata/pitchdata-api/internal/store"
)

// ErrMalformedBody reports a request body that is not a single JSON object.
var ErrMalformedBody = errors.New("request body must be a single JSON object")

// maxBodyBytes caps request bodies at 1 MiB.
const maxBodyBytes = 1 << 20

// DecodeJSONMap decodes the request body into a raw JSON object. Field-level
// type checking happens later in schema validation, so this only rejects
// bodies that are not well-formed single JSON objects.
func DecodeJSONMap(r *http.Request) (map[string]any, error) {
	var raw map[string]any
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&raw); err != nil {
		return nil, ErrMalformedBody
	}
	// A second document after the object is malformed too.
	if dec.More() {
		return nil, ErrMalformedBody
	}
	return raw, nil
}

// ParsePathID parses the numeric identifier from a path segment.
func ParsePathID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("identifier must be a positive integer")
	}
	return id, nil
}

// ParsePage reads limit and offset query parameters into a store.Page.
// Missing or unparsable values fall back to zero, which Normalize later
// replaces with the defaults.
func ParsePage(r *http.Request) store.Page {
	var page store.Page
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			page.Limit = v
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			page.Offset = v
		}
	}
	return page
}
