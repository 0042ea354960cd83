package http

import (
	"bytes"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitcall/packages/core/value"
	"github.com/abdul-hamid-achik/hitcall/packages/response"
	"github.com/tidwall/gjson"
)

// newRecord converts an HTTP response into an inspectable record. Headers
// are keyed by canonical name in sorted order, repeated headers keep their
// first value. A JSON body is decoded into a value tree; any other body is
// kept as a string, and an empty body is null.
func newRecord(resp *http.Response, body []byte, duration time.Duration) *response.Record {
	headers := value.NewObject()
	names := make([]string, 0, len(resp.Header))
	for k := range resp.Header {
		names = append(names, k)
	}
	slices.Sort(names)
	for _, k := range names {
		headers.Set(k, resp.Header.Get(k))
	}

	return &response.Record{
		Status:   resp.StatusCode,
		Headers:  headers,
		Body:     decodeBody(resp.Header.Get("Content-Type"), body),
		Duration: duration,
	}
}

func decodeBody(contentType string, body []byte) any {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if IsJSON(contentType) || (contentType == "" && gjson.ValidBytes(body)) {
		if v, err := value.Parse(body); err == nil {
			return v
		}
	}
	return string(body)
}

// IsJSON reports whether a content type denotes a JSON document,
// including structured suffixes such as application/problem+json.
func IsJSON(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	mediaType = strings.TrimSpace(strings.ToLower(mediaType))
	return mediaType == contentTypeJSON || strings.HasSuffix(mediaType, "+json")
}
