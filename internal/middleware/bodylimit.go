package middleware

import (
	"net/http"
)

// DefaultMaxBodySize caps request bodies at 1MB. The largest legitimate
// payload is an arena turn with full prompts per player; anything bigger
// is noise.
const DefaultMaxBodySize = 1 << 20

// BodyLimitMiddleware rejects oversize bodies before any handler starts
// decoding JSON. Declared lengths are checked up front; chunked bodies
// are capped by a MaxBytesReader, which fails the handler's read.
type BodyLimitMiddleware struct {
	maxSize int64
}

func NewBodyLimitMiddleware(maxSize int64) *BodyLimitMiddleware {
	if maxSize <= 0 {
		maxSize = DefaultMaxBodySize
	}
	return &BodyLimitMiddleware{maxSize: maxSize}
}

func (m *BodyLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil && r.ContentLength > m.maxSize {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
				"error": "Request body too large",
			})
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, m.maxSize)
		next.ServeHTTP(w, r)
	})
}
