package middleware

import (
	"fmt"
	"net/http"

	apperrors "github.com/kbukum/voxscribe/errors"
)

const bytesPerMB = 1024 * 1024

// BodySizeLimit caps request bodies at maxBytes. Requests that declare a
// larger Content-Length are refused with 413 up front; bodies without a
// declared length are cut off by http.MaxBytesReader and the handler sees
// an *http.MaxBytesError.
func BodySizeLimit(maxBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeError(w, apperrors.AudioSize(
					float64(r.ContentLength)/bytesPerMB,
					float64(maxBytes)/bytesPerMB,
				).WithDetail("limit", fmt.Sprintf("%d bytes", maxBytes)))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
