package middleware

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/kbukum/voxscribe/errors"
)

// writeError answers with the standard error envelope. The middleware in
// this package run outside gin, so they encode the body themselves.
func writeError(w http.ResponseWriter, appErr *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(appErr.ToResponse())
}
