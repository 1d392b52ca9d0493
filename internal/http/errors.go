package httpx

import (
	"net/http"

	apperrors "github.com/tailfin-labs/tailfin/internal/errors"
)

// WriteAppError maps an application error kind to an HTTP status and writes
// the JSON error body.
func WriteAppError(w http.ResponseWriter, err error) {
	kind := apperrors.KindOf(err)
	code := http.StatusInternalServerError
	switch kind {
	case apperrors.KindInvalid:
		code = http.StatusBadRequest
	case apperrors.KindNotFound:
		code = http.StatusNotFound
	case apperrors.KindConflict:
		code = http.StatusConflict
	case apperrors.KindUnauthorized:
		code = http.StatusUnauthorized
	case apperrors.KindUnavailable:
		code = http.StatusBadGateway
	}
	WriteError(w, ErrorParams{Code: code, ErrCode: string(kind), Err: err})
}
