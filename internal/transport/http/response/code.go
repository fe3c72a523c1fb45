package response

import (
	"net/http"

	"appusers/internal/domain"
)

// StatusOf maps the error taxonomy onto HTTP statuses. Duplicate-key
// conflicts are reported as plain 400 to keep the wire contract of the
// original API.
func StatusOf(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation, domain.KindConflict:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnsupported:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}
