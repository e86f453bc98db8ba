package handlers

import (
	"errors"
	"net/http"

	"github.com/yourbreathtaking/backend-safeindustech/internal/models"
)

// MapErrorToHTTPStatus translates service errors to an error code and HTTP
// status. A read-side miss is an explicit 404, never an empty success that
// could be mistaken for "zero readings so far".
func MapErrorToHTTPStatus(err error) (string, int) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return "NOT_FOUND", http.StatusNotFound
	case errors.Is(err, models.ErrUnresolvedZone):
		return "ZONE_NOT_FOUND", http.StatusNotFound
	case errors.Is(err, models.ErrMalformedMessage), errors.Is(err, models.ErrInvalidSensorValue):
		return "BAD_REQUEST", http.StatusBadRequest
	case errors.Is(err, models.ErrStoreUnavailable):
		return "STORE_UNAVAILABLE", http.StatusServiceUnavailable
	}
	return "INTERNAL_ERROR", http.StatusInternalServerError
}
