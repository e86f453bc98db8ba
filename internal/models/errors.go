package models

import "errors"

// Ingest failure taxonomy. Failures are local to the message or request
// that triggered them; none of these ever terminates the consumer loop.
var (
	// ErrMalformedMessage marks an unparsable payload or one missing
	// required fields. The message is dropped and never retried here;
	// at-least-once redelivery from the broker is the only retry path.
	ErrMalformedMessage = errors.New("malformed sensor message")

	// ErrInvalidSensorValue marks a numeric kind carrying a non-numeric
	// payload. Dropped with a diagnostic, never coerced to zero.
	ErrInvalidSensorValue = errors.New("invalid sensor value")

	// ErrUnresolvedZone marks a valid reading whose datastream matches no
	// zone. The observation is still persisted; only the zone-state update
	// is skipped.
	ErrUnresolvedZone = errors.New("no zone for datastream")

	// ErrStoreUnavailable marks a transient persistence failure for a
	// single operation.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound is the read-side miss: a zone, stream or site that does
	// not exist yields this rather than a silent empty success.
	ErrNotFound = errors.New("not found")
)
