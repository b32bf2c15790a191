package domain

import "errors"

// codedError porte un code stable, utilisé comme suffixe des clés de traduction.
type codedError struct {
	code   string
	msg    string
	parent error
}

func (e *codedError) Error() string { return e.msg }

func (e *codedError) Unwrap() error { return e.parent }

func newError(code, msg string, parent error) error {
	return &codedError{code: code, msg: msg, parent: parent}
}

// Domain errors.
var (
	ErrNotConfigured        = newError("not_configured", "event channel not configured", nil)
	ErrValidationFailed     = newError("validation_failed", "validation failed", nil)
	ErrInputTimeout         = newError("input_timeout", "no answer before timeout", nil)
	ErrUnauthorized         = newError("unauthorized", "not allowed to manage this event", nil)
	ErrCapacityExceeded     = newError("capacity_exceeded", "event is full", nil)
	ErrConversationBusy     = newError("conversation_busy", "a conversation is already pending", nil)
	ErrEventNotFound        = newError("event_not_found", "event not found", nil)
	ErrPostNotFound         = newError("post_not_found", "post not found", nil)
	ErrDriftDetected        = newError("drift_detected", "drift detected", nil)
	ErrDMClosed             = newError("dm_closed", "direct messages closed", nil)
	ErrStorageInconsistency = newError("storage_inconsistency", "cache and store disagree", nil)
)

// Validation errors; all of them match ErrValidationFailed with errors.Is.
var (
	ErrTitleTooShort   = newError("title_too_short", "title is too short", ErrValidationFailed)
	ErrTitleTooLong    = newError("title_too_long", "title is too long", ErrValidationFailed)
	ErrDescTooLong     = newError("description_too_long", "description is too long", ErrValidationFailed)
	ErrInvalidCapacity = newError("invalid_capacity", "invalid number of attendees", ErrValidationFailed)
	ErrInvalidDate     = newError("invalid_date", "invalid start date", ErrValidationFailed)
	ErrDateTimeInPast  = newError("datetime_in_past", "start date is in the past", ErrValidationFailed)
	ErrInvalidImage    = newError("invalid_image", "invalid image url", ErrValidationFailed)
	ErrInvalidRole     = newError("invalid_role", "invalid mention role", ErrValidationFailed)
	ErrMissingCreator  = newError("missing_creator", "event has no creator", ErrValidationFailed)
)

// Code renvoie le code du premier domain error trouvé dans la chaîne, ou "".
func Code(err error) string {
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.code
	}
	return ""
}

// IsUserFacing reports whether err was already explained to the user where it
// was detected and therefore should not be logged as a failure.
func IsUserFacing(err error) bool {
	switch {
	case errors.Is(err, ErrNotConfigured),
		errors.Is(err, ErrValidationFailed),
		errors.Is(err, ErrInputTimeout),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrCapacityExceeded),
		errors.Is(err, ErrConversationBusy):
		return true
	}
	return false
}
