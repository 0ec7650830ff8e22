package policy

import "errors"

// Unauthorized is returned when an access-control primitive fails. The
// reason names what was required, not what the actor holds.
type Unauthorized struct {
	Reason string
}

func (e *Unauthorized) Error() string { return e.Reason }

// ValidationError is returned when a proposed revision violates a
// structural, naming, or immutability invariant. The reason string is
// surfaced verbatim to the submitting client.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Forbidden is returned for documents whose type tag no rule set recognizes.
type Forbidden struct {
	Reason string
}

func (e *Forbidden) Error() string { return e.Reason }

// IsUnauthorized reports whether err is an access-control failure.
func IsUnauthorized(err error) bool {
	var u *Unauthorized
	return errors.As(err, &u)
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsForbidden reports whether err is an unknown-type rejection.
func IsForbidden(err error) bool {
	var f *Forbidden
	return errors.As(err, &f)
}

// IsRejection reports whether err is any policy rejection, as opposed to an
// infrastructure error from the surrounding machinery.
func IsRejection(err error) bool {
	return IsUnauthorized(err) || IsValidation(err) || IsForbidden(err)
}
