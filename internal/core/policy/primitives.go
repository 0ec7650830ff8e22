package policy

import "strings"

// notEmpty rejects absent, zero-length, or whitespace-only values.
func notEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Reason: field + " is empty."}
	}
	return nil
}

// readOnly rejects a value that differs from its prior revision. A value
// equal to itself always passes, so re-submitting an accepted revision
// never trips an immutability check.
func readOnly(field, value, oldValue string) error {
	if value != oldValue {
		return &ValidationError{Reason: field + " is read-only."}
	}
	return nil
}

// requirePrefix rejects a value that does not start with the prefix derived
// from another field. The prefix encodes an ownership or containment
// relationship in the identifier itself.
func requirePrefix(field, value, prefixField, prefix string) error {
	if !strings.HasPrefix(value, prefix) {
		return &ValidationError{Reason: field + " must be prefixed with " + prefixField + "."}
	}
	return nil
}
