package util

import (
	"regexp"

	"github.com/google/uuid"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// NewUUID returns a lowercase random (version 4) UUID.
func NewUUID() string {
	return uuid.NewString()
}

// IsValidUUID reports whether s matches the lowercase 8-4-4-4-12 hex form the
// changeset routes accept. Uppercase input is deliberately rejected.
func IsValidUUID(s string) bool {
	return uuidPattern.MatchString(s)
}
