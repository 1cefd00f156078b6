package uid

import (
	"github.com/google/uuid"
)

// GenerateTableID returns a random identifier for a new table
func GenerateTableID() string {
	return uuid.NewString()
}

// GenerateRoundID identifies one round played on a table, a new one is
// issued on every restart
func GenerateRoundID() string {
	return uuid.NewString()
}

// IsValid reports whether id looks like an identifier produced by this package
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
