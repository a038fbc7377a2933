// Package ids generates opaque, globally unique identifiers for sessions
// and messages. Callers must not assume any structure in the returned
// string beyond uniqueness.
package ids

import "github.com/google/uuid"

// New returns a fresh, globally unique identifier.
func New() string {
	return uuid.New().String()
}
