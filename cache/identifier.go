package cache

import "github.com/google/uuid"

// IdentifierGenerator produces keys for new entries.
// Every returned value must be unique for the life of the process with
// overwhelming probability.
type IdentifierGenerator interface {
	NewID() string
}

// IdentifierFunc adapts a plain function to IdentifierGenerator.
type IdentifierFunc func() string

// NewID calls f.
func (f IdentifierFunc) NewID() string {
	return f()
}

// NewUUIDGenerator returns the default generator: random (version 4) UUIDs
// in their canonical 36 character form.
func NewUUIDGenerator() IdentifierGenerator {
	return IdentifierFunc(uuid.NewString)
}
