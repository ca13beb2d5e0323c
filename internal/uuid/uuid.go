// Package uuid generates the time-ordered identifiers used for stored rows,
// request ids and batch run ids.
package uuid

import googleuuid "github.com/google/uuid"

// New returns a UUIDv7 string. It falls back to a random UUIDv4 if the
// clock sequence cannot be read.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		return googleuuid.New().String()
	}
	return id.String()
}

// Valid reports whether s parses as a UUID.
func Valid(s string) bool {
	return googleuuid.Validate(s) == nil
}
