// Package id is the single id-issuing authority for every identity partition
// and for listings. Ids are UUIDv7, so they are globally unique across
// partitions and roughly ordered by creation time.
package id

import (
	"github.com/google/uuid"
)

func New() string {
	v, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does.
		return uuid.NewString()
	}
	return v.String()
}

// Valid reports whether s has the shape of an issued id.
func Valid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}
