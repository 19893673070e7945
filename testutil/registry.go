package testutil

import (
	"time"

	"github.com/skosovsky/bbtools"
)

// NewTestRegistry returns a Registry with long timeout and panic recovery enabled,
// suitable for tests.
func NewTestRegistry(tools ...bbtools.Tool) *bbtools.Registry {
	reg := bbtools.NewRegistry(
		bbtools.WithDefaultTimeout(30*time.Second),
		bbtools.WithRecoverPanics(true),
	)
	for _, t := range tools {
		reg.Register(t)
	}
	return reg
}

// Collect returns a yield function that stores the last delivered output in *out.
func Collect(out *[]byte) func([]byte) error {
	return func(b []byte) error {
		*out = append([]byte(nil), b...)
		return nil
	}
}
