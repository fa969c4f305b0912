package service

import "fmt"

// AmbiguityError is returned when a lookup expected a single row and found
// a different number. Key describes the lookup, e.g. "email a@b.c"
type AmbiguityError struct {
	Subject  string
	Key      string
	Expected int
	Actual   int
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("Expected exactly %d %s with %s; found %d", e.Expected, e.Subject, e.Key, e.Actual)
}
