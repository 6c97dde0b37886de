package driver

import "fmt"

// Error wraps an opaque underlying transport failure that doesn't fit
// one of the library's named error kinds (§4.2's DriverError(opaque)).
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("driver: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
