package crm

import (
	"errors"
	"fmt"
)

// ErrNoSession is returned when a session is used after it has been released.
var ErrNoSession = errors.New("crm: no active session")

// ErrStalledCursor is returned when the server reports results but does not
// advance the pagination cursor.
var ErrStalledCursor = errors.New("crm: pagination cursor did not advance")

// Error represents a failed remote call or an error reported by the CRM.
type Error struct {
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("crm %s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("crm %s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
