package datasource

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError means the request never completed: DNS, connect,
// timeout. Read paths degrade the view to its error state; write paths
// surface a blocking message. Never retried automatically.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StoreError is a non-2xx response from the store. Message carries the
// structured error body when one was parseable, else the transport
// status text, and is what the user sees.
type StoreError struct {
	Status  int
	Message string
}

func (e *StoreError) Error() string { return e.Message }

// PermissionDenied reports an ownership-violation rejection (editing
// or deleting someone else's entry). Its Message must be shown
// verbatim, not replaced by a generic failure string.
func (e *StoreError) PermissionDenied() bool {
	return e.Status == http.StatusForbidden
}

// UserMessage extracts the blocking message to show for a failed
// operation.
func UserMessage(err error) string {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Message
	}
	var te *TransportError
	if errors.As(err, &te) {
		return "An error occurred while contacting the server"
	}
	return err.Error()
}
