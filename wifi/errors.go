package wifi

import (
	"errors"
	"fmt"
)

var (
	ErrTransport        = errors.New("transport error")
	ErrApplication      = errors.New("request failed")
	ErrValidation       = errors.New("invalid request")
	ErrNotSaved         = errors.New("network is not saved")
	ErrAlreadyConnected = errors.New("network is already connected")
	ErrForgetActive     = errors.New("cannot forget the active network")
)

// TransportError is returned when an exchange with the backend did not
// produce a usable response: the network failed, the status was not 2xx or
// the body could not be decoded.
type TransportError struct {
	Op     string
	Status int // 0 when no response was received
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// ApplicationError is returned when the backend answered with success=false.
// Message is the backend's explanation and is meant to be shown verbatim.
type ApplicationError struct {
	Op      string
	Message string
}

func (e *ApplicationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s failed", e.Op)
	}
	return e.Message
}

func (e *ApplicationError) Unwrap() error {
	return ErrApplication
}

// ValidationError is returned before any request is issued.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Message picks the text to show a user for err. Backend messages are
// returned verbatim; otherwise appFallback is used for application failures
// and transportFallback for everything else.
func Message(err error, appFallback, transportFallback string) string {
	var appErr *ApplicationError
	if errors.As(err, &appErr) {
		if appErr.Message != "" {
			return appErr.Message
		}
		return appFallback
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Reason
	}
	return transportFallback
}
