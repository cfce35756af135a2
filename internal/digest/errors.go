package digest

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// Remote operation names reported by RemoteServiceError.
const (
	OpGetProfile     = "getProfile"
	OpListLabels     = "listLabels"
	OpListMessageIDs = "listMessageIds"
	OpGetMessage     = "getMessage"
)

// ErrNegativeLimit is returned when a negative message count is requested.
var ErrNegativeLimit = errors.New("max messages must not be negative")

// RemoteServiceError is any failure returned by the MailService, tagged with
// the operation that produced it.
type RemoteServiceError struct {
	Op  string
	ID  string // message ID, set for getMessage
	Err error
}

func (e *RemoteServiceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("gmail %s %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("gmail %s: %v", e.Op, e.Err)
}

func (e *RemoteServiceError) Unwrap() error {
	return e.Err
}

// StatusCode reports the HTTP status of the underlying API error, or 0 when
// the failure did not come from an HTTP response.
func (e *RemoteServiceError) StatusCode() int {
	var apiErr *googleapi.Error
	if errors.As(e.Err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

func remoteErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteServiceError{Op: op, Err: err}
}
