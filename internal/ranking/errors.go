package ranking

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse marks a completed model call whose text held no usable JSON array.
// Quota was still consumed.
var ErrMalformedResponse = errors.New("malformed ranking response")

type Reason string

const (
	ReasonQuota       Reason = "quota"
	ReasonAuth        Reason = "auth"
	ReasonTimeout     Reason = "timeout"
	ReasonUnavailable Reason = "unavailable"
)

// ServiceError is a hard failure reaching the ranking service.
type ServiceError struct {
	Reason Reason
	Err    error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("ranking service %s: %v", e.Reason, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func IsServiceUnavailable(err error) bool {
	var target *ServiceError
	return errors.As(err, &target)
}

func IsMalformedResponse(err error) bool {
	return errors.Is(err, ErrMalformedResponse)
}
