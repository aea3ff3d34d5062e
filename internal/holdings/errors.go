package holdings

import (
	"errors"
	"fmt"
)

// ErrNoTokenAccounts is returned when the wallet owns no token accounts.
var ErrNoTokenAccounts = errors.New("no token accounts found for this wallet")

// ExternalServiceError wraps a failed call to the chain RPC.
type ExternalServiceError struct {
	Op  string
	Err error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

func external(op string, err error) error {
	return &ExternalServiceError{Op: op, Err: err}
}
