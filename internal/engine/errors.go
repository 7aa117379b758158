package engine

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a position, trade, or wallet does not
// exist or is not owned by the caller.
var ErrNotFound = errors.New("not found")

// ValidationError marks out-of-range or missing caller input. It is
// never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// SwapUnavailableError means the quote/swap provider could not produce
// an executable swap instruction.
type SwapUnavailableError struct {
	TokenAddress string
	Err          error
}

func (e *SwapUnavailableError) Error() string {
	return fmt.Sprintf("swap unavailable for %s: %v", e.TokenAddress, e.Err)
}

func (e *SwapUnavailableError) Unwrap() error { return e.Err }

// OracleError means a price lookup failed. The monitor skips the
// affected position for the sweep instead of crashing.
type OracleError struct {
	TokenAddress string
	Err          error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("price unavailable for %s: %v", e.TokenAddress, e.Err)
}

func (e *OracleError) Unwrap() error { return e.Err }
