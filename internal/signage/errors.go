package signage

import (
	"errors"
	"fmt"

	"github.com/Nixie-Tech-LLC/marquee/internal/db"
)

var (
	// ErrNotFound means the screen or binding is unknown. Callers treat it as
	// an answer, not as something to retry.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the admin in the context does not own
	// the screen being queried.
	ErrForbidden = errors.New("forbidden")

	// ErrBatchInFlight is returned when a display batch with the same
	// idempotency key is still being written.
	ErrBatchInFlight = errors.New("display batch with this idempotency key is in progress")

	// ErrExportDisabled is returned by ExportDashboard without an archive.
	ErrExportDisabled = errors.New("dashboard export is not configured")
)

// ValidationError rejects malformed input before anything is written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// StoreError wraps a persistence failure. Committed is the number of rows of
// the failed operation that did reach the store. Rejected marks writes the
// store refused on an integrity constraint; resending them cannot succeed.
type StoreError struct {
	Op        string
	Committed int
	Retryable bool
	Rejected  bool
	Err       error
}

func (e *StoreError) Error() string {
	kind := "store error"
	switch {
	case e.Retryable:
		kind = "retryable store error"
	case e.Rejected:
		kind = "rejected by store"
	}
	if e.Committed > 0 {
		return fmt.Sprintf("%s: %s (%d committed): %v", e.Op, kind, e.Committed, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, kind, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a store failure worth retrying.
func IsRetryable(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Retryable
}

func storeError(op string, committed int, err error) error {
	return &StoreError{
		Op:        op,
		Committed: committed,
		Retryable: db.IsRetryable(err),
		Rejected:  db.IsConstraintViolation(err),
		Err:       err,
	}
}
