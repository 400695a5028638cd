package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/lib/pq"
)

// IsRetryable reports whether err is a transient store failure that the
// caller may retry as-is: timeouts, lost connections, serialization
// conflicts and resource exhaustion. Constraint violations are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		switch {
		case strings.HasPrefix(code, "08"): // connection exception
			return true
		case strings.HasPrefix(code, "53"): // insufficient resources
			return true
		case code == "40001", code == "40P01": // serialization failure, deadlock
			return true
		case code == "57014", code == "57P01": // query canceled, admin shutdown
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// IsConstraintViolation reports whether err is an integrity constraint
// failure (SQLSTATE class 23).
func IsConstraintViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == "23"
	}
	return false
}
