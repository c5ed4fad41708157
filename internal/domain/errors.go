package domain

import (
	"errors"
	"fmt"
)

// ErrDataUnavailable is the umbrella for load failures. Both ErrConnectionFailed
// and ErrQueryFailed match it with errors.Is.
var ErrDataUnavailable = errors.New("data unavailable")

var (
	ErrConnectionFailed = fmt.Errorf("%w: database connection failed", ErrDataUnavailable)
	ErrQueryFailed      = fmt.Errorf("%w: query failed", ErrDataUnavailable)
)

var (
	ErrUpdateFailed      = errors.New("update failed")
	ErrFieldNotEditable  = errors.New("field is not editable")
	ErrRowNotFound       = errors.New("row not found")
	ErrSnapshotMismatch  = errors.New("edited rows do not match loaded rows")
	ErrInvalidFieldValue = errors.New("invalid field value")
)
