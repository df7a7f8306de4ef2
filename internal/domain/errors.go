package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	ErrMsgPlantationNotFound = "plantation not found"
	ErrMsgTaskNotFound       = "cooldown task not found"
	ErrMsgAlreadyCompleted   = "already completed"
	ErrMsgForbidden          = "forbidden"
	ErrMsgInvalidKind        = "invalid kind"
	ErrMsgInvalidAction      = "invalid action"
	ErrMsgNotReady           = "not ready"
)

// Common domain errors
// Wrap these with fmt.Errorf("%w: %s", domain.ErrXxx, details) for context.
var (
	ErrPlantationNotFound = errors.New(ErrMsgPlantationNotFound)
	ErrTaskNotFound       = errors.New(ErrMsgTaskNotFound)
	ErrAlreadyCompleted   = errors.New(ErrMsgAlreadyCompleted)
	ErrForbidden          = errors.New(ErrMsgForbidden)
	ErrInvalidKind        = errors.New(ErrMsgInvalidKind)
	ErrInvalidAction      = errors.New(ErrMsgInvalidAction)
)

// ErrNotReady is returned when an action's deadline has not elapsed yet.
type ErrNotReady struct {
	Action    string
	Remaining time.Duration
}

func (e ErrNotReady) Error() string {
	total := int(e.Remaining.Seconds())
	if total < 0 {
		total = 0
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("'%s' %s: %02d:%02d:%02d remaining", e.Action, ErrMsgNotReady, h, m, s)
}

// Is allows errors.Is() to work with ErrNotReady
func (e ErrNotReady) Is(target error) bool {
	_, ok := target.(ErrNotReady)
	return ok
}
