package booking

import (
	"errors"
	"fmt"
)

var ErrBookingNotFound = errors.New("booking not found")

var ErrUnknownStatus = errors.New("unknown booking status")

var ErrInvalidTransition = errors.New("invalid status transition")

var ErrValidation = errors.New("validation error")

var ErrReasonRequired = fmt.Errorf("%w: a reason is required to reject a booking", ErrValidation)

var ErrNotAuthenticated = fmt.Errorf("%w: not authenticated", ErrValidation)

var ErrMutationInFlight = errors.New("a status change is already in progress for this booking")

var ErrNetworkFailure = errors.New("remote call failed")

var ErrTimeout = errors.New("remote call timed out")

var ErrJournalDisabled = errors.New("mutation journal is not configured")
