package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const DefaultTimeout = 8 * time.Second

const (
	msgMutationFailed  = "failed to update the booking status"
	msgMutationTimeout = "the server took too long to respond, the change was not applied"
)

type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
	OutcomeTimeout
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "failure"
	}
}

func ParseOutcome(s string) Outcome {
	switch s {
	case "success":
		return OutcomeSuccess
	case "timeout":
		return OutcomeTimeout
	default:
		return OutcomeFailure
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Result is the settled state of one mutation. On anything but success Status
// equals Previous, which is the value the caller restores.
type Result struct {
	BookingID int64   `json:"bookingId"`
	Outcome   Outcome `json:"outcome"`
	Previous  Status  `json:"previousStatus"`
	Status    Status  `json:"status"`
	Message   string  `json:"message,omitempty"`
}

func (r Result) OK() bool {
	return r.Outcome == OutcomeSuccess
}

type RemoteCall func(ctx context.Context) error

// serverMessager is implemented by transport errors carrying the text the
// backend sent with a non-2xx response.
type serverMessager interface {
	ServerMessage() string
}

// mutate runs call under the abort timer and classifies how it settled.
// It does not touch the override map.
func mutate(ctx context.Context, timeout time.Duration, id int64, previous, target Status, call RemoteCall) (Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- call(callCtx)
	}()

	var err error

	select {
	case err = <-done:
	case <-callCtx.Done():
		err = callCtx.Err()
	}

	switch {
	case err == nil:
		return Result{BookingID: id, Outcome: OutcomeSuccess, Previous: previous, Status: target}, nil
	case errors.Is(err, context.DeadlineExceeded):
		return Result{BookingID: id, Outcome: OutcomeTimeout, Previous: previous, Status: previous, Message: msgMutationTimeout},
			fmt.Errorf("%w after %v: %w", ErrTimeout, timeout, err)
	default:
		return Result{BookingID: id, Outcome: OutcomeFailure, Previous: previous, Status: previous, Message: failureMessage(err)},
			fmt.Errorf("%w: %w", ErrNetworkFailure, err)
	}
}

func failureMessage(err error) string {
	var sm serverMessager

	if errors.As(err, &sm) {
		if msg := strings.TrimSpace(sm.ServerMessage()); len(msg) != 0 {
			return msg
		}
	}

	return msgMutationFailed
}
