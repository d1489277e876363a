package checkin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	bk "github.com/hanksha/tbz-booking-console/booking"
)

//go:generate mockgen -source=verifier.go -destination=mocks/mock_verifier.go -package=mocks

type BookingLookup interface {
	GetBooking(ctx context.Context, id int64) (bk.Booking, error)
	VerifyQRToken(ctx context.Context, token string) error
}

// RequiredStatus is the status a booking must have for its token to verify.
const RequiredStatus = bk.StatusCheckedIn

type Kind string

const (
	KindVerified         Kind = "VERIFIED"
	KindTokenUnreadable  Kind = "TOKEN_UNREADABLE"
	KindNoContext        Kind = "NO_CONTEXT"
	KindTokenMismatch    Kind = "TOKEN_MISMATCH"
	KindLookupFailure    Kind = "LOOKUP_FAILURE"
	KindStatusIneligible Kind = "STATUS_INELIGIBLE"
)

type Verdict struct {
	Valid            bool      `json:"valid"`
	Kind             Kind      `json:"kind"`
	BookingID        int64     `json:"bookingId,omitempty"`
	BookingCode      string    `json:"bookingCode,omitempty"`
	Expired          bool      `json:"expired"`
	BackendValidated bool      `json:"backendValidated"`
	Message          string    `json:"message"`
	Status           bk.Status `json:"status,omitempty"`
	UserName         string    `json:"userName,omitempty"`
	RoomCode         string    `json:"roomCode,omitempty"`
	CheckinDate      string    `json:"checkinDate,omitempty"`
	CheckoutDate     string    `json:"checkoutDate,omitempty"`
	NumGuests        int       `json:"numGuests,omitempty"`
}

// Verifier cross-checks scanned tokens against a fresh backend lookup. It
// keeps no state between scans.
type Verifier struct {
	lookup BookingLookup
	now    func() time.Time
	logger *slog.Logger
}

type VerifierOption func(*Verifier)

func WithClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) { v.now = now }
}

func NewVerifier(lookup BookingLookup, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		lookup: lookup,
		now:    time.Now,
		logger: slog.Default().With("component", "checkin"),
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Check decodes raw and verifies it against the booking selected at the desk.
// A selectedID of zero or less means no booking is selected.
func (v *Verifier) Check(ctx context.Context, raw string, selectedID int64) Verdict {
	payload, ok := Decode(raw)

	if !ok {
		return v.Verify(ctx, raw, nil, selectedID)
	}

	return v.Verify(ctx, raw, &payload, selectedID)
}

func (v *Verifier) Verify(ctx context.Context, raw string, decoded *Payload, selectedID int64) Verdict {
	if decoded == nil {
		return Verdict{Kind: KindTokenUnreadable, Message: "no booking id in token"}
	}

	if selectedID <= 0 {
		return Verdict{Kind: KindNoContext, BookingID: decoded.BookingID, Message: "no current booking context"}
	}

	if decoded.BookingID != selectedID {
		return Verdict{
			Kind:      KindTokenMismatch,
			BookingID: decoded.BookingID,
			Message:   fmt.Sprintf("token does not match this booking (token booking #%d, selected booking #%d)", decoded.BookingID, selectedID),
		}
	}

	verdict := Verdict{BookingID: decoded.BookingID}

	if err := v.lookup.VerifyQRToken(ctx, raw); err != nil {
		v.logger.Debug("backend token verification unavailable", "bookingId", decoded.BookingID, "err", err)
	} else {
		verdict.BackendValidated = true
	}

	live, err := v.lookup.GetBooking(ctx, decoded.BookingID)

	if err != nil {
		verdict.Kind = KindLookupFailure
		verdict.Message = lookupMessage(err)
		return verdict
	}

	verdict.BookingCode = live.Code
	verdict.Status = live.Status
	verdict.UserName = live.UserName
	verdict.RoomCode = live.RoomCode
	verdict.CheckinDate = live.CheckinDate
	verdict.CheckoutDate = live.CheckoutDate
	verdict.NumGuests = live.NumGuests

	if checkout, ok := live.CheckoutTime(); ok {
		verdict.Expired = v.now().After(checkout)
	}

	if live.Status != RequiredStatus {
		verdict.Kind = KindStatusIneligible
		verdict.Message = fmt.Sprintf("booking must be %s to be verified, it is %s", RequiredStatus, live.Status)
		return verdict
	}

	verdict.Valid = true
	verdict.Kind = KindVerified
	verdict.Message = validMessage(verdict)

	return verdict
}

func validMessage(verdict Verdict) string {
	var msg strings.Builder

	if verdict.BackendValidated {
		msg.WriteString("token signature verified by the backend")
	} else {
		msg.WriteString("booking matched by direct lookup")
	}

	if verdict.Expired {
		msg.WriteString(", booking has expired")
	}

	return msg.String()
}

type serverMessager interface {
	ServerMessage() string
}

func lookupMessage(err error) string {
	var sm serverMessager

	if errors.As(err, &sm) {
		if msg := strings.TrimSpace(sm.ServerMessage()); len(msg) != 0 {
			return msg
		}
	}

	return err.Error()
}
