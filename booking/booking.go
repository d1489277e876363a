package booking

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusApproved   Status = "APPROVED"
	StatusRejected   Status = "REJECTED"
	StatusCancelled  Status = "CANCELLED"
	StatusCheckedIn  Status = "CHECKED_IN"
	StatusCheckedOut Status = "CHECKED_OUT"
)

var statuses = []Status{
	StatusPending,
	StatusApproved,
	StatusRejected,
	StatusCancelled,
	StatusCheckedIn,
	StatusCheckedOut,
}

func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(s)))

	if !slices.Contains(statuses, status) {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}

	return status, nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))

	if err != nil {
		return err
	}

	*s = parsed

	return nil
}

func (s Status) Valid() bool {
	return slices.Contains(statuses, s)
}

// Terminal statuses never leave the console with another transition.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCancelled || s == StatusCheckedOut
}

// lifecycle lists every legal step except cancellation, which the backend may
// apply from any status.
var lifecycle = map[Status][]Status{
	StatusPending:   {StatusApproved, StatusRejected},
	StatusApproved:  {StatusCheckedIn},
	StatusCheckedIn: {StatusCheckedOut},
}

// initiated is the subset of lifecycle the console itself performs.
// APPROVED -> CHECKED_IN belongs to the front-desk check-in flow.
var initiated = map[Status][]Status{
	StatusPending:   {StatusApproved, StatusRejected},
	StatusCheckedIn: {StatusCheckedOut},
}

func CanTransition(from, to Status) bool {
	if to == StatusCancelled {
		return from.Valid()
	}

	return slices.Contains(lifecycle[from], to)
}

func CanInitiate(from, to Status) bool {
	return slices.Contains(initiated[from], to)
}

type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionCheckout Action = "checkout"
)

type Booking struct {
	ID           int64  `json:"id"`
	Code         string `json:"code"`
	RoomID       int64  `json:"roomId"`
	RoomCode     string `json:"roomCode,omitempty"`
	UserID       int64  `json:"userId"`
	UserName     string `json:"userName,omitempty"`
	Status       Status `json:"status"`
	CheckinDate  string `json:"checkinDate"`
	CheckoutDate string `json:"checkoutDate"`
	NumGuests    int    `json:"numGuests"`
	CreatedAt    string `json:"createdAt,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateTime,
	time.DateOnly,
}

// ParseDate accepts the date-time shapes the backend has been seen to emit.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)

	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func (b Booking) CheckinTime() (time.Time, bool) {
	return ParseDate(b.CheckinDate)
}

func (b Booking) CheckoutTime() (time.Time, bool) {
	return ParseDate(b.CheckoutDate)
}

// Validate reports the data-model violations of a booking received from the backend.
func (b Booking) Validate() error {
	var errs []error

	if !b.Status.Valid() {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownStatus, b.Status))
	}

	if b.NumGuests < 1 {
		errs = append(errs, fmt.Errorf("numGuests must be at least 1, got %d", b.NumGuests))
	}

	checkin, okIn := b.CheckinTime()
	checkout, okOut := b.CheckoutTime()

	if okIn && okOut && !checkout.After(checkin) {
		errs = append(errs, errors.New("checkoutDate must be after checkinDate"))
	}

	return errors.Join(errs...)
}

func (b Booking) GuestLabel() string {
	if len(strings.TrimSpace(b.UserName)) != 0 {
		return b.UserName
	}

	return "user #" + strconv.FormatInt(b.UserID, 10)
}

func (b Booking) RoomLabel() string {
	if len(strings.TrimSpace(b.RoomCode)) != 0 {
		return b.RoomCode
	}

	return "room #" + strconv.FormatInt(b.RoomID, 10)
}

type Filter struct {
	Status Status
}

// Decision is the body of POST /bookings/{id}/approve.
type Decision struct {
	BookingID  int64  `json:"bookingId"`
	ApproverID string `json:"approverId"`
	Decision   Status `json:"decision"`
	Reason     string `json:"reason"`
}

type Checkout struct {
	BookingID int64  `json:"bookingId"`
	UserID    string `json:"userId,omitempty"`
}
