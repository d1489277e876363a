package booking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

//go:generate mockgen -source=booking_service.go -destination=mocks/mock_booking_service.go -package=mocks

type Backend interface {
	ListBookings(ctx context.Context, filter Filter) ([]Booking, error)
	GetBooking(ctx context.Context, id int64) (Booking, error)
	DecideBooking(ctx context.Context, decision Decision) error
	CheckoutBooking(ctx context.Context, checkout Checkout) error
}

type Notifier interface {
	Notify(ctx context.Context, bookingID int64, guestLabel, roomLabel string, status Status)
}

type Journal interface {
	RecordMutation(ctx context.Context, entry JournalEntry) error
	History(ctx context.Context, bookingID int64) ([]JournalEntry, error)
}

type JournalEntry struct {
	ID        string    `json:"id"`
	BookingID int64     `json:"bookingId"`
	Action    Action    `json:"action"`
	ActorID   string    `json:"actorId"`
	Previous  Status    `json:"previousStatus"`
	Target    Status    `json:"targetStatus"`
	Outcome   Outcome   `json:"outcome"`
	Message   string    `json:"message"`
	SettledAt time.Time `json:"settledAt"`
}

const DefaultSnapshotTTL = 5 * time.Minute

type Service struct {
	backend   Backend
	notifier  Notifier
	journal   Journal
	overrides *Overrides
	inFlight  *cache.Cache
	snapshot  *cache.Cache
	announced *cache.Cache
	timeout   time.Duration
	logger    *slog.Logger

	mu         sync.Mutex
	lastFilter Filter
	listed     bool
}

type Option func(*Service)

func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func WithSnapshotTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.snapshot = cache.New(ttl, 2*ttl)
		}
	}
}

func WithJournal(journal Journal) Option {
	return func(s *Service) { s.journal = journal }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(backend Backend, notifier Notifier, opts ...Option) *Service {
	s := &Service{
		backend:   backend,
		notifier:  notifier,
		overrides: NewOverrides(),
		inFlight:  cache.New(cache.NoExpiration, 0),
		announced: cache.New(cache.NoExpiration, 0),
		snapshot:  cache.New(DefaultSnapshotTTL, 2*DefaultSnapshotTTL),
		timeout:   DefaultTimeout,
		logger:    slog.Default().With("component", "booking"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// List fetches bookings from the backend. Fetched values are authoritative:
// any override for a returned id is dropped unless a mutation for it is still
// in flight.
func (s *Service) List(ctx context.Context, filter Filter) ([]Booking, error) {
	bookings, err := s.backend.ListBookings(ctx, filter)

	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	s.mu.Lock()
	s.lastFilter = filter
	announce := s.listed
	s.listed = true
	s.mu.Unlock()

	for i := range bookings {
		s.remember(bookings[i])
		s.announce(ctx, bookings[i], announce)
		bookings[i].Status = s.overrides.Effective(bookings[i])
	}

	return bookings, nil
}

// announce notifies about a pending booking the first time a list shows it.
// Bookings already pending on the first list are only marked as seen.
func (s *Service) announce(ctx context.Context, b Booking, notify bool) {
	if b.Status != StatusPending {
		return
	}

	if err := s.announced.Add(cacheKey(b.ID), struct{}{}, cache.NoExpiration); err != nil || !notify {
		return
	}

	go s.notifier.Notify(context.WithoutCancel(ctx), b.ID, b.GuestLabel(), b.RoomLabel(), StatusPending)
}

// Find resolves a booking from the last fetched list, falling back to the
// backend, and returns it with its effective status.
func (s *Service) Find(ctx context.Context, id int64) (Booking, error) {
	if cached, found := s.snapshot.Get(cacheKey(id)); found {
		b := cached.(Booking)
		b.Status = s.overrides.Effective(b)
		return b, nil
	}

	b, err := s.backend.GetBooking(ctx, id)

	if err != nil {
		return Booking{}, fmt.Errorf("failed to fetch booking %d: %w", id, err)
	}

	s.remember(b)
	b.Status = s.overrides.Effective(b)

	return b, nil
}

// StatusOf returns the status the console currently shows for id.
func (s *Service) StatusOf(id int64) (Status, bool) {
	if status, found := s.overrides.Get(id); found {
		return status, true
	}

	if cached, found := s.snapshot.Get(cacheKey(id)); found {
		return cached.(Booking).Status, true
	}

	return "", false
}

func (s *Service) Approve(ctx context.Context, id int64, approverID string) (Result, error) {
	return s.decide(ctx, id, approverID, StatusApproved, "")
}

func (s *Service) Reject(ctx context.Context, id int64, approverID, reason string) (Result, error) {
	reason = strings.TrimSpace(reason)

	if len(reason) == 0 {
		return Result{BookingID: id, Outcome: OutcomeFailure}, ErrReasonRequired
	}

	return s.decide(ctx, id, approverID, StatusRejected, reason)
}

// Checkout does not shadow the status; a successful checkout refetches the
// last listed bookings instead.
func (s *Service) Checkout(ctx context.Context, id int64, actorID, userID string) (Result, error) {
	b, err := s.Find(ctx, id)

	if err != nil {
		return Result{BookingID: id, Outcome: OutcomeFailure}, err
	}

	checkout := Checkout{BookingID: id, UserID: strings.TrimSpace(userID)}

	res, err := s.apply(ctx, b, ActionCheckout, actorID, StatusCheckedOut, false, func(ctx context.Context) error {
		return s.backend.CheckoutBooking(ctx, checkout)
	})

	if res.OK() {
		b.Status = StatusCheckedOut
		s.snapshot.Set(cacheKey(id), b, cache.DefaultExpiration)

		s.mu.Lock()
		filter := s.lastFilter
		s.mu.Unlock()

		if _, refreshErr := s.List(context.WithoutCancel(ctx), filter); refreshErr != nil {
			s.logger.Warn("failed to refresh bookings after checkout", "bookingId", id, "err", refreshErr)
		}
	}

	return res, err
}

func (s *Service) History(ctx context.Context, id int64) ([]JournalEntry, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}

	return s.journal.History(ctx, id)
}

func (s *Service) decide(ctx context.Context, id int64, approverID string, target Status, reason string) (Result, error) {
	approverID = strings.TrimSpace(approverID)

	if len(approverID) == 0 {
		return Result{BookingID: id, Outcome: OutcomeFailure}, ErrNotAuthenticated
	}

	b, err := s.Find(ctx, id)

	if err != nil {
		return Result{BookingID: id, Outcome: OutcomeFailure}, err
	}

	decision := Decision{
		BookingID:  id,
		ApproverID: approverID,
		Decision:   target,
		Reason:     reason,
	}

	action := ActionApprove
	if target == StatusRejected {
		action = ActionReject
	}

	res, err := s.apply(ctx, b, action, approverID, target, true, func(ctx context.Context) error {
		return s.backend.DecideBooking(ctx, decision)
	})

	if res.OK() && s.notifier != nil {
		go s.notifier.Notify(context.WithoutCancel(ctx), b.ID, b.GuestLabel(), b.RoomLabel(), target)
	}

	return res, err
}

// apply serializes mutations per booking, checks the transition and runs the
// remote call. When optimistic, the target status is shown before the call
// settles and Previous is restored when it fails.
func (s *Service) apply(ctx context.Context, b Booking, action Action, actorID string, target Status, optimistic bool, call RemoteCall) (Result, error) {
	key := cacheKey(b.ID)

	if err := s.inFlight.Add(key, action, cache.NoExpiration); err != nil {
		status := s.overrides.Effective(b)
		return Result{BookingID: b.ID, Outcome: OutcomeFailure, Previous: status, Status: status}, ErrMutationInFlight
	}

	defer s.inFlight.Delete(key)

	previous := s.overrides.Effective(b)

	if !CanInitiate(previous, target) {
		return Result{BookingID: b.ID, Outcome: OutcomeFailure, Previous: previous, Status: previous},
			fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, previous, target)
	}

	if optimistic {
		s.overrides.Set(b.ID, target)
	}

	res, err := mutate(context.WithoutCancel(ctx), s.timeout, b.ID, previous, target, call)

	if !res.OK() && optimistic {
		s.overrides.Set(b.ID, res.Previous)
	}

	if res.OK() {
		s.logger.Info("booking status changed", "bookingId", b.ID, "action", action, "from", previous, "to", target)
	} else {
		s.logger.Warn("booking status change rolled back", "bookingId", b.ID, "action", action, "outcome", res.Outcome, "err", err)
	}

	s.record(ctx, JournalEntry{
		BookingID: b.ID,
		Action:    action,
		ActorID:   actorID,
		Previous:  previous,
		Target:    target,
		Outcome:   res.Outcome,
		Message:   res.Message,
	})

	return res, err
}

func (s *Service) record(ctx context.Context, entry JournalEntry) {
	if s.journal == nil {
		return
	}

	entry.ID = uuid.NewString()
	entry.SettledAt = time.Now().UTC()

	if err := s.journal.RecordMutation(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Error("failed to record mutation", "bookingId", entry.BookingID, "err", err)
	}
}

func (s *Service) remember(b Booking) {
	if err := b.Validate(); err != nil {
		s.logger.Warn("backend returned an inconsistent booking", "bookingId", b.ID, "err", err)
	}

	key := cacheKey(b.ID)

	if cached, found := s.snapshot.Get(key); found {
		if prev := cached.(Booking).Status; prev != b.Status && !CanTransition(prev, b.Status) {
			s.logger.Warn("backend reported an unexpected status change",
				"bookingId", b.ID, "from", prev, "to", b.Status, "fromTerminal", prev.Terminal())
		}
	}

	s.snapshot.Set(key, b, cache.DefaultExpiration)

	if _, busy := s.inFlight.Get(key); !busy {
		s.overrides.Clear(b.ID)
	}
}
