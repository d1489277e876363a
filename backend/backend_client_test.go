package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hanksha/tbz-booking-console/backend"
	bk "github.com/hanksha/tbz-booking-console/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	method string
	path   string
	query  string
	auth   string
	body   map[string]any
}

func newServer(t *testing.T, status int, response string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.query = r.URL.RawQuery
		got.auth = r.Header.Get("Authorization")

		body, _ := io.ReadAll(r.Body)
		if len(body) != 0 {
			assert.NoError(t, json.Unmarshal(body, &got.body))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)

	return server, got
}

func TestDecideBooking(t *testing.T) {

	t.Run("posts the decision", func(t *testing.T) {
		server, got := newServer(t, http.StatusOK, `{}`)
		client := backend.NewClient(server.URL+"/api", backend.StaticToken("secret-token"))

		err := client.DecideBooking(context.Background(), bk.Decision{
			BookingID:  10,
			ApproverID: "admin-1",
			Decision:   bk.StatusRejected,
			Reason:     "overbooked",
		})

		require.NoError(t, err)
		assert.Equal(t, http.MethodPost, got.method)
		assert.Equal(t, "/api/bookings/10/approve", got.path)
		assert.Equal(t, "Bearer secret-token", got.auth)
		assert.Equal(t, map[string]any{
			"bookingId":  float64(10),
			"approverId": "admin-1",
			"decision":   "REJECTED",
			"reason":     "overbooked",
		}, got.body)
	})

	t.Run("approve sends an empty reason", func(t *testing.T) {
		server, got := newServer(t, http.StatusNoContent, ``)
		client := backend.NewClient(server.URL, nil)

		err := client.DecideBooking(context.Background(), bk.Decision{BookingID: 3, ApproverID: "a", Decision: bk.StatusApproved})

		require.NoError(t, err)
		assert.Equal(t, "", got.body["reason"])
		assert.Equal(t, "APPROVED", got.body["decision"])
		assert.Empty(t, got.auth)
	})

	t.Run("server message is kept verbatim", func(t *testing.T) {
		server, _ := newServer(t, http.StatusConflict, `{"message":"Booking already processed"}`)
		client := backend.NewClient(server.URL, nil)

		err := client.DecideBooking(context.Background(), bk.Decision{BookingID: 3})

		var apiErr *backend.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
		assert.Equal(t, "Booking already processed", apiErr.ServerMessage())
	})

	t.Run("error field and plain text bodies", func(t *testing.T) {
		server, _ := newServer(t, http.StatusBadRequest, `{"error":"reason too long"}`)
		err := backend.NewClient(server.URL, nil).DecideBooking(context.Background(), bk.Decision{BookingID: 3})

		var apiErr *backend.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "reason too long", apiErr.Message)

		server, _ = newServer(t, http.StatusBadGateway, `upstream unavailable`)
		err = backend.NewClient(server.URL, nil).DecideBooking(context.Background(), bk.Decision{BookingID: 3})

		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "upstream unavailable", apiErr.Message)
	})
}

func TestCheckoutBooking(t *testing.T) {
	server, got := newServer(t, http.StatusOK, `{"ok":true}`)
	client := backend.NewClient(server.URL, nil)

	err := client.CheckoutBooking(context.Background(), bk.Checkout{BookingID: 12, UserID: "7"})

	require.NoError(t, err)
	assert.Equal(t, "/bookings/12/checkout", got.path)
	assert.Equal(t, map[string]any{"bookingId": float64(12), "userId": "7"}, got.body)
}

func TestGetBooking(t *testing.T) {

	t.Run("success", func(t *testing.T) {
		server, got := newServer(t, http.StatusOK, `{"id":5,"code":"BK-5","roomId":2,"roomCode":"R-2","userId":9,"userName":"Zoe","status":"CHECKED_IN","checkinDate":"2026-10-01T12:00:00Z","checkoutDate":"2026-10-03T10:00:00Z","numGuests":2}`)
		client := backend.NewClient(server.URL, nil)

		b, err := client.GetBooking(context.Background(), 5)

		require.NoError(t, err)
		assert.Equal(t, http.MethodGet, got.method)
		assert.Equal(t, "/bookings/5", got.path)
		assert.Equal(t, bk.Booking{
			ID:           5,
			Code:         "BK-5",
			RoomID:       2,
			RoomCode:     "R-2",
			UserID:       9,
			UserName:     "Zoe",
			Status:       bk.StatusCheckedIn,
			CheckinDate:  "2026-10-01T12:00:00Z",
			CheckoutDate: "2026-10-03T10:00:00Z",
			NumGuests:    2,
		}, b)
	})

	t.Run("data envelope", func(t *testing.T) {
		server, _ := newServer(t, http.StatusOK, `{"data":{"id":5,"status":"APPROVED","numGuests":1}}`)

		b, err := backend.NewClient(server.URL, nil).GetBooking(context.Background(), 5)

		require.NoError(t, err)
		assert.Equal(t, bk.StatusApproved, b.Status)
	})

	t.Run("not found", func(t *testing.T) {
		server, _ := newServer(t, http.StatusNotFound, `{"message":"Booking not found"}`)

		_, err := backend.NewClient(server.URL, nil).GetBooking(context.Background(), 5)

		require.ErrorIs(t, err, bk.ErrBookingNotFound)
	})

	t.Run("context deadline", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		t.Cleanup(server.Close)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := backend.NewClient(server.URL, nil).GetBooking(ctx, 5)

		require.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}

func TestListBookings(t *testing.T) {
	server, got := newServer(t, http.StatusOK, `[{"id":1,"status":"PENDING","numGuests":1},{"id":2,"status":"PENDING","numGuests":3}]`)
	client := backend.NewClient(server.URL, nil)

	bookings, err := client.ListBookings(context.Background(), bk.Filter{Status: bk.StatusPending})

	require.NoError(t, err)
	assert.Equal(t, "status=PENDING", got.query)
	require.Len(t, bookings, 2)
	assert.Equal(t, int64(2), bookings[1].ID)
}

func TestVerifyQRToken(t *testing.T) {
	server, got := newServer(t, http.StatusOK, `{"valid":true}`)

	err := backend.NewClient(server.URL, nil).VerifyQRToken(context.Background(), "42|7")

	require.NoError(t, err)
	assert.Equal(t, "/verification/qr/verify", got.path)
	assert.Equal(t, map[string]any{"token": "42|7"}, got.body)
}

func TestJWTTokenSource(t *testing.T) {
	source := backend.NewJWTTokenSource("shh", "booking-console", time.Minute)

	first, err := source.Token(context.Background())
	require.NoError(t, err)

	second, err := source.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	parsed, err := jwt.ParseWithClaims(first, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		return []byte("shh"), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	require.NoError(t, err)

	subject, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "booking-console", subject)

	server, got := newServer(t, http.StatusOK, `[]`)
	_, err = backend.NewClient(server.URL, source).ListBookings(context.Background(), bk.Filter{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+first, got.auth)
}
