package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	bk "github.com/hanksha/tbz-booking-console/booking"
)

const maxErrorMessage = 500

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if len(e.Message) == 0 {
		return fmt.Sprintf("request failed with status '%v'", e.StatusCode)
	}

	return fmt.Sprintf("request failed with status '%v': %v", e.StatusCode, e.Message)
}

// ServerMessage is the text the backend attached to the failed response.
func (e *APIError) ServerMessage() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return bk.ErrBookingNotFound
	}

	return nil
}

type Client struct {
	baseURL string
	tokens  TokenSource
	client  *http.Client
}

func NewClient(baseURL string, tokens TokenSource) *Client {
	client := &http.Client{
		Timeout: 10 * time.Second,
	}
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		client:  client,
	}
}

func (c *Client) ListBookings(ctx context.Context, filter bk.Filter) ([]bk.Booking, error) {
	query := url.Values{}

	if len(filter.Status) != 0 {
		query.Set("status", string(filter.Status))
	}

	body, err := c.do(ctx, http.MethodGet, query, nil, "bookings")

	if err != nil {
		return nil, err
	}

	bookings := []bk.Booking{}

	if err := json.Unmarshal(unwrapData(body), &bookings); err != nil {
		return nil, fmt.Errorf("failed reading body: %w", err)
	}

	return bookings, nil
}

func (c *Client) GetBooking(ctx context.Context, id int64) (bk.Booking, error) {
	body, err := c.do(ctx, http.MethodGet, nil, nil, "bookings", strconv.FormatInt(id, 10))

	if err != nil {
		return bk.Booking{}, err
	}

	var booking bk.Booking

	if err := json.Unmarshal(unwrapData(body), &booking); err != nil {
		return bk.Booking{}, fmt.Errorf("failed reading body: %w", err)
	}

	if booking.ID == 0 {
		return bk.Booking{}, fmt.Errorf("booking %d: %w", id, bk.ErrBookingNotFound)
	}

	return booking, nil
}

func (c *Client) DecideBooking(ctx context.Context, decision bk.Decision) error {
	_, err := c.do(ctx, http.MethodPost, nil, decision, "bookings", strconv.FormatInt(decision.BookingID, 10), "approve")
	return err
}

func (c *Client) CheckoutBooking(ctx context.Context, checkout bk.Checkout) error {
	_, err := c.do(ctx, http.MethodPost, nil, checkout, "bookings", strconv.FormatInt(checkout.BookingID, 10), "checkout")
	return err
}

// VerifyQRToken asks the backend to check the token signature. Callers treat a
// failure as "not validated", not as a rejection.
func (c *Client) VerifyQRToken(ctx context.Context, token string) error {
	_, err := c.do(ctx, http.MethodPost, nil, map[string]string{"token": token}, "verification", "qr", "verify")
	return err
}

func (c *Client) do(ctx context.Context, method string, query url.Values, payload any, elem ...string) ([]byte, error) {
	reqURL, err := c.getURL(elem...)

	if err != nil {
		return nil, err
	}

	if len(query) != 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader = http.NoBody

	if payload != nil {
		body, err := json.Marshal(payload)

		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}

		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)

	if err != nil {
		return nil, fmt.Errorf("failed create new request: %w", err)
	}

	if err := c.setHeaders(ctx, req); err != nil {
		return nil, err
	}

	res, err := c.client.Do(req)

	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	defer res.Body.Close()

	bodyBytes, readErr := io.ReadAll(res.Body)

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{StatusCode: res.StatusCode, Message: errorMessage(bodyBytes)}
	}

	if readErr != nil {
		return nil, fmt.Errorf("failed to read body: %w", readErr)
	}

	return bodyBytes, nil
}

func (c *Client) setHeaders(ctx context.Context, req *http.Request) error {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.tokens == nil {
		return nil
	}

	token, err := c.tokens.Token(ctx)

	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}

	if len(token) != 0 {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return nil
}

func (c *Client) getURL(elem ...string) (string, error) {
	clientURL, err := url.JoinPath(c.baseURL, elem...)
	if err != nil {
		return "", fmt.Errorf("failed to create URL: %w", err)
	}

	return clientURL, nil
}

// errorMessage extracts the human readable part of an error body: the
// "message" or "error" field of a JSON object, otherwise the raw text.
func errorMessage(body []byte) string {
	text := strings.TrimSpace(string(body))

	if len(text) == 0 {
		return ""
	}

	var fields map[string]any

	if err := json.Unmarshal(body, &fields); err == nil {
		for _, key := range []string{"message", "error"} {
			if msg, ok := fields[key].(string); ok && len(strings.TrimSpace(msg)) != 0 {
				return msg
			}
		}

		return ""
	}

	if len(text) > maxErrorMessage {
		text = text[:maxErrorMessage]
	}

	return text
}

// unwrapData strips a {"data": ...} envelope when present.
func unwrapData(body []byte) []byte {
	var envelope map[string]json.RawMessage

	if err := json.Unmarshal(body, &envelope); err != nil {
		return body
	}

	if data, ok := envelope["data"]; ok && len(data) != 0 && string(data) != "null" {
		return data
	}

	return body
}
