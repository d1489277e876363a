package checkin

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Payload is the untrusted content of a scanned token.
type Payload struct {
	BookingID int64  `json:"bookingId"`
	UserID    string `json:"userId,omitempty"`
}

// DecodeFunc interprets raw in one encoding.
type DecodeFunc func(raw string) (Payload, bool)

// decoders are tried in order; the first success wins.
var decoders = []DecodeFunc{
	decodePipe,
	decodeBase64URLJSON,
	decodeBase64JSON,
	decodeRawJSON,
	decodeNumeric,
}

// Decode reports false when raw does not carry a booking id in any known
// encoding.
func Decode(raw string) (Payload, bool) {
	raw = strings.TrimSpace(raw)

	if len(raw) == 0 {
		return Payload{}, false
	}

	for _, decode := range decoders {
		if payload, ok := decode(raw); ok {
			return payload, true
		}
	}

	return Payload{}, false
}

// decodePipe reads "<bookingId>|<userId>".
func decodePipe(raw string) (Payload, bool) {
	id, userID, found := strings.Cut(raw, "|")

	if !found {
		return Payload{}, false
	}

	bookingID, ok := parseDigits(id)

	if !ok {
		return Payload{}, false
	}

	return Payload{BookingID: bookingID, UserID: strings.TrimSpace(userID)}, true
}

var urlSafe = strings.NewReplacer("-", "+", "_", "/")

func decodeBase64URLJSON(raw string) (Payload, bool) {
	return decodeBase64Object(urlSafe.Replace(raw))
}

func decodeBase64JSON(raw string) (Payload, bool) {
	return decodeBase64Object(raw)
}

func decodeRawJSON(raw string) (Payload, bool) {
	return decodeObject([]byte(raw))
}

func decodeNumeric(raw string) (Payload, bool) {
	bookingID, ok := parseDigits(raw)

	if !ok {
		return Payload{}, false
	}

	return Payload{BookingID: bookingID}, true
}

func decodeBase64Object(s string) (Payload, bool) {
	if rem := len(s) % 4; rem != 0 {
		s += strings.Repeat("=", 4-rem)
	}

	data, err := base64.StdEncoding.DecodeString(s)

	if err != nil {
		return Payload{}, false
	}

	return decodeObject(data)
}

// decodeObject accepts a JSON object carrying bookingId, id or booking_id
// (first present wins) and optionally userId or user_id.
func decodeObject(data []byte) (Payload, bool) {
	var fields map[string]any

	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return Payload{}, false
	}

	raw, found := firstPresent(fields, "bookingId", "id", "booking_id")

	if !found {
		return Payload{}, false
	}

	bookingID, ok := idValue(raw)

	if !ok {
		return Payload{}, false
	}

	payload := Payload{BookingID: bookingID}

	if user, found := firstPresent(fields, "userId", "user_id"); found {
		payload.UserID = stringValue(user)
	}

	return payload, true
}

func firstPresent(fields map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		if value, ok := fields[key]; ok && value != nil {
			return value, true
		}
	}

	return nil, false
}

func idValue(value any) (int64, bool) {
	switch v := value.(type) {
	case float64:
		if v <= 0 || v != math.Trunc(v) || v >= 1<<63 {
			return 0, false
		}
		return int64(v), true
	case string:
		return parseDigits(strings.TrimSpace(v))
	default:
		return 0, false
	}
}

func stringValue(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func parseDigits(s string) (int64, bool) {
	if len(s) == 0 {
		return 0, false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}

	id, err := strconv.ParseInt(s, 10, 64)

	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}
