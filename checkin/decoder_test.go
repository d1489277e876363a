package checkin

import (
	"encoding/base64"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const payloadJSON = `{"bookingId":42,"userId":"7"}`

func TestDecode(t *testing.T) {
	want := Payload{BookingID: 42, UserID: "7"}

	tests := []struct {
		name string
		raw  string
	}{
		{"pipe", "42|7"},
		{"base64url json", base64.RawURLEncoding.EncodeToString([]byte(payloadJSON))},
		{"base64 json", base64.StdEncoding.EncodeToString([]byte(payloadJSON))},
		{"raw json", payloadJSON},
		{"surrounding whitespace", "  42|7\n"},
		{"snake case fields", `{"booking_id":"42","user_id":"7"}`},
		{"id alias with numeric user", `{"id":42,"userId":7}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Decode(tt.raw)

			require.True(t, ok)
			assert.Equal(t, want, got)
		})
	}
}

func TestDecodeNumeric(t *testing.T) {
	got, ok := Decode("42")

	require.True(t, ok)
	assert.Equal(t, Payload{BookingID: 42}, got)
}

func TestDecodeRejects(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"not-a-token",
		"abc|7",
		"-5",
		"0",
		"4.2",
		`{"userId":"7"}`,
		`{"bookingId":"4x"}`,
		`{"bookingId":-1}`,
		`{"bookingId":9223372036854775808}`,
		`{"id":1e19}`,
		"9223372036854775808",
		`[42]`,
		base64.StdEncoding.EncodeToString([]byte(`"just a string"`)),
	} {
		_, ok := Decode(raw)
		assert.False(t, ok, raw)
	}
}

func TestDecodeLargeIDs(t *testing.T) {
	got, ok := Decode(`{"bookingId":9007199254740992}`)
	require.True(t, ok)
	assert.Equal(t, int64(1<<53), got.BookingID)

	got, ok = Decode("9223372036854775807")
	require.True(t, ok)
	assert.Equal(t, int64(math.MaxInt64), got.BookingID)
}

func TestDecodeFieldPrecedence(t *testing.T) {
	got, ok := decodeObject([]byte(`{"booking_id":3,"id":2,"bookingId":1,"user_id":"b","userId":"a"}`))
	require.True(t, ok)
	assert.Equal(t, Payload{BookingID: 1, UserID: "a"}, got)

	got, ok = decodeObject([]byte(`{"bookingId":null,"id":2,"booking_id":3}`))
	require.True(t, ok)
	assert.Equal(t, int64(2), got.BookingID)
}

func TestDecodersIndependently(t *testing.T) {
	urlToken := base64.RawURLEncoding.EncodeToString([]byte(`{"bookingId":42,"userId":"~~~?"}`))

	_, ok := decodePipe(urlToken)
	assert.False(t, ok)

	got, ok := decodeBase64URLJSON(urlToken)
	require.True(t, ok)
	assert.Equal(t, "~~~?", got.UserID)

	_, ok = decodeBase64JSON(urlToken)
	assert.False(t, ok)

	_, ok = decodeRawJSON("42|7")
	assert.False(t, ok)

	_, ok = decodeNumeric("42|7")
	assert.False(t, ok)

	got, ok = decodePipe("42|")
	require.True(t, ok)
	assert.Equal(t, Payload{BookingID: 42}, got)
}
