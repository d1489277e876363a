package api_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hanksha/tbz-booking-console/api"
	"github.com/hanksha/tbz-booking-console/discord"
	discord_mocks "github.com/hanksha/tbz-booking-console/discord/mocks"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func setupDiscordRouter(t *testing.T) (*gin.Engine, *gomock.Controller, *discord_mocks.MockDiscordClient) {
	t.Helper()
	ctrl := gomock.NewController(t)

	gin.SetMode(gin.TestMode)
	router := gin.Default()
	client := discord_mocks.NewMockDiscordClient(ctrl)
	api.NewDiscordHandler(client, "admin-role").Register(router.Group("/api/discord"))

	return router, ctrl, client
}

var adminMember = &discord.Member{
	User:  discord.User{ID: "u1", Username: "alice"},
	Roles: []string{"admin-role"},
}

func TestDiscordAuth(t *testing.T) {

	t.Run("accesstoken header", func(t *testing.T) {
		router, ctrl, client := setupDiscordRouter(t)
		defer ctrl.Finish()

		client.EXPECT().GetGuildMember(gomock.Any(), "tok").Return(adminMember, nil).Times(1)

		req, _ := http.NewRequest("GET", "/api/discord/user/info", nil)
		req.Header.Set("accesstoken", "tok")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, 200, w.Code)
		assert.JSONEq(t, `{"id":"u1","username":"alice","admin":true}`, w.Body.String())
	})

	t.Run("bearer header", func(t *testing.T) {
		router, ctrl, client := setupDiscordRouter(t)
		defer ctrl.Finish()

		client.EXPECT().GetGuildMember(gomock.Any(), "tok").Return(&discord.Member{User: discord.User{ID: "u2"}}, nil).Times(1)

		req, _ := http.NewRequest("GET", "/api/discord/user/info", nil)
		req.Header.Set("Authorization", "Bearer tok")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, 200, w.Code)
		assert.JSONEq(t, `{"id":"u2","username":"","admin":false}`, w.Body.String())
	})

	t.Run("missing token", func(t *testing.T) {
		router, ctrl, client := setupDiscordRouter(t)
		defer ctrl.Finish()

		client.EXPECT().GetGuildMember(gomock.Any(), gomock.Any()).Times(0)

		w := serve(router, "GET", "/api/discord/user/info", "")

		assert.Equal(t, 401, w.Code)
		assert.JSONEq(t, `{"error":"missing authentication"}`, w.Body.String())
	})

	t.Run("discord refusals", func(t *testing.T) {
		tests := []struct {
			name    string
			err     error
			code    int
			message string
		}{
			{
				name:    "rejected token",
				err:     &discord.RequestError{Endpoint: "/users/@me/guilds/s/member", StatusCode: 401},
				code:    401,
				message: "invalid authentication",
			},
			{
				name:    "not in the server",
				err:     &discord.RequestError{Endpoint: "/users/@me/guilds/s/member", StatusCode: 404},
				code:    403,
				message: "not a member of the server",
			},
			{
				name:    "discord down",
				err:     assert.AnError,
				code:    502,
				message: "discord unavailable",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				router, ctrl, client := setupDiscordRouter(t)
				defer ctrl.Finish()

				client.EXPECT().GetGuildMember(gomock.Any(), "bad").Return(nil, tt.err).Times(1)

				req, _ := http.NewRequest("GET", "/api/discord/user/info", nil)
				req.Header.Set("accesstoken", "bad")
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)

				assert.Equal(t, tt.code, w.Code)
				assert.JSONEq(t, `{"error":"`+tt.message+`"}`, w.Body.String())
			})
		}
	})
}

func TestOAuthCallback(t *testing.T) {

	t.Run("success resolves the operator", func(t *testing.T) {
		router, ctrl, client := setupDiscordRouter(t)
		defer ctrl.Finish()

		gomock.InOrder(
			client.EXPECT().GetOAuth2Token(gomock.Any(), "abc").
				Return(&discord.OAuthToken{AccessToken: "at", TokenType: "Bearer", ExpiresIn: 604800}, nil),
			client.EXPECT().GetGuildMember(gomock.Any(), "at").Return(adminMember, nil),
		)

		w := serve(router, "GET", "/api/discord/oauth/callback?code=abc", "")

		assert.Equal(t, 200, w.Code)
		assert.JSONEq(t, `{
			"accessToken": "at",
			"tokenType": "Bearer",
			"expiresIn": 604800,
			"user": {"id":"u1","username":"alice","admin":true}
		}`, w.Body.String())
	})

	t.Run("code rejected", func(t *testing.T) {
		router, ctrl, client := setupDiscordRouter(t)
		defer ctrl.Finish()

		client.EXPECT().GetOAuth2Token(gomock.Any(), "stale").
			Return(nil, fmt.Errorf("%w: invalid_grant", discord.ErrUnauthorized)).Times(1)
		client.EXPECT().GetGuildMember(gomock.Any(), gomock.Any()).Times(0)

		w := serve(router, "GET", "/api/discord/oauth/callback?code=stale", "")

		assert.Equal(t, 401, w.Code)
		assert.JSONEq(t, `{"error":"login code rejected"}`, w.Body.String())
	})

	t.Run("operator outside the server", func(t *testing.T) {
		router, ctrl, client := setupDiscordRouter(t)
		defer ctrl.Finish()

		client.EXPECT().GetOAuth2Token(gomock.Any(), "abc").Return(&discord.OAuthToken{AccessToken: "at"}, nil).Times(1)
		client.EXPECT().GetGuildMember(gomock.Any(), "at").Return(nil, &discord.RequestError{StatusCode: 404}).Times(1)

		w := serve(router, "GET", "/api/discord/oauth/callback?code=abc", "")

		assert.Equal(t, 403, w.Code)
	})

	t.Run("missing code", func(t *testing.T) {
		router, ctrl, client := setupDiscordRouter(t)
		defer ctrl.Finish()

		client.EXPECT().GetOAuth2Token(gomock.Any(), gomock.Any()).Times(0)

		w := serve(router, "GET", "/api/discord/oauth/callback", "")

		assert.Equal(t, 400, w.Code)
	})
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(api.RequestID())
	router.GET("/ping", func(c *gin.Context) {
		c.String(200, c.GetString("requestId"))
	})

	w := serve(router, "GET", "/ping", "")
	generated := w.Header().Get(api.RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req, _ := http.NewRequest("GET", "/ping", nil)
	req.Header.Set(api.RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(api.RequestIDHeader))
}
