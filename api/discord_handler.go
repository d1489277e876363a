package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hanksha/tbz-booking-console/discord"
)

type DiscordHandler struct {
	client      discord.DiscordClient
	adminRoleID string
}

// Session is returned to the console once an operator completes the Discord
// login.
type Session struct {
	AccessToken string              `json:"accessToken"`
	TokenType   string              `json:"tokenType"`
	ExpiresIn   int                 `json:"expiresIn"`
	User        discord.DiscordUser `json:"user"`
}

func NewDiscordHandler(client discord.DiscordClient, adminRoleID string) *DiscordHandler {
	return &DiscordHandler{
		client:      client,
		adminRoleID: adminRoleID,
	}
}

func (h *DiscordHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/user/info", DiscordAuth(h.client, h.adminRoleID), h.GetUserInfo)
	rg.GET("/oauth/callback", h.OAuthCallback)
}

func (h *DiscordHandler) GetUserInfo(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

// OAuthCallback exchanges the login code and resolves the operator, so the
// console learns in one round trip whether it may show admin actions.
func (h *DiscordHandler) OAuthCallback(c *gin.Context) {
	code := strings.TrimSpace(c.Query("code"))

	if len(code) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code cannot be empty"})
		return
	}

	token, err := h.client.GetOAuth2Token(c.Request.Context(), code)

	if err != nil {
		c.Error(err)
		if errors.Is(err, discord.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "login code rejected"})
		} else {
			c.JSON(http.StatusBadGateway, gin.H{"error": "discord unavailable"})
		}
		return
	}

	member, err := h.client.GetGuildMember(c.Request.Context(), token.AccessToken)

	if err != nil {
		c.Error(err)
		status, message := memberFailure(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, Session{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   token.ExpiresIn,
		User:        discord.NewDiscordUser(member, h.adminRoleID),
	})
}
