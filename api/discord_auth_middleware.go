package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hanksha/tbz-booking-console/discord"
)

const userKey = "user"

// DiscordAuth resolves the operator from a Discord access token sent in the
// "accesstoken" header or as a bearer token.
func DiscordAuth(discordClient discord.DiscordClient, adminRoleID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := accessTokenFrom(c)

		if len(accessToken) == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authentication"})
			c.Abort()
			return
		}

		member, err := discordClient.GetGuildMember(c.Request.Context(), accessToken)

		if err != nil {
			c.Error(err)
			status, message := memberFailure(err)
			c.JSON(status, gin.H{"error": message})
			c.Abort()
			return
		}

		c.Set(userKey, discord.NewDiscordUser(member, adminRoleID))
		c.Set("accessToken", accessToken)
	}
}

func memberFailure(err error) (int, string) {
	switch {
	case errors.Is(err, discord.ErrUnauthorized):
		return http.StatusUnauthorized, "invalid authentication"
	case errors.Is(err, discord.ErrNotMember):
		return http.StatusForbidden, "not a member of the server"
	default:
		return http.StatusBadGateway, "discord unavailable"
	}
}

func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, found := c.Get(userKey)
		user, ok := value.(discord.DiscordUser)

		if !found || !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authentication"})
			c.Abort()
			return
		}

		if !user.Admin {
			c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
			c.Abort()
			return
		}
	}
}

func accessTokenFrom(c *gin.Context) string {
	if token := strings.TrimSpace(c.GetHeader("accesstoken")); len(token) != 0 {
		return token
	}

	scheme, token, found := strings.Cut(c.GetHeader("Authorization"), " ")

	if found && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}

	return ""
}

// currentUser returns the zero user when the request is not authenticated.
func currentUser(c *gin.Context) discord.DiscordUser {
	value, _ := c.Get(userKey)
	user, _ := value.(discord.DiscordUser)
	return user
}
