package discord

import "slices"

// DiscordUser is the authenticated console operator.
type DiscordUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Admin    bool   `json:"admin"`
}

func NewDiscordUser(member *Member, adminRoleID string) DiscordUser {
	return DiscordUser{
		ID:       member.User.ID,
		Username: member.User.Username,
		Admin:    len(adminRoleID) != 0 && slices.Contains(member.Roles, adminRoleID),
	}
}
