package discord

import "github.com/bwmarrin/discordgo"

func (r *Router) requireAdminOrRoles(s *discordgo.Session, ic *discordgo.InteractionCreate) bool {
	if ic.Member == nil {
		ReplyEphemeral(s, ic, r.msgs.Get().NoPermission)
		return false
	}
	var ownerID string
	if g, _ := s.State.Guild(ic.GuildID); g != nil {
		ownerID = g.OwnerID
	}
	var roles []*discordgo.Role
	if ic.Member.Permissions&discordgo.PermissionAdministrator == 0 {
		roles, _ = s.GuildRoles(ic.GuildID)
	}
	if isAdmin(ic.Member, ownerID, roles, r.adminRoleIDs) {
		return true
	}
	ReplyEphemeral(s, ic, r.msgs.Get().NoPermission)
	return false
}

// isAdmin: dueño del guild, bit Administrator (en la interacción o por sus
// roles) o alguno de los roles configurados.
func isAdmin(m *discordgo.Member, ownerID string, guildRoles []*discordgo.Role, adminRoleIDs []string) bool {
	if m == nil {
		return false
	}
	if m.User != nil && ownerID != "" && m.User.ID == ownerID {
		return true
	}
	if m.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}

	has := make(map[string]struct{}, len(m.Roles))
	for _, rid := range m.Roles {
		has[rid] = struct{}{}
	}
	for _, ro := range guildRoles {
		if _, ok := has[ro.ID]; ok && ro.Permissions&discordgo.PermissionAdministrator != 0 {
			return true
		}
	}
	for _, want := range adminRoleIDs {
		if _, ok := has[want]; ok {
			return true
		}
	}
	return false
}
