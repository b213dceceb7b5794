// lógica de InteractionApplicationCommand: sólo parsea opciones y despacha a
// los servicios
package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/7Lumine/whitelistbot/internal/app/service"
	"github.com/7Lumine/whitelistbot/internal/domain"
)

func (r *Router) handleSlashCommand(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	cmd := ic.ApplicationCommandData()
	r.log.Info().Str("cmd", cmd.Name).Str("by", userID(ic)).Str("guild", ic.GuildID).Msg("slash command")

	defer r.recoverInteraction(s, ic, "/"+cmd.Name)

	_ = DeferEphemeral(s, ic)
	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	if !r.requireAdminOrRoles(s, ic) {
		return
	}

	switch cmd.Name {
	case cmdSetup:
		if _, err := s.ChannelMessageSendComplex(ic.ChannelID, panelMessage(r.msgs.Get()), discordgo.WithContext(ctx)); err != nil {
			r.log.Warn().Err(err).Str("channel", ic.ChannelID).Msg("panel publish failed")
			ReplyEphemeral(s, ic, "⚠️ "+err.Error())
			return
		}
		ReplyEphemeral(s, ic, "✅")

	case cmdWhitelist:
		sub, ok := subcmdName(ic)
		if !ok {
			ReplyEphemeral(s, ic, "/whitelist add | remove | list | reload")
			return
		}
		switch sub {
		case "add":
			player, _ := optStr(ic, "player")
			ns := domain.Primary
			if alt, _ := optBool(ic, "alternate"); alt {
				ns = domain.Alternate
			}
			_, msg := r.admin.Add(ctx, player, ns)
			ReplyEphemeral(s, ic, msg)
		case "remove":
			player, _ := optStr(ic, "player")
			_, msg := r.admin.Remove(ctx, player)
			ReplyEphemeral(s, ic, msg)
		case "list":
			ReplyEphemeral(s, ic, r.admin.List(service.ListDisplayLimit))
		case "reload":
			ReplyEphemeral(s, ic, r.admin.Reload(ctx))
		}
	}
}
