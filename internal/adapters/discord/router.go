package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/7Lumine/whitelistbot/internal/app/service"
	"github.com/7Lumine/whitelistbot/internal/infra/config"
)

type Router struct {
	s             *discordgo.Session
	guildID       string
	adminRoleIDs  []string
	chatChannelID string

	registration *service.RegistrationService
	admin        *service.AdminService
	relay        *service.RelayService
	msgs         *config.MessageBook

	clickLimiter *userLimiter
	log          zerolog.Logger
}

type Deps struct {
	GuildID       string
	AdminRoleIDs  []string
	ChatChannelID string
	Registration  *service.RegistrationService
	Admin         *service.AdminService
	Messages      *config.MessageBook
}

func NewRouter(s *discordgo.Session, d Deps) *Router {
	return &Router{
		s:             s,
		guildID:       d.GuildID,
		adminRoleIDs:  d.AdminRoleIDs,
		chatChannelID: d.ChatChannelID,
		registration:  d.Registration,
		admin:         d.Admin,
		msgs:          d.Messages,
		clickLimiter:  newUserLimiter(1 * time.Second),
		log:           log.With().Str("component", "discord").Logger(),
	}
}

// UseRelay conecta el espejo de chat. El relay usa al Router como
// ChannelSender, por eso se arma después.
func (r *Router) UseRelay(relay *service.RelayService) { r.relay = relay }

func (r *Router) Register() error {
	appID := r.s.State.User.ID
	for _, cmd := range Commands {
		if _, err := r.s.ApplicationCommandCreate(appID, r.guildID, cmd); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) Handlers() {
	r.s.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		switch ic.Type {
		case discordgo.InteractionApplicationCommand:
			r.handleSlashCommand(s, ic)
		case discordgo.InteractionMessageComponent:
			r.handleMessageComponent(s, ic)
		case discordgo.InteractionModalSubmit:
			r.handleModalSubmit(s, ic)
		}
	})

	r.s.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		r.handleMessageCreate(m)
	})
}

// SendChannelMessage publica en el canal de chat como el bot.
func (r *Router) SendChannelMessage(ctx context.Context, content string) error {
	_, err := r.s.ChannelMessageSendComplex(r.chatChannelID, &discordgo.MessageSend{
		Content:         content,
		AllowedMentions: &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}},
	}, discordgo.WithContext(ctx))
	return err
}

// SetPresence muestra status como "Jugando a …".
func (r *Router) SetPresence(status string) error {
	return r.s.UpdateGameStatus(0, status)
}

func (r *Router) handleMessageCreate(m *discordgo.MessageCreate) {
	if r.relay == nil || m.Author == nil {
		return
	}
	if r.relay.HandleDiscordMessage(m.ChannelID, authorName(m), m.Author.Bot, m.ContentWithMentionsReplaced()) {
		r.log.Debug().Str("author", m.Author.ID).Msg("chat queued for game")
	}
}

// recoverInteraction evita que un panic en un handler tire la sesión.
func (r *Router) recoverInteraction(s *discordgo.Session, ic *discordgo.InteractionCreate, what string) {
	if rec := recover(); rec != nil {
		r.log.Error().Interface("panic", rec).Str("interaction", what).Msg("panic in interaction handler")
		ReplyEphemeral(s, ic, r.msgs.Get().GenericError)
	}
}

func authorName(m *discordgo.MessageCreate) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	if m.Author.GlobalName != "" {
		return m.Author.GlobalName
	}
	return m.Author.Username
}

func userID(ic *discordgo.InteractionCreate) string {
	if ic.Member != nil && ic.Member.User != nil {
		return ic.Member.User.ID
	}
	if ic.User != nil {
		return ic.User.ID
	}
	return ""
}
