package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/7Lumine/whitelistbot/internal/domain"
)

// handleMessageComponent responde a los botones del panel con un modal. No
// se puede diferir: el modal tiene que ser la primera respuesta.
func (r *Router) handleMessageComponent(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	data := ic.MessageComponentData()
	defer r.recoverInteraction(s, ic, data.CustomID)

	ns, ok := namespaceForButton(data.CustomID)
	if !ok {
		return
	}
	if !r.clickLimiter.Allow(userID(ic)) {
		_ = SendEphemeral(s, ic, "⏳")
		return
	}
	form := r.registration.FormFor(userID(ic), ns)
	if err := s.InteractionRespond(ic.Interaction, registrationModal(form, ns)); err != nil {
		r.log.Warn().Err(err).Str("custom_id", data.CustomID).Msg("modal open failed")
	}
}

func (r *Router) handleModalSubmit(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	data := ic.ModalSubmitData()
	defer r.recoverInteraction(s, ic, data.CustomID)

	ns, ok := namespaceForModal(data.CustomID)
	if !ok {
		return
	}
	_ = DeferEphemeral(s, ic)
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	defer r.step("modal.submit")()
	account := userID(ic)
	res, msg := r.registration.Submit(ctx, account, modalValue(data.Components, inputIdentity), ns)
	r.log.Info().Str("account", account).Str("namespace", ns.String()).Stringer("result", res).Msg("registration submitted")
	ReplyEphemeral(s, ic, msg)
}

func namespaceForButton(customID string) (domain.Namespace, bool) {
	switch customID {
	case btnPrimary:
		return domain.Primary, true
	case btnAlternate:
		return domain.Alternate, true
	}
	return domain.Primary, false
}

func namespaceForModal(customID string) (domain.Namespace, bool) {
	switch customID {
	case modalPrimary:
		return domain.Primary, true
	case modalAltern:
		return domain.Alternate, true
	}
	return domain.Primary, false
}

// modalValue busca el text input id entre las filas del modal.
func modalValue(rows []discordgo.MessageComponent, id string) string {
	for _, row := range rows {
		var inner []discordgo.MessageComponent
		switch v := row.(type) {
		case *discordgo.ActionsRow:
			inner = v.Components
		case discordgo.ActionsRow:
			inner = v.Components
		}
		for _, c := range inner {
			switch in := c.(type) {
			case *discordgo.TextInput:
				if in.CustomID == id {
					return in.Value
				}
			case discordgo.TextInput:
				if in.CustomID == id {
					return in.Value
				}
			}
		}
	}
	return ""
}
