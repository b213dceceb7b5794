package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/7Lumine/whitelistbot/internal/app/service"
	"github.com/7Lumine/whitelistbot/internal/domain"
	"github.com/7Lumine/whitelistbot/internal/infra/config"
)

const panelColor = 0x57F287

// panelMessage es el mensaje fijo con los dos botones de registro.
func panelMessage(m config.Messages) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       m.PanelTitle,
			Description: m.PanelDescription,
			Color:       panelColor,
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: m.ButtonPrimary, Style: discordgo.PrimaryButton, CustomID: btnPrimary},
				discordgo.Button{Label: m.ButtonAlternate, Style: discordgo.SuccessButton, CustomID: btnAlternate},
			}},
		},
	}
}

func registrationModal(f service.Form, ns domain.Namespace) *discordgo.InteractionResponse {
	id := modalPrimary
	if ns == domain.Alternate {
		id = modalAltern
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: id,
			Title:    f.Title,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    inputIdentity,
						Label:       f.Label,
						Style:       discordgo.TextInputShort,
						Placeholder: f.Placeholder,
						Value:       f.Value,
						Required:    true,
						MinLength:   domain.MinIdentityLen,
						MaxLength:   domain.MaxIdentityLen,
					},
				}},
			},
		},
	}
}
