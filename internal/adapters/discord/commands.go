package discord

import "github.com/bwmarrin/discordgo"

const (
	cmdSetup     = "setup-whitelist"
	cmdWhitelist = "whitelist"

	// custom ids de botones y modales
	btnPrimary    = "whitelist_register_primary"
	btnAlternate  = "whitelist_register_alternate"
	modalPrimary  = "whitelist_modal_primary"
	modalAltern   = "whitelist_modal_alternate"
	inputIdentity = "identity"
)

var adminOnly int64 = discordgo.PermissionAdministrator

var Commands = []*discordgo.ApplicationCommand{
	{
		Name:                     cmdSetup,
		Description:              "Publica el panel de registro de whitelist en este canal",
		DefaultMemberPermissions: &adminOnly,
	},
	{
		Name:                     cmdWhitelist,
		Description:              "Administra la whitelist (admins)",
		DefaultMemberPermissions: &adminOnly,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "add",
				Description: "Agrega un jugador sin cuenta vinculada",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "player", Description: "Nombre en el juego", Required: true},
					{Type: discordgo.ApplicationCommandOptionBoolean, Name: "alternate", Description: "Cliente alternativo (Bedrock)"},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "remove",
				Description: "Quita un jugador (nombre tal como está guardado)",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "player", Description: "Nombre guardado", Required: true},
				},
			},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "list", Description: "Lista la whitelist"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "reload", Description: "Relee whitelist y textos"},
		},
	},
}
