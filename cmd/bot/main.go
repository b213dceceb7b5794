package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	discordrouter "github.com/7Lumine/whitelistbot/internal/adapters/discord"
	"github.com/7Lumine/whitelistbot/internal/adapters/httpgate"
	"github.com/7Lumine/whitelistbot/internal/adapters/webhook"
	"github.com/7Lumine/whitelistbot/internal/app/service"
	"github.com/7Lumine/whitelistbot/internal/domain"
	"github.com/7Lumine/whitelistbot/internal/infra/config"
	"github.com/7Lumine/whitelistbot/internal/infra/logging"
	"github.com/7Lumine/whitelistbot/internal/infra/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Setup("info", "console")
		log.Fatal().Err(err).Msg("config")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	// Store
	store, err := storage.Open(ctx, storage.Config{
		Driver:      cfg.StoreDriver,
		File:        cfg.WhitelistFile,
		DatabaseURL: cfg.DatabaseURL,
		RedisURL:    cfg.RedisURL,
	}, logging.Component("store"))
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("store")
	}
	log.Info().Str("driver", cfg.StoreDriver).Msg("✅ store listo")

	msgs, err := config.NewMessageBook(cfg.MessagesFile)
	if err != nil {
		log.Warn().Err(err).Msg("messages file unreadable, using defaults")
	}

	// Registry + services
	reg := service.NewRegistry(store, cfg.AlternatePrefix, service.WithLogger(logging.Component("registry")))
	reg.Load(ctx)
	registration := service.NewRegistrationService(reg, msgs)
	admin := service.NewAdminService(reg, msgs)

	relayOpts := []service.RelayOption{}
	if cfg.Chat.WebhookURL != "" {
		relayOpts = append(relayOpts, service.WithAvatarSender(webhook.New(cfg.Chat.WebhookURL)))
	}

	// Discord (opcional: sin token sólo corre la API HTTP)
	var session *discordgo.Session
	if cfg.DiscordToken != "" {
		session, err = openSession(cfg.DiscordToken)
		if err != nil {
			log.Fatal().Err(err).Msg("discord")
		}
		log.Info().Str("user", session.State.User.Username).Str("id", session.State.User.ID).Msg("✅ conectado a Discord")

		r := discordrouter.NewRouter(session, discordrouter.Deps{
			GuildID:       cfg.DiscordGuild,
			AdminRoleIDs:  cfg.AdminRoleIDs,
			ChatChannelID: cfg.Chat.ChannelID,
			Registration:  registration,
			Admin:         admin,
			Messages:      msgs,
		})
		relayOpts = append(relayOpts, service.WithChannelSender(r), service.WithPresence(r))
		relay := service.NewRelayService(cfg.Chat, msgs, service.NewOutbox(service.DefaultOutboxSize), relayOpts...)
		r.UseRelay(relay)
		if err := r.Register(); err != nil {
			log.Fatal().Err(err).Msg("registrando comandos")
		}
		r.Handlers()
		log.Info().Str("guild", cfg.DiscordGuild).Msg("✅ comandos registrados")
		run(ctx, cfg, reg, admin, relay, store, session)
		return
	}

	log.Warn().Msg("DISCORD_BOT_TOKEN is empty, running the HTTP gate only")
	relay := service.NewRelayService(cfg.Chat, msgs, service.NewOutbox(service.DefaultOutboxSize), relayOpts...)
	run(ctx, cfg, reg, admin, relay, store, nil)
}

func openSession(token string) (*discordgo.Session, error) {
	auth := strings.TrimSpace(token)
	if !strings.HasPrefix(strings.ToLower(auth), "bot ") {
		auth = "Bot " + auth
	}
	s, err := discordgo.New(auth)
	if err != nil {
		return nil, err
	}
	s.Identify.Intents = discordgo.IntentGuilds | discordgo.IntentGuildMessages | discordgo.IntentMessageContent
	if err := s.Open(); err != nil {
		return nil, err
	}
	return s, nil
}

// run sirve la API hasta la señal y apaga en orden: HTTP, aviso de stop,
// sesión, guardado final y store.
func run(ctx context.Context, cfg config.Config, reg *service.Registry, admin *service.AdminService,
	relay *service.RelayService, store storage.Store, session *discordgo.Session) {
	gate := httpgate.New(cfg.GateSecret, reg, admin, relay)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return gate.Serve(gctx, cfg.HTTPAddr) })

	_ = relay.HandleGameEvent(ctx, domain.GameEvent{Type: domain.EventServerStart})

	<-gctx.Done()
	log.Info().Msg("apagando…")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// el gate ya no acepta /events cuando g.Wait vuelve
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("http gate")
	}
	_ = relay.HandleGameEvent(shutdownCtx, domain.GameEvent{Type: domain.EventServerStop})
	relay.Close()
	if session != nil {
		if err := session.Close(); err != nil {
			log.Warn().Err(err).Msg("discord close")
		}
	}
	if err := reg.Save(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("final whitelist save failed")
	}
	if err := store.Close(); err != nil {
		log.Warn().Err(err).Msg("store close")
	}
	log.Info().Msg("bye")
}
