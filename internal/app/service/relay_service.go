package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/7Lumine/whitelistbot/internal/domain"
	"github.com/7Lumine/whitelistbot/internal/infra/config"
)

var ErrUnknownEvent = errors.New("unknown event type")

const deliveryTimeout = 10 * time.Second

// RelayService espeja el chat entre el servidor de juego y un canal de
// Discord. Las entregas hacia Discord son asíncronas y best-effort.
type RelayService struct {
	cfg      config.Chat
	msgs     *config.MessageBook
	chat     ChannelSender  // nil sin sesión de Discord
	avatar   AvatarSender   // nil sin webhook
	presence PresenceSetter // nil sin sesión de Discord
	outbox   *Outbox
	log      zerolog.Logger

	mu     sync.Mutex // protege closed y los wg.Add
	closed bool
	wg     sync.WaitGroup
}

type RelayOption func(*RelayService)

func WithChannelSender(c ChannelSender) RelayOption {
	return func(s *RelayService) { s.chat = c }
}

func WithAvatarSender(a AvatarSender) RelayOption {
	return func(s *RelayService) { s.avatar = a }
}

func WithPresence(p PresenceSetter) RelayOption {
	return func(s *RelayService) { s.presence = p }
}

func NewRelayService(cfg config.Chat, msgs *config.MessageBook, outbox *Outbox, opts ...RelayOption) *RelayService {
	s := &RelayService{
		cfg:    cfg,
		msgs:   msgs,
		outbox: outbox,
		log:    log.With().Str("component", "relay").Logger(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *RelayService) Outbox() *Outbox { return s.outbox }

// HandleGameEvent formatea el evento y lo entrega en segundo plano. Sólo
// falla si el tipo es desconocido.
func (s *RelayService) HandleGameEvent(ctx context.Context, ev domain.GameEvent) error {
	if !ev.Type.Valid() {
		return ErrUnknownEvent
	}
	if ev.Online != nil && ev.Max != nil {
		s.updatePresence(*ev.Online, *ev.Max)
	}
	if !s.cfg.Enabled {
		return nil
	}

	m := s.msgs.Get()
	player := EscapeMarkdown(ev.Player)
	var text string
	switch ev.Type {
	case domain.EventChat:
		if !s.cfg.GameToDiscord || strings.TrimSpace(ev.Message) == "" {
			return nil
		}
		s.async(ctx, func(ctx context.Context) error {
			return s.sendPlayerChat(ctx, ev.Player, EscapeMarkdown(ev.Message))
		})
		return nil
	case domain.EventJoin, domain.EventLeave:
		if !s.cfg.JoinLeave {
			return nil
		}
		tmpl := m.JoinToDiscord
		if ev.Type == domain.EventLeave {
			tmpl = m.LeaveToDiscord
		}
		text = config.Render(tmpl, "player", player)
	case domain.EventDeath:
		if !s.cfg.Death {
			return nil
		}
		msg := ev.Message
		if msg == "" {
			msg = ev.Player + " died"
		}
		text = config.Render(m.DeathToDiscord, "message", EscapeMarkdown(msg), "player", player)
	case domain.EventAdvancement:
		// recetas y logros sin título no se anuncian
		if !s.cfg.Advancement || strings.Contains(ev.AdvancementKey, "recipes/") || ev.Advancement == "" {
			return nil
		}
		text = config.Render(m.AdvancementMsg, "player", player, "advancement", EscapeMarkdown(ev.Advancement))
	case domain.EventServerStart, domain.EventServerStop:
		if !s.cfg.ServerStatus {
			return nil
		}
		text = m.ServerStart
		if ev.Type == domain.EventServerStop {
			text = m.ServerStop
		}
	}
	s.async(ctx, func(ctx context.Context) error { return s.sendChannel(ctx, text) })
	return nil
}

// HandleDiscordMessage encola un mensaje del canal para el servidor de juego.
// Devuelve false si se descartó.
func (s *RelayService) HandleDiscordMessage(channelID, author string, fromBot bool, content string) bool {
	if !s.cfg.Enabled || !s.cfg.DiscordToGame || fromBot {
		return false
	}
	if s.cfg.ChannelID == "" || channelID != s.cfg.ChannelID {
		return false
	}
	if strings.TrimSpace(content) == "" {
		return false
	}
	s.outbox.Push(config.Render(s.msgs.Get().ChatToGame, "user", author, "message", content))
	return true
}

// Wait bloquea hasta que terminen las entregas pendientes.
func (s *RelayService) Wait() { s.wg.Wait() }

// Close deja de aceptar entregas nuevas y espera las que están en vuelo.
func (s *RelayService) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *RelayService) async(ctx context.Context, fn func(context.Context) error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.log.Debug().Msg("relay closed, dropping delivery")
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	go func() {
		defer s.wg.Done()
		// el request HTTP que originó el evento ya puede haber terminado
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.log.Warn().Err(err).Msg("chat relay delivery failed")
		}
	}()
}

func (s *RelayService) sendPlayerChat(ctx context.Context, player, text string) error {
	if s.avatar != nil {
		return s.avatar.SendPlayerMessage(ctx, player, text)
	}
	return s.sendChannel(ctx, config.Render(s.msgs.Get().ChatToDiscord, "player", EscapeMarkdown(player), "message", text))
}

func (s *RelayService) sendChannel(ctx context.Context, text string) error {
	if s.chat == nil || text == "" {
		s.log.Debug().Msg("no discord channel attached, dropping relay message")
		return nil
	}
	return s.chat.SendChannelMessage(ctx, text)
}

func (s *RelayService) updatePresence(online, maxPlayers int) {
	if s.presence == nil {
		return
	}
	status := config.Render(s.msgs.Get().PresenceStatus, "online", strconv.Itoa(online), "max", strconv.Itoa(maxPlayers))
	if err := s.presence.SetPresence(status); err != nil {
		s.log.Warn().Err(err).Msg("presence update failed")
	}
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`_`, `\_`,
	`~`, `\~`,
	"`", "\\`",
	`|`, `\|`,
	`>`, `\>`,
)

// EscapeMarkdown neutraliza el formato de Discord en textos del juego.
func EscapeMarkdown(s string) string { return markdownEscaper.Replace(s) }

// DefaultOutboxSize es cuántos mensajes Discord → juego se retienen sin drenar.
const DefaultOutboxSize = 100

// Outbox es una cola acotada; si se llena se descartan los más viejos.
type Outbox struct {
	mu      sync.Mutex
	buf     []string
	size    int
	dropped int
}

func NewOutbox(size int) *Outbox {
	if size <= 0 {
		size = DefaultOutboxSize
	}
	return &Outbox{size: size}
}

func (o *Outbox) Push(msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.buf) == o.size {
		o.buf = o.buf[1:]
		o.dropped++
	}
	o.buf = append(o.buf, msg)
}

// Drain devuelve y vacía la cola en orden de llegada.
func (o *Outbox) Drain() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.buf
	o.buf = nil
	if out == nil {
		return []string{}
	}
	return out
}

func (o *Outbox) Dropped() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dropped
}
