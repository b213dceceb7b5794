package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7Lumine/whitelistbot/internal/domain"
	"github.com/7Lumine/whitelistbot/internal/infra/config"
)

type recorder struct {
	mu       sync.Mutex
	channel  []string
	avatar   []string
	presence []string
	err      error
}

func (r *recorder) SendChannelMessage(_ context.Context, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channel = append(r.channel, content)
	return r.err
}

func (r *recorder) SendPlayerMessage(_ context.Context, player, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.avatar = append(r.avatar, player+"|"+content)
	return r.err
}

func (r *recorder) SetPresence(status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presence = append(r.presence, status)
	return r.err
}

func allOn() config.Chat {
	return config.Chat{
		Enabled: true, ChannelID: "chan", GameToDiscord: true, DiscordToGame: true,
		JoinLeave: true, Death: true, Advancement: true, ServerStatus: true,
	}
}

func newRelay(cfg config.Chat, rec *recorder, withAvatar bool) *RelayService {
	opts := []RelayOption{WithChannelSender(rec), WithPresence(rec)}
	if withAvatar {
		opts = append(opts, WithAvatarSender(rec))
	}
	return NewRelayService(cfg, config.StaticMessages(config.DefaultMessages()), NewOutbox(0), opts...)
}

func intp(i int) *int { return &i }

func TestRelay_GameEvents(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	s := newRelay(allOn(), rec, false)
	m := config.DefaultMessages()

	events := []domain.GameEvent{
		{Type: domain.EventJoin, Player: "Steve_X"},
		{Type: domain.EventDeath, Player: "Steve_X", Message: "Steve_X fell from a high place"},
		{Type: domain.EventAdvancement, Player: "Steve_X", Advancement: "Stone Age", AdvancementKey: "minecraft:story/mine_stone"},
		{Type: domain.EventAdvancement, Player: "Steve_X", Advancement: "Bread", AdvancementKey: "minecraft:recipes/food/bread"},
		{Type: domain.EventAdvancement, Player: "Steve_X", AdvancementKey: "minecraft:story/hidden"},
		{Type: domain.EventServerStop},
	}
	for _, ev := range events {
		require.NoError(t, s.HandleGameEvent(ctx, ev))
		s.Wait()
	}

	assert.Equal(t, []string{
		config.Render(m.JoinToDiscord, "player", `Steve\_X`),
		config.Render(m.DeathToDiscord, "message", `Steve\_X fell from a high place`),
		config.Render(m.AdvancementMsg, "player", `Steve\_X`, "advancement", "Stone Age"),
		m.ServerStop,
	}, rec.channel)
}

func TestRelay_ChatUsesAvatarWhenConfigured(t *testing.T) {
	ctx := context.Background()
	m := config.DefaultMessages()

	rec := &recorder{}
	s := newRelay(allOn(), rec, true)
	require.NoError(t, s.HandleGameEvent(ctx, domain.GameEvent{Type: domain.EventChat, Player: "Alex", Message: "hi *all*"}))
	s.Wait()
	assert.Equal(t, []string{`Alex|hi \*all\*`}, rec.avatar)
	assert.Empty(t, rec.channel)

	rec = &recorder{}
	s = newRelay(allOn(), rec, false)
	require.NoError(t, s.HandleGameEvent(ctx, domain.GameEvent{Type: domain.EventChat, Player: "Alex", Message: "hi"}))
	s.Wait()
	assert.Equal(t, []string{config.Render(m.ChatToDiscord, "player", "Alex", "message", "hi")}, rec.channel)
}

func TestRelay_Toggles(t *testing.T) {
	ctx := context.Background()

	rec := &recorder{}
	off := allOn()
	off.Enabled = false
	s := newRelay(off, rec, false)
	require.NoError(t, s.HandleGameEvent(ctx, domain.GameEvent{Type: domain.EventJoin, Player: "A", Online: intp(1), Max: intp(20)}))
	s.Wait()
	assert.Empty(t, rec.channel)
	assert.Equal(t, []string{"Minecraft | 1/20"}, rec.presence, "presence does not depend on chat sync")

	rec = &recorder{}
	cfg := allOn()
	cfg.JoinLeave, cfg.Death, cfg.ServerStatus, cfg.GameToDiscord = false, false, false, false
	s = newRelay(cfg, rec, false)
	for _, ev := range []domain.GameEvent{
		{Type: domain.EventLeave, Player: "A"},
		{Type: domain.EventDeath, Player: "A"},
		{Type: domain.EventServerStart},
		{Type: domain.EventChat, Player: "A", Message: "x"},
	} {
		require.NoError(t, s.HandleGameEvent(ctx, ev))
	}
	s.Wait()
	assert.Empty(t, rec.channel)
}

func TestRelay_UnknownEvent(t *testing.T) {
	s := newRelay(allOn(), &recorder{}, false)
	assert.ErrorIs(t, s.HandleGameEvent(context.Background(), domain.GameEvent{Type: "explode"}), ErrUnknownEvent)
}

func TestRelay_DeliveryErrorsAreSwallowed(t *testing.T) {
	rec := &recorder{err: errors.New("discord down")}
	s := newRelay(allOn(), rec, false)
	assert.NoError(t, s.HandleGameEvent(context.Background(), domain.GameEvent{Type: domain.EventServerStart}))
	s.Wait()
	assert.Len(t, rec.channel, 1)
}

func TestRelay_NoDiscordAttached(t *testing.T) {
	s := NewRelayService(allOn(), config.StaticMessages(config.DefaultMessages()), NewOutbox(0))
	assert.NoError(t, s.HandleGameEvent(context.Background(), domain.GameEvent{Type: domain.EventJoin, Player: "A", Online: intp(1), Max: intp(2)}))
	s.Wait()
}

func TestRelay_DiscordToGame(t *testing.T) {
	s := newRelay(allOn(), &recorder{}, false)

	assert.True(t, s.HandleDiscordMessage("chan", "bob", false, "hello"))
	assert.False(t, s.HandleDiscordMessage("other", "bob", false, "hello"))
	assert.False(t, s.HandleDiscordMessage("chan", "bot", true, "hello"))
	assert.False(t, s.HandleDiscordMessage("chan", "bob", false, "   "))

	assert.Equal(t, []string{"[Discord] bob: hello"}, s.Outbox().Drain())
	assert.Empty(t, s.Outbox().Drain())

	cfg := allOn()
	cfg.DiscordToGame = false
	assert.False(t, newRelay(cfg, &recorder{}, false).HandleDiscordMessage("chan", "bob", false, "hello"))
}

func TestOutbox_DropsOldest(t *testing.T) {
	o := NewOutbox(2)
	o.Push("a")
	o.Push("b")
	o.Push("c")
	assert.Equal(t, []string{"b", "c"}, o.Drain())
	assert.Equal(t, 1, o.Dropped())
	assert.NotNil(t, o.Drain())
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `\*\*bold\*\* \_x\_ \~\~ \`+"`"+`code\`+"`"+` \| \> a\\b`, EscapeMarkdown("**bold** _x_ ~~ `code` | > a\\b"))
}

func TestRelay_CloseStopsDeliveries(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	s := newRelay(allOn(), rec, false)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.HandleGameEvent(ctx, domain.GameEvent{Type: domain.EventJoin, Player: "Steve"})
		}()
	}
	s.Close()
	wg.Wait()
	s.Wait()

	rec.mu.Lock()
	before := len(rec.channel)
	rec.mu.Unlock()

	require.NoError(t, s.HandleGameEvent(ctx, domain.GameEvent{Type: domain.EventServerStop}))
	s.Wait()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Len(t, rec.channel, before)
	assert.LessOrEqual(t, before, 20)
}
