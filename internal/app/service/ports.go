package service

import (
	"context"
	"time"

	"github.com/7Lumine/whitelistbot/internal/domain"
)

// Lo implementan internal/infra/storage (yaml, sql, redis).
type Store interface {
	Load(ctx context.Context) ([]domain.Entry, error)
	Save(ctx context.Context, entries []domain.Entry) error
}

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Lo implementa internal/adapters/discord.Router (mensaje normal del bot).
type ChannelSender interface {
	SendChannelMessage(ctx context.Context, content string) error
}

// Lo implementa internal/adapters/webhook.Client: publica como el jugador,
// con su avatar.
type AvatarSender interface {
	SendPlayerMessage(ctx context.Context, player, content string) error
}

// Lo implementa internal/adapters/discord.Router.
type PresenceSetter interface {
	SetPresence(status string) error
}
