package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	DiscordToken string   `env:"DISCORD_BOT_TOKEN"` // vacío: sólo API HTTP
	DiscordGuild string   `env:"DISCORD_GUILD_ID"`
	AdminRoleIDs []string `env:"ADMIN_ROLE_IDS" envSeparator:","`

	AlternatePrefix string `env:"ALTERNATE_PREFIX" envDefault:"."`

	StoreDriver   string `env:"STORE_DRIVER" envDefault:"yaml"`
	WhitelistFile string `env:"WHITELIST_FILE" envDefault:"data/whitelist.yml"`
	DatabaseURL   string `env:"DATABASE_URL"`
	RedisURL      string `env:"REDIS_URL"`

	HTTPAddr   string `env:"HTTP_ADDR" envDefault:":8080"`
	GateSecret string `env:"GATE_SECRET"`

	Chat Chat

	MessagesFile string `env:"MESSAGES_FILE"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"LOG_FORMAT" envDefault:"console"`
}

// Chat agrupa el espejo de chat juego ↔ Discord. Enabled es el interruptor
// general; los demás sólo cuentan si está prendido.
type Chat struct {
	Enabled       bool   `env:"CHAT_SYNC_ENABLED" envDefault:"false"`
	ChannelID     string `env:"CHAT_CHANNEL_ID"`
	WebhookURL    string `env:"CHAT_WEBHOOK_URL"`
	GameToDiscord bool   `env:"CHAT_GAME_TO_DISCORD" envDefault:"true"`
	DiscordToGame bool   `env:"CHAT_DISCORD_TO_GAME" envDefault:"true"`
	JoinLeave     bool   `env:"CHAT_JOIN_LEAVE" envDefault:"true"`
	Death         bool   `env:"CHAT_DEATH" envDefault:"true"`
	Advancement   bool   `env:"CHAT_ADVANCEMENT" envDefault:"true"`
	ServerStatus  bool   `env:"CHAT_SERVER_STATUS" envDefault:"true"`
}

var ErrInvalid = errors.New("invalid config")

// Load lee el entorno (el .env ya lo cargó main) y valida combinaciones.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.AlternatePrefix == "" {
		return fmt.Errorf("%w: ALTERNATE_PREFIX must not be empty", ErrInvalid)
	}
	switch c.StoreDriver {
	case "yaml", "sqlite":
		if c.WhitelistFile == "" && c.DatabaseURL == "" {
			return fmt.Errorf("%w: WHITELIST_FILE is required for %s", ErrInvalid, c.StoreDriver)
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL is required for postgres", ErrInvalid)
		}
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("%w: REDIS_URL is required for redis", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown STORE_DRIVER %q", ErrInvalid, c.StoreDriver)
	}
	if c.Chat.Enabled && c.Chat.ChannelID == "" {
		return fmt.Errorf("%w: CHAT_CHANNEL_ID is required when CHAT_SYNC_ENABLED", ErrInvalid)
	}
	return nil
}
