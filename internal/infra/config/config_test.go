package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"ALTERNATE_PREFIX", "STORE_DRIVER", "WHITELIST_FILE", "HTTP_ADDR", "CHAT_SYNC_ENABLED", "ADMIN_ROLE_IDS"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ".", cfg.AlternatePrefix)
	assert.Equal(t, "yaml", cfg.StoreDriver)
	assert.Equal(t, "data/whitelist.yml", cfg.WhitelistFile)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.False(t, cfg.Chat.Enabled)
	assert.True(t, cfg.Chat.GameToDiscord)
	assert.Empty(t, cfg.AdminRoleIDs)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("ADMIN_ROLE_IDS", "1,2,3")
	t.Setenv("ALTERNATE_PREFIX", "*")
	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CHAT_SYNC_ENABLED", "true")
	t.Setenv("CHAT_CHANNEL_ID", "999")
	t.Setenv("CHAT_DEATH", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, cfg.AdminRoleIDs)
	assert.Equal(t, "*", cfg.AlternatePrefix)
	assert.Equal(t, "redis", cfg.StoreDriver)
	assert.True(t, cfg.Chat.Enabled)
	assert.Equal(t, "999", cfg.Chat.ChannelID)
	assert.False(t, cfg.Chat.Death)
}

func TestValidate(t *testing.T) {
	base := Config{AlternatePrefix: ".", StoreDriver: "yaml", WhitelistFile: "wl.yml"}
	require.NoError(t, base.Validate())

	cases := map[string]func(c *Config){
		"empty prefix":         func(c *Config) { c.AlternatePrefix = "" },
		"unknown driver":       func(c *Config) { c.StoreDriver = "etcd" },
		"postgres without url": func(c *Config) { c.StoreDriver = "postgres" },
		"redis without url":    func(c *Config) { c.StoreDriver = "redis" },
		"chat without channel": func(c *Config) { c.Chat.Enabled = true },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalid)
		})
	}
}

func TestLoadMessages(t *testing.T) {
	m, err := LoadMessages("")
	require.NoError(t, err)
	assert.Equal(t, DefaultMessages(), m)

	m, err = LoadMessages(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultMessages(), m)

	path := filepath.Join(t.TempDir(), "messages.yml")
	require.NoError(t, os.WriteFile(path, []byte("success-primary: \"ok %player%\"\nlist-empty: nada\n"), 0o644))
	m, err = LoadMessages(path)
	require.NoError(t, err)
	assert.Equal(t, "ok %player%", m.SuccessPrimary)
	assert.Equal(t, "nada", m.ListEmpty)
	assert.Equal(t, DefaultMessages().NameTaken, m.NameTaken)

	require.NoError(t, os.WriteFile(path, []byte("success-primary: [broken"), 0o644))
	m, err = LoadMessages(path)
	assert.Error(t, err)
	assert.Equal(t, DefaultMessages(), m)
}

func TestRender(t *testing.T) {
	assert.Equal(t, "Minecraft | 3/20", Render("Minecraft | %online%/%max%", "online", "3", "max", "20"))
	assert.Equal(t, "[Discord] bob: %player%", Render("[Discord] %user%: %message%", "user", "bob", "message", "%player%"))
	assert.Equal(t, "as is", Render("as is"))
}

func TestMessageBook_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.yml")
	require.NoError(t, os.WriteFile(path, []byte("list-empty: first\n"), 0o644))

	b, err := NewMessageBook(path)
	require.NoError(t, err)
	assert.Equal(t, "first", b.Get().ListEmpty)

	require.NoError(t, os.WriteFile(path, []byte("list-empty: second\n"), 0o644))
	require.NoError(t, b.Reload())
	assert.Equal(t, "second", b.Get().ListEmpty)

	require.NoError(t, os.WriteFile(path, []byte("list-empty: [bad"), 0o644))
	assert.Error(t, b.Reload())
	assert.Equal(t, "second", b.Get().ListEmpty)

	assert.NoError(t, StaticMessages(DefaultMessages()).Reload())
}
