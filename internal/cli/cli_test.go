package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7Lumine/whitelistbot/internal/adapters/httpgate"
	"github.com/7Lumine/whitelistbot/internal/app/service"
	"github.com/7Lumine/whitelistbot/internal/domain"
	"github.com/7Lumine/whitelistbot/internal/infra/config"
)

const secret = "s3cret"

type memStore struct {
	mu      sync.Mutex
	entries []domain.Entry
}

func (m *memStore) Load(context.Context) ([]domain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries, nil
}

func (m *memStore) Save(_ context.Context, e []domain.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = e
	return nil
}

func newServer(t *testing.T) (*httptest.Server, *service.Registry) {
	t.Helper()
	reg := service.NewRegistry(&memStore{}, ".", service.WithLogger(zerolog.Nop()))
	reg.Load(context.Background())
	book := config.StaticMessages(config.DefaultMessages())
	relay := service.NewRelayService(config.Chat{}, book, service.NewOutbox(0))
	srv := httptest.NewServer(httpgate.New(secret, reg, service.NewAdminService(reg, book), relay).Handler())
	t.Cleanup(srv.Close)
	return srv, reg
}

func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--server", srv.URL, "--secret", secret}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestAddCheckRemove(t *testing.T) {
	srv, reg := newServer(t)

	out, err := run(t, srv, "add", "Steve", "--account", "42")
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS\n", out)
	id, ok := reg.ByAccount("42", domain.Primary)
	require.True(t, ok)
	assert.Equal(t, "Steve", id)

	out, err = run(t, srv, "check", "steve")
	require.NoError(t, err)
	assert.Contains(t, out, "allowed")

	out, err = run(t, srv, "remove", "Steve")
	require.NoError(t, err)
	assert.Contains(t, out, "removed Steve")

	out, err = run(t, srv, "check", "Steve")
	assert.ErrorIs(t, err, errNotAllowed)
	assert.Contains(t, out, "not whitelisted")
}

func TestAddAlternateStoresPrefix(t *testing.T) {
	srv, reg := newServer(t)

	_, err := run(t, srv, "add", "Bed Rock", "--alternate")
	require.NoError(t, err)
	assert.True(t, reg.IsWhitelisted(".Bed Rock"))
}

func TestAddConflictFails(t *testing.T) {
	srv, _ := newServer(t)

	_, err := run(t, srv, "add", "Steve")
	require.NoError(t, err)

	out, err := run(t, srv, "add", "STEVE")
	require.Error(t, err)
	assert.Equal(t, "ALREADY_EXISTS\n", out)

	_, err = run(t, srv, "add", "x")
	require.Error(t, err)
}

func TestRemoveUnknown(t *testing.T) {
	srv, _ := newServer(t)

	_, err := run(t, srv, "remove", "Nobody")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "not_found", apiErr.Code)
}

func TestListFormats(t *testing.T) {
	srv, _ := newServer(t)
	_, err := run(t, srv, "add", "Steve", "--account", "1")
	require.NoError(t, err)
	_, err = run(t, srv, "add", "Alex", "--alternate")
	require.NoError(t, err)

	out, err := run(t, srv, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "IDENTITY")
	assert.Contains(t, out, "Steve")
	assert.Contains(t, out, ".Alex")
	assert.Contains(t, out, "2 players")

	out, err = run(t, srv, "list", "-o", "json")
	require.NoError(t, err)
	var res httpgate.ListResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "Steve", res.Entries[0].Identity)
	assert.Equal(t, "alternate", res.Entries[1].Namespace)
}

func TestWrongSecretIsForbidden(t *testing.T) {
	srv, _ := newServer(t)

	var out bytes.Buffer
	cmd := NewRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--server", srv.URL, "--secret", "nope", "list"})
	err := cmd.Execute()

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)
}

func TestReloadAndHealth(t *testing.T) {
	srv, _ := newServer(t)

	out, err := run(t, srv, "reload")
	require.NoError(t, err)
	assert.Contains(t, out, "reloaded")

	out, err = run(t, srv, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
}

func TestUnknownOutputFormat(t *testing.T) {
	srv, _ := newServer(t)
	_, err := run(t, srv, "-o", "xml", "list")
	require.Error(t, err)
}
