package httpgate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7Lumine/whitelistbot/internal/app/service"
	"github.com/7Lumine/whitelistbot/internal/domain"
	"github.com/7Lumine/whitelistbot/internal/infra/config"
)

const secret = "s3cret"

type nopStore struct {
	mu      sync.Mutex
	entries []domain.Entry
}

func (n *nopStore) Load(context.Context) ([]domain.Entry, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.entries, nil
}

func (n *nopStore) Save(_ context.Context, e []domain.Entry) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entries = e
	return nil
}

type chanRecorder struct {
	mu   sync.Mutex
	msgs []string
}

func (c *chanRecorder) SendChannelMessage(_ context.Context, m string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, m)
	return nil
}

type fixture struct {
	srv   *httptest.Server
	reg   *service.Registry
	relay *service.RelayService
	chat  *chanRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := service.NewRegistry(&nopStore{}, ".", service.WithLogger(zerolog.Nop()))
	reg.Load(context.Background())
	book := config.StaticMessages(config.DefaultMessages())
	chat := &chanRecorder{}
	relay := service.NewRelayService(config.Chat{
		Enabled: true, ChannelID: "c1", JoinLeave: true, DiscordToGame: true,
	}, book, service.NewOutbox(0), service.WithChannelSender(chat))

	srv := httptest.NewServer(New(secret, reg, service.NewAdminService(reg, book), relay).Handler())
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, reg: reg, relay: relay, chat: chat}
}

func (f *fixture) do(t *testing.T, method, path, body string, withSecret bool) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if withSecret {
		req.Header.Set(HeaderSecret, secret)
	}
	res, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

func TestHealthIsOpen(t *testing.T) {
	f := newFixture(t)
	res := f.do(t, http.MethodGet, "/api/v1/health", "", false)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get(HeaderRequestID))
}

func TestSecretRequired(t *testing.T) {
	f := newFixture(t)
	res := f.do(t, http.MethodGet, "/api/v1/whitelist/Steve", "", false)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	body := decode[ErrorResponse](t, res)
	assert.Equal(t, "forbidden", body.Error.Code)
}

func TestEmptySecretRejectsEverything(t *testing.T) {
	reg := service.NewRegistry(&nopStore{}, ".", service.WithLogger(zerolog.Nop()))
	h := New("", reg, nil, nil).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/whitelist/Steve", nil)
	req.Header.Set(HeaderSecret, "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWhitelistLifecycle(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodPost, "/api/v1/whitelist", `{"identity":"Steve"}`, true)
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, "SUCCESS", decode[AddResponse](t, res).Result)

	res = f.do(t, http.MethodPost, "/api/v1/whitelist", `{"identity":"steve"}`, true)
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Equal(t, "ALREADY_EXISTS", decode[AddResponse](t, res).Result)

	res = f.do(t, http.MethodPost, "/api/v1/whitelist", `{"identity":"Big Alex","namespace":"alternate","account_id":"9"}`, true)
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	res = f.do(t, http.MethodPost, "/api/v1/whitelist", `{"identity":"no"}`, true)
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

	res = f.do(t, http.MethodPost, "/api/v1/whitelist", `{"identity":"Steve","namespace":"pocket"}`, true)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = f.do(t, http.MethodPost, "/api/v1/whitelist", `{`, true)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = f.do(t, http.MethodGet, "/api/v1/whitelist/STEVE", "", true)
	assert.Equal(t, CheckResponse{Identity: "STEVE", Allowed: true}, decode[CheckResponse](t, res))

	res = f.do(t, http.MethodGet, "/api/v1/whitelist/.big%20alex", "", true)
	assert.True(t, decode[CheckResponse](t, res).Allowed)

	res = f.do(t, http.MethodGet, "/api/v1/whitelist", "", true)
	list := decode[ListResponse](t, res)
	require.Equal(t, 2, list.Count)
	assert.Equal(t, "Steve", list.Entries[0].Identity)
	assert.Equal(t, "alternate", list.Entries[1].Namespace)
	assert.Equal(t, "9", list.Entries[1].AccountID)

	res = f.do(t, http.MethodDelete, "/api/v1/whitelist/steve", "", true)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	res = f.do(t, http.MethodDelete, "/api/v1/whitelist/steve", "", true)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res = f.do(t, http.MethodGet, "/api/v1/whitelist/Steve", "", true)
	assert.False(t, decode[CheckResponse](t, res).Allowed)
}

func TestReload(t *testing.T) {
	f := newFixture(t)
	f.reg.Add(context.Background(), "Steve", "", domain.Primary)

	res := f.do(t, http.MethodPost, "/api/v1/reload", "", true)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 1, decode[ReloadResponse](t, res).Count)
}

func TestEventsAndPending(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodPost, "/api/v1/events", `{"type":"join","player":"Steve"}`, true)
	assert.Equal(t, http.StatusAccepted, res.StatusCode)
	f.relay.Wait()
	f.chat.mu.Lock()
	assert.Len(t, f.chat.msgs, 1)
	f.chat.mu.Unlock()

	res = f.do(t, http.MethodPost, "/api/v1/events", `{"type":"explode"}`, true)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "unknown_event", decode[ErrorResponse](t, res).Error.Code)

	require.True(t, f.relay.HandleDiscordMessage("c1", "bob", false, "hi"))
	res = f.do(t, http.MethodGet, "/api/v1/chat/pending", "", true)
	assert.Equal(t, []string{"[Discord] bob: hi"}, decode[PendingResponse](t, res).Messages)

	res = f.do(t, http.MethodGet, "/api/v1/chat/pending", "", true)
	assert.Empty(t, decode[PendingResponse](t, res).Messages)
}

func TestServe_StopsOnCancel(t *testing.T) {
	reg := service.NewRegistry(&nopStore{}, ".", service.WithLogger(zerolog.Nop()))
	s := New(secret, reg, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, "127.0.0.1:0") }()
	cancel()
	assert.NoError(t, <-done)
}
