package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// AvatarURLTemplate resuelve la cabeza del skin del jugador.
const AvatarURLTemplate = "https://mc-heads.net/avatar/%s/64"

func AvatarURL(player string) string {
	return fmt.Sprintf(AvatarURLTemplate, url.PathEscape(player))
}

// Client publica en un webhook de Discord con nombre y avatar propios.
type Client struct {
	url  string
	http *http.Client
}

func New(webhookURL string, opts ...Option) *Client {
	c := &Client{
		url:  webhookURL,
		http: &http.Client{Timeout: 5 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type Message struct {
	Username  string
	AvatarURL string
	Content   string
}

// Send no reintenta: un 429 vuelve como ErrRateLimited y el mensaje se pierde.
func (c *Client) Send(ctx context.Context, m Message) error {
	body, err := json.Marshal(discordgo.WebhookParams{
		Content:   m.Content,
		Username:  m.Username,
		AvatarURL: m.AvatarURL,
		// el chat del juego no puede pingear @everyone ni roles
		AllowedMentions: &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}},
	})
	if err != nil {
		return fmt.Errorf("webhook encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("webhook http: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return &APIError{Status: res.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

// SendPlayerMessage publica como el jugador, con su avatar.
func (c *Client) SendPlayerMessage(ctx context.Context, player, content string) error {
	return c.Send(ctx, Message{Username: player, AvatarURL: AvatarURL(player), Content: content})
}
