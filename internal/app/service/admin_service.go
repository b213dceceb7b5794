package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/7Lumine/whitelistbot/internal/domain"
	"github.com/7Lumine/whitelistbot/internal/infra/config"
)

// ListDisplayLimit es el máximo de filas que muestra /whitelist list.
const ListDisplayLimit = 20

type AdminService struct {
	reg  *Registry
	msgs *config.MessageBook
	log  zerolog.Logger
}

func NewAdminService(reg *Registry, msgs *config.MessageBook) *AdminService {
	return &AdminService{reg: reg, msgs: msgs, log: log.With().Str("component", "admin").Logger()}
}

// Add agrega sin cuenta vinculada.
func (s *AdminService) Add(ctx context.Context, identity string, ns domain.Namespace) (domain.Result, string) {
	name := strings.TrimSpace(identity)
	res := s.reg.Add(ctx, name, "", ns)
	stored := s.reg.StoredIdentity(name, ns)
	return res, domain.VisitResult[string](res, adminReply{m: s.msgs.Get(), ns: ns, stored: stored})
}

// Remove espera la identidad tal como está guardada.
func (s *AdminService) Remove(ctx context.Context, identity string) (bool, string) {
	name := strings.TrimSpace(identity)
	m := s.msgs.Get()
	if s.reg.Remove(ctx, name) {
		return true, config.Render(m.AdminRemoved, "player", name)
	}
	return false, config.Render(m.AdminNotFound, "player", name)
}

// List muestra hasta limit filas y una línea con el resto.
func (s *AdminService) List(limit int) string {
	if limit <= 0 {
		limit = ListDisplayLimit
	}
	m := s.msgs.Get()
	entries := s.reg.List()
	if len(entries) == 0 {
		return m.ListEmpty
	}

	var sb strings.Builder
	sb.WriteString(config.Render(m.ListHeader, "count", strconv.Itoa(len(entries))))
	sb.WriteString("\n\n")
	for i, e := range entries {
		if i == limit {
			sb.WriteString("\n")
			sb.WriteString(config.Render(m.ListMore, "count", strconv.Itoa(len(entries)-limit)))
			break
		}
		icon := "☕"
		if e.Alternate() {
			icon = "🪨"
		}
		sb.WriteString(icon + " `" + e.Identity + "`")
		if e.AccountID != "" {
			sb.WriteString(" (<@" + e.AccountID + ">)")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Reload relee whitelist y textos.
func (s *AdminService) Reload(ctx context.Context) string {
	if err := s.msgs.Reload(); err != nil {
		s.log.Warn().Err(err).Msg("messages reload failed, keeping previous texts")
	}
	s.reg.Reload(ctx)
	return config.Render(s.msgs.Get().AdminReloaded, "count", strconv.Itoa(s.reg.Len()))
}

type adminReply struct {
	m      config.Messages
	ns     domain.Namespace
	stored string
}

func (r adminReply) Success() string {
	return config.Render(r.m.AdminAdded, "player", r.stored)
}

// Updated no ocurre en altas de admin; se informa como alta.
func (r adminReply) Updated() string { return r.Success() }

func (r adminReply) AlreadyExists() string {
	return config.Render(r.m.AdminAlreadyExists, "player", r.stored)
}

func (r adminReply) InvalidName() string {
	if r.ns == domain.Alternate {
		return r.m.InvalidAlternate
	}
	return r.m.InvalidPrimary
}

func (r adminReply) AccountAlreadyRegistered() string { return r.m.AccountAlreadyLinked }
