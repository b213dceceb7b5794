package service

import (
	"context"
	"strings"

	"github.com/7Lumine/whitelistbot/internal/domain"
	"github.com/7Lumine/whitelistbot/internal/infra/config"
)

// RegistrationService es el flujo de autoservicio: botón → formulario → alta.
type RegistrationService struct {
	reg  *Registry
	msgs *config.MessageBook
}

func NewRegistrationService(reg *Registry, msgs *config.MessageBook) *RegistrationService {
	return &RegistrationService{reg: reg, msgs: msgs}
}

// Form describe el modal que se le muestra a la cuenta.
type Form struct {
	Title       string
	Label       string
	Placeholder string
	Value       string // identidad actual sin prefijo, vacío si no hay
	Edit        bool
}

func (s *RegistrationService) FormFor(accountID string, ns domain.Namespace) Form {
	m := s.msgs.Get()
	f := Form{Title: m.ModalTitlePrimary, Label: m.ModalLabelPrimary, Placeholder: m.ModalPlaceholderPrimary}
	if ns == domain.Alternate {
		f = Form{Title: m.ModalTitleAlternate, Label: m.ModalLabelAlternate, Placeholder: m.ModalPlaceholderAlternate}
	}
	if cur, ok := s.reg.ByAccount(accountID, ns); ok {
		f.Edit = true
		f.Value = s.reg.DisplayIdentity(cur, ns)
		f.Title = m.ModalTitlePrimaryEdit
		if ns == domain.Alternate {
			f.Title = m.ModalTitleAlternateEdit
		}
	}
	return f
}

// Submit registra o edita la identidad de la cuenta y devuelve el texto de
// respuesta para el usuario.
func (s *RegistrationService) Submit(ctx context.Context, accountID, input string, ns domain.Namespace) (domain.Result, string) {
	name := strings.TrimSpace(input)
	res := s.reg.Register(ctx, name, accountID, ns)
	reply := domain.VisitResult[string](res, registrationReply{
		m:      s.msgs.Get(),
		ns:     ns,
		input:  name,
		stored: s.reg.StoredIdentity(name, ns),
	})
	return res, reply
}

type registrationReply struct {
	m      config.Messages
	ns     domain.Namespace
	input  string
	stored string
}

func (r registrationReply) pick(primary, alternate string) string {
	if r.ns == domain.Alternate {
		return alternate
	}
	return primary
}

func (r registrationReply) Success() string {
	return config.Render(r.pick(r.m.SuccessPrimary, r.m.SuccessAlternate), "player", r.stored)
}

func (r registrationReply) Updated() string {
	return config.Render(r.pick(r.m.UpdatedPrimary, r.m.UpdatedAlternate), "player", r.stored)
}

func (r registrationReply) AlreadyExists() string {
	return config.Render(r.m.NameTaken, "player", r.input)
}

func (r registrationReply) InvalidName() string {
	return r.pick(r.m.InvalidPrimary, r.m.InvalidAlternate)
}

func (r registrationReply) AccountAlreadyRegistered() string {
	return r.m.AccountAlreadyLinked
}
