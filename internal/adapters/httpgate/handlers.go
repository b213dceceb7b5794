package httpgate

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/7Lumine/whitelistbot/internal/app/service"
	"github.com/7Lumine/whitelistbot/internal/domain"
)

const maxBody = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "players": s.reg.Len()})
}

// handleCheck es el gate de login: el servidor de juego desconecta si
// allowed es false.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	identity := mux.Vars(r)["identity"]
	allowed := s.reg.IsWhitelisted(identity)
	if !allowed {
		zerolog.Ctx(r.Context()).Info().Str("identity", identity).Msg("login denied, not whitelisted")
	}
	writeJSON(w, http.StatusOK, CheckResponse{Identity: identity, Allowed: allowed})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	entries := s.reg.List()
	out := ListResponse{Count: len(entries), Entries: make([]EntryDTO, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, EntryDTO{
			Identity:     e.Identity,
			AccountID:    e.AccountID,
			RegisteredAt: e.RegisteredAt,
			Namespace:    e.Namespace.String(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	ns, err := domain.ParseNamespace(req.Namespace)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_namespace", err.Error())
		return
	}
	res := s.reg.Add(r.Context(), req.Identity, req.AccountID, ns)
	writeJSON(w, domain.VisitResult[int](res, statusFor{}), AddResponse{Result: res.String()})
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	identity := mux.Vars(r)["identity"]
	if !s.reg.Remove(r.Context(), identity) {
		writeError(w, http.StatusNotFound, "not_found", identity+" is not whitelisted")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	msg := s.admin.Reload(r.Context())
	writeJSON(w, http.StatusOK, ReloadResponse{Count: s.reg.Len(), Message: msg})
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var ev domain.GameEvent
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if err := s.relay.HandleGameEvent(r.Context(), ev); err != nil {
		if errors.Is(err, service.ErrUnknownEvent) {
			writeError(w, http.StatusBadRequest, "unknown_event", string(ev.Type))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handlePending(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, PendingResponse{Messages: s.relay.Outbox().Drain()})
}

// statusFor traduce el resultado del registry a un status HTTP.
type statusFor struct{}

func (statusFor) Success() int                  { return http.StatusCreated }
func (statusFor) Updated() int                  { return http.StatusOK }
func (statusFor) AlreadyExists() int            { return http.StatusConflict }
func (statusFor) InvalidName() int              { return http.StatusUnprocessableEntity }
func (statusFor) AccountAlreadyRegistered() int { return http.StatusConflict }
