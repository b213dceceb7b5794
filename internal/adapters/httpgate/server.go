package httpgate

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/7Lumine/whitelistbot/internal/app/service"
)

// Server es la frontera HTTP para el plugin del servidor de juego y wlctl.
type Server struct {
	secret string
	reg    *service.Registry
	admin  *service.AdminService
	relay  *service.RelayService
	router *mux.Router
	log    zerolog.Logger
}

func New(secret string, reg *service.Registry, admin *service.AdminService, relay *service.RelayService) *Server {
	s := &Server{
		secret: secret,
		reg:    reg,
		admin:  admin,
		relay:  relay,
		router: mux.NewRouter(),
		log:    log.With().Str("component", "httpgate").Logger(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.Use(recovery(s.log), requestID(s.log), accessLog)

	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	gated := func(h http.HandlerFunc) http.Handler { return requireSecret(s.secret)(h) }
	api.Handle("/whitelist", gated(s.handleList)).Methods(http.MethodGet)
	api.Handle("/whitelist", gated(s.handleAdd)).Methods(http.MethodPost)
	api.Handle("/whitelist/{identity}", gated(s.handleCheck)).Methods(http.MethodGet)
	api.Handle("/whitelist/{identity}", gated(s.handleRemove)).Methods(http.MethodDelete)
	api.Handle("/reload", gated(s.handleReload)).Methods(http.MethodPost)
	api.Handle("/events", gated(s.handleEvent)).Methods(http.MethodPost)
	api.Handle("/chat/pending", gated(s.handlePending)).Methods(http.MethodGet)
}

func (s *Server) Handler() http.Handler { return s.router }

// Serve escucha hasta que ctx se cancele y luego apaga con gracia.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	if s.secret == "" {
		s.log.Warn().Msg("GATE_SECRET is empty, every gated route will answer 403")
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("🌐 HTTP listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
