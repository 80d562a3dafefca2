// Package http hosts the operational HTTP surface: health, Prometheus
// metrics and the Telegram webhook receiver.
package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"trenbolt-bot/internal/config"
	"trenbolt-bot/internal/infra/metrics"
)

// UpdateFeeder accepts webhook-delivered Telegram updates.
type UpdateFeeder interface {
	FeedUpdate(update tgbotapi.Update)
}

type Server struct {
	cfg    *config.Config
	feeder UpdateFeeder
	log    *zerolog.Logger
	server *http.Server
}

func NewServer(cfg *config.Config, feeder UpdateFeeder, logger *zerolog.Logger) *Server {
	return &Server{cfg: cfg, feeder: feeder, log: logger}
}

// Router builds the chi mux. Exposed separately so tests can drive it with
// httptest without binding a port.
func (s *Server) Router() *chi.Mux {
	metrics.MustRegister()

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/webhook/{token}", s.handleWebhook)
	return r
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.HTTP.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Int("port", s.cfg.HTTP.Port).Msg("HTTP server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleWebhook validates the bot token path segment before accepting the
// update, since Telegram offers no other authentication on webhooks.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.Bot.Token)) != 1 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.log.Warn().Err(err).Msg("malformed webhook payload")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if s.feeder != nil {
		s.feeder.FeedUpdate(update)
	}
	w.WriteHeader(http.StatusOK)
}
