package httpapi

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/sitestatus/internal/domain"
	apimw "github.com/hamed0406/sitestatus/internal/httpapi/middleware"
	"github.com/hamed0406/sitestatus/internal/round"
)

//go:embed templates/status.html
var templateFS embed.FS

var statusPage = template.Must(template.ParseFS(templateFS, "templates/status.html"))

// RoundRunner runs one probing round. *round.Orchestrator implements it.
type RoundRunner interface {
	RunWithID(ctx context.Context, roundID string, domains []string) (domain.Round, error)
}

type Server struct {
	Logger  *zap.Logger
	Rounds  RoundRunner
	Domains []string
	Refresh time.Duration
}

func NewServer(l *zap.Logger, rr RoundRunner, domains []string, refresh time.Duration) *Server {
	if refresh <= 0 {
		refresh = 30 * time.Second
	}
	return &Server{Logger: l, Rounds: rr, Domains: domains, Refresh: refresh}
}

// Router wires the page and API routes. An empty origins list allows any
// origin; rpm <= 0 disables rate limiting.
func (s *Server) Router(keys apimw.Keys, origins []string, rpm, burst int) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(apimw.RateLimit(rpm, burst))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/", s.handlePage)

	r.Route("/api", func(r chi.Router) {
		r.Use(corsHandler(origins))
		r.Use(apimw.RequireAny(keys))
		r.Get("/status", s.handleStatus)
		r.Get("/domains", s.handleDomains)
	})

	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return cors.AllowAll().Handler
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "X-API-Key"},
		MaxAge:         300,
	})
}

type rowView struct {
	Domain    string
	Outcome   string
	Indicator string
}

type pageView struct {
	RoundID   string
	CheckedAt string
	Counts    domain.Counts
	Rows      []rowView
	RefreshMS int64
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	id, rows, ok := s.runRound(w, r)
	if !ok {
		return
	}

	view := pageView{
		RoundID:   id,
		CheckedAt: time.Now().UTC().Format(time.RFC3339),
		Counts:    rows.Counts(),
		Rows:      make([]rowView, 0, len(rows)),
		RefreshMS: s.Refresh.Milliseconds(),
	}
	for _, row := range rows {
		view.Rows = append(view.Rows, rowView{
			Domain:    row.Domain,
			Outcome:   row.Outcome.String(),
			Indicator: row.Outcome.Indicator(),
		})
	}

	var buf bytes.Buffer
	if err := statusPage.Execute(&buf, view); err != nil {
		s.Logger.Error("render_error", zap.String("round_id", id), zap.Error(err))
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

type statusResponse struct {
	RoundID   string             `json:"round_id"`
	CheckedAt time.Time          `json:"checked_at"`
	Counts    domain.Counts      `json:"counts"`
	Rows      []domain.StatusRow `json:"rows"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id, rows, ok := s.runRound(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(statusResponse{
		RoundID:   id,
		CheckedAt: time.Now().UTC(),
		Counts:    rows.Counts(),
		Rows:      rows,
	})
}

func (s *Server) handleDomains(w http.ResponseWriter, r *http.Request) {
	out := s.Domains
	if out == nil {
		out = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// runRound executes one round for the request and writes the error response
// itself when the round cannot run.
func (s *Server) runRound(w http.ResponseWriter, r *http.Request) (string, domain.Round, bool) {
	id := uuid.NewString()
	rows, err := s.Rounds.RunWithID(r.Context(), id, s.Domains)
	if err != nil {
		s.Logger.Warn("round_error",
			zap.String("round_id", id),
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.Error(err),
		)
		if errors.Is(err, round.ErrNoDomains) {
			http.Error(w, "no domains configured", http.StatusServiceUnavailable)
			return "", nil, false
		}
		http.Error(w, "round failed", http.StatusInternalServerError)
		return "", nil, false
	}
	return id, rows, true
}
