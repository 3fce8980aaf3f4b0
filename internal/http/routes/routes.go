package routes

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/zepsite/internal/content"
	appmw "github.com/briangreenhill/zepsite/internal/http/middleware"
	"github.com/briangreenhill/zepsite/internal/search"
)

// Source is the read side of the content cache; *cache.FileStore implements it.
type Source interface {
	Load() *content.Document
	Raw() ([]byte, error)
}

type Server struct {
	Router *chi.Mux
	Source Source
}

type ServerOptions struct {
	Source    Source
	StaticDir string
	Log       zerolog.Logger
	// Denied overrides appmw.DefaultDenied when set.
	Denied []string
}

func New(opts ServerOptions) *Server {
	denied := opts.Denied
	if denied == nil {
		denied = appmw.DefaultDenied
	}
	staticDir := opts.StaticDir
	if staticDir == "" {
		staticDir = "."
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(hlog.NewHandler(opts.Log))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(chimw.Recoverer)
	r.Use(appmw.Deny(denied...))

	s := &Server{Router: r, Source: opts.Source}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("write health check response")
		}
	})

	r.Get("/api/data", s.handleData)
	r.Get("/data.json", s.handleData)
	r.Get("/api/search", s.handleSearch)

	r.NotFound(http.FileServer(http.Dir(staticDir)).ServeHTTP)

	return s
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Stringer("url", r.URL).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}

// handleData serves the whole cache envelope. A missing cache yields the
// defaults rather than an error.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	data, err := s.Source.Raw()
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("encode content cache")
		http.Error(w, "could not load data", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(data); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("write data response")
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	res := search.Search(s.Source.Load(), q)
	hlog.FromRequest(r).Debug().Str("q", q).Bool("hit", !res.Empty()).Msg("search")
	s.writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("write json response")
	}
}
