// Package server exposes the embedding engine over HTTP.
//
// The serve mode is intended for deployments where many documents share
// one resource store (Redis or Mongo): font binaries fetched for one
// document are reused for every other document referencing the same URL,
// while the aggregated-CSS memo is scoped per document so results never
// leak between pages.
//
// Endpoints:
//
//	POST /embed     run embedding for a document (by URL or inline HTML)
//	GET  /healthz   liveness probe
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/fontsnap/fontsnap/pkg/cache"
	"github.com/fontsnap/fontsnap/pkg/document"
	"github.com/fontsnap/fontsnap/pkg/embed"
)

const requestTimeout = 60 * time.Second

// Fetcher is the transport dependency, satisfied by fetch.Client.
type Fetcher interface {
	DataURL(ctx context.Context, url string) (string, error)
	Text(ctx context.Context, url string) (string, error)
}

// Config carries the server's dependencies.
type Config struct {
	// Resources is the shared URL → data-URI store.
	Resources cache.Cache

	// Attempts is the shared fetch-attempt set.
	Attempts cache.SeenSet

	// Fetcher retrieves documents, stylesheets, and font binaries.
	Fetcher Fetcher

	// Logger receives request and skip diagnostics. Defaults to a
	// discard logger when nil.
	Logger *log.Logger
}

// Server handles embed requests against shared stores.
type Server struct {
	resources cache.Cache
	attempts  cache.SeenSet
	fetcher   Fetcher
	logger    *log.Logger
}

// New creates a server from its dependencies.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{
		resources: cfg.Resources,
		attempts:  cfg.Attempts,
		fetcher:   cfg.Fetcher,
		logger:    logger,
	}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Post("/embed", s.handleEmbed)
	return r
}

type embedRequest struct {
	// URL of the document to embed fonts for. Used as the base for
	// relative resolution; when HTML is empty the document is fetched
	// from it.
	URL string `json:"url"`

	// HTML optionally supplies the document body directly.
	HTML string `json:"html,omitempty"`

	// PreCached additionally returns the document with the aggregated
	// CSS injected as a marked style element.
	PreCached bool `json:"pre_cached,omitempty"`
}

type embedResponse struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	CSS  string `json:"css"`
	HTML string `json:"html,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	var req embedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.URL == "" && req.HTML == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "url or html is required"})
		return
	}

	ctx := r.Context()
	htmlText := req.HTML
	if htmlText == "" {
		var err error
		htmlText, err = s.fetcher.Text(ctx, req.URL)
		if err != nil {
			s.logger.Warn("document fetch failed", "url", req.URL, "error", err)
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: "document fetch failed"})
			return
		}
	}

	doc, err := document.ParseString(htmlText, req.URL)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "document parse failed"})
		return
	}

	engine := embed.New(s.scopedResources(req.URL), s.attempts, s.fetcher, embed.WithLogger(s.logger))
	css, err := engine.EmbedCustomFonts(ctx, doc, embed.Options{PreCached: req.PreCached})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "embed failed"})
		return
	}

	resp := embedResponse{ID: uuid.NewString(), URL: req.URL, CSS: css}
	if req.PreCached {
		if out, err := doc.HTML(); err == nil {
			resp.HTML = out
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// scopedResources namespaces the aggregated-CSS memo per document while
// leaving per-font entries shared. Font entries are keyed by absolute
// URL, which is already globally unique; only the memo key would collide
// across documents, so it alone carries a document scope.
func (s *Server) scopedResources(docURL string) cache.Cache {
	return &memoScopedCache{
		Cache: s.resources,
		memo:  cache.NewScoped(s.resources, "doc:"+cache.Hash([]byte(docURL))[:16]+":"),
	}
}

// memoScopedCache routes the memo key through a document-scoped view and
// every other key through the shared store.
type memoScopedCache struct {
	cache.Cache
	memo cache.Cache
}

func (c *memoScopedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == embed.CacheKey {
		return c.memo.Get(ctx, key)
	}
	return c.Cache.Get(ctx, key)
}

func (c *memoScopedCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if key == embed.CacheKey {
		return c.memo.Set(ctx, key, data, ttl)
	}
	return c.Cache.Set(ctx, key, data, ttl)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
