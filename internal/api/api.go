package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/tonewall/gallery-backend/internal/auth"
	"github.com/tonewall/gallery-backend/internal/database"
	"github.com/tonewall/gallery-backend/internal/model"
	"github.com/tonewall/gallery-backend/internal/search"
	"github.com/tonewall/gallery-backend/internal/suggest"
)

// Catalog is the slice of the store the API surface needs.
type Catalog interface {
	List(ctx context.Context, opts database.ListOptions) ([]*model.ContentRecord, error)
	GetByID(ctx context.Context, id int64) (*model.ContentRecord, error)
	Insert(ctx context.Context, rec *model.ContentRecord) (int64, error)
	Update(ctx context.Context, rec *model.ContentRecord) error
	Delete(ctx context.Context, id int64) error
	IncrementDownloads(ctx context.Context, id int64) error
}

// Handler bundles the gallery's HTTP surface.
type Handler struct {
	catalog     Catalog
	searcher    *search.Service
	suggestions *suggest.Index
	sitemap     http.Handler
	ingest      http.Handler
	log         logrus.FieldLogger
}

func New(catalog Catalog, searcher *search.Service, suggestions *suggest.Index, sitemap, ingest http.Handler, log logrus.FieldLogger) *Handler {
	return &Handler{
		catalog:     catalog,
		searcher:    searcher,
		suggestions: suggestions,
		sitemap:     sitemap,
		ingest:      ingest,
		log:         log,
	}
}

// RouterConfig carries the shared tokens guarding the non-public routes.
type RouterConfig struct {
	AdminToken   string
	WebhookToken string
}

// Router builds the route table. Admin routes and the media webhook sit
// behind their respective shared tokens; everything else is public.
func (h *Handler) Router(cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()
	r.Use(h.requestLogger)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodGet)

	r.HandleFunc("/search", h.Search).Methods(http.MethodGet)
	r.HandleFunc("/suggest", h.Suggest).Methods(http.MethodGet)
	r.HandleFunc("/items", h.List).Methods(http.MethodGet)
	r.HandleFunc("/items/{id:[0-9]+}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/items/{id:[0-9]+}/download", h.Download).Methods(http.MethodPost)
	r.Handle("/sitemap.xml", h.sitemap).Methods(http.MethodGet)

	r.Handle("/webhooks/media", auth.RequireToken(cfg.WebhookToken)(h.ingest)).Methods(http.MethodPost)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(mux.MiddlewareFunc(auth.RequireToken(cfg.AdminToken)))
	admin.HandleFunc("/items", h.AdminInsert).Methods(http.MethodPost)
	admin.HandleFunc("/items/{id:[0-9]+}", h.AdminUpdate).Methods(http.MethodPut)
	admin.HandleFunc("/items/{id:[0-9]+}", h.AdminDelete).Methods(http.MethodDelete)
	admin.HandleFunc("/suggest/rebuild", h.AdminRebuildSuggestions).Methods(http.MethodPost)

	return r
}

// requestLogger tags every request with an id and logs it on completion.
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		next.ServeHTTP(w, r)

		h.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"duration":   time.Since(start).String(),
		}).Debug("handled request")
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
