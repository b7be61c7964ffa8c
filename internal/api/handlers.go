package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/tonewall/gallery-backend/internal/api/apierror"
	"github.com/tonewall/gallery-backend/internal/database"
	"github.com/tonewall/gallery-backend/internal/model"
	"github.com/tonewall/gallery-backend/internal/search"
)

type searchResponse struct {
	Query    string                 `json:"query"`
	Items    []*model.ContentRecord `json:"items"`
	Total    int                    `json:"total"`
	HasMore  bool                   `json:"has_more"`
	FromChip bool                   `json:"from_chip,omitempty"`
}

// Search serves /search?query=<text>&type=<tag>&from=chip. The optional
// pages parameter widens the visible window, which is how "load more" works
// over a stateless surface: the client re-requests with pages+1.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := model.ParseSearchQuery(r.URL.Query())
	rs := h.searcher.Search(r.Context(), query)

	window := rs.Window(search.PageSize)
	if pages, err := strconv.Atoi(r.URL.Query().Get("pages")); err == nil {
		for i := 1; i < pages; i++ {
			window.Grow()
		}
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:    query.Raw,
		Items:    window.Items(),
		Total:    window.Len(),
		HasMore:  window.HasMore(),
		FromChip: query.FromChip,
	})
}

// Suggest serves the typeahead path from the cached fuzzy index.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	matches := h.suggestions.Suggest(r.Context(), r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": matches})
}

// List serves gallery pages: /items?type=wallpaper&sort=downloads&limit=50.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	opts := database.ListOptions{
		OrderBy:    r.URL.Query().Get("sort"),
		Descending: r.URL.Query().Get("order") != "asc",
	}
	if t, err := model.ParseContentType(r.URL.Query().Get("type")); err == nil {
		opts.Type = &t
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		opts.Limit = limit
	}

	records, err := h.catalog.List(r.Context(), opts)
	if err != nil {
		apierror.Respond(w, err, h.log)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": records})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.catalog.GetByID(r.Context(), pathID(r))
	if err != nil {
		apierror.Respond(w, err, h.log)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Download records one consumption of the item.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.IncrementDownloads(r.Context(), pathID(r)); err != nil {
		apierror.Respond(w, err, h.log)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AdminInsert(w http.ResponseWriter, r *http.Request) {
	rec, err := decodeRecord(r)
	if err != nil {
		apierror.Respond(w, err, h.log)
		return
	}

	id, err := h.catalog.Insert(r.Context(), rec)
	if err != nil {
		apierror.Respond(w, err, h.log)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	rec, err := decodeRecord(r)
	if err != nil {
		apierror.Respond(w, err, h.log)
		return
	}
	rec.ID = pathID(r)

	if err := h.catalog.Update(r.Context(), rec); err != nil {
		apierror.Respond(w, err, h.log)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), pathID(r)); err != nil {
		apierror.Respond(w, err, h.log)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminRebuildSuggestions swaps in a fresh catalog snapshot for the fuzzy
// index. This is the only path that refreshes it; the interactive paths
// never do.
func (h *Handler) AdminRebuildSuggestions(w http.ResponseWriter, r *http.Request) {
	if err := h.suggestions.Rebuild(r.Context()); err != nil {
		apierror.Respond(w, err, h.log)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"entries": h.suggestions.Size()})
}

func decodeRecord(r *http.Request) (*model.ContentRecord, error) {
	rec := &model.ContentRecord{}
	if err := json.NewDecoder(r.Body).Decode(rec); err != nil {
		return nil, apierror.Errorf("malformed content record payload")
	}
	if err := rec.Validate(); err != nil {
		return nil, apierror.Errorf("%s", err.Error())
	}
	return rec, nil
}

func pathID(r *http.Request) int64 {
	// the route pattern guarantees digits only
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}
