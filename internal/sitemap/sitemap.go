package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tonewall/gallery-backend/internal/model"
)

const (
	sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"
	imageNamespace   = "http://www.google.com/schemas/sitemap-image/1.1"
)

// staticRoutes are the non-item pages every sitemap carries.
var staticRoutes = []string{"/", "/wallpapers", "/ringtones", "/videos", "/search"}

type urlSet struct {
	XMLName    xml.Name   `xml:"urlset"`
	Namespace  string     `xml:"xmlns,attr"`
	ImageSpace string     `xml:"xmlns:image,attr"`
	URLs       []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc     string       `xml:"loc"`
	LastMod string       `xml:"lastmod,omitempty"`
	Images  []imageEntry `xml:"image:image,omitempty"`
}

type imageEntry struct {
	Loc   string `xml:"image:loc"`
	Title string `xml:"image:title"`
}

// Builder assembles the sitemap document for a site from the full catalog.
type Builder struct {
	siteURL string
}

// NewBuilder creates a builder rooted at siteURL (no trailing slash).
func NewBuilder(siteURL string) *Builder {
	return &Builder{siteURL: siteURL}
}

// ItemURL returns the canonical URL for a record: {site}/item/{id}/{slug}.
func (b *Builder) ItemURL(rec *model.ContentRecord) string {
	return fmt.Sprintf("%s/item/%d/%s", b.siteURL, rec.ID, Slugify(rec.Name))
}

// Build renders the sitemap: one url entry per static route, then one per
// record. Wallpapers additionally carry an image-sitemap entry. All text
// passes through the XML encoder, so user-supplied names are always escaped.
func (b *Builder) Build(records []*model.ContentRecord) ([]byte, error) {
	set := urlSet{
		Namespace:  sitemapNamespace,
		ImageSpace: imageNamespace,
	}

	for _, route := range staticRoutes {
		set.URLs = append(set.URLs, urlEntry{Loc: b.siteURL + route})
	}

	for _, rec := range records {
		entry := urlEntry{
			Loc: b.ItemURL(rec),
		}
		if !rec.CreatedAt.IsZero() {
			entry.LastMod = rec.CreatedAt.UTC().Format(time.RFC3339)
		}
		if rec.Type == model.ContentTypeWallpaper {
			entry.Images = []imageEntry{{
				Loc:   rec.MediaURL,
				Title: rec.Name,
			}}
		}
		set.URLs = append(set.URLs, entry)
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling sitemap: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

// Handler serves the sitemap with an XML content type and a one-day cache
// plus stale-while-revalidate. The lister supplies the full catalog at
// request time.
type Handler struct {
	builder *Builder
	lister  func(ctx context.Context) ([]*model.ContentRecord, error)
	log     logrus.FieldLogger
}

func NewHandler(builder *Builder, lister func(ctx context.Context) ([]*model.ContentRecord, error), log logrus.FieldLogger) *Handler {
	return &Handler{builder: builder, lister: lister, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	records, err := h.lister(r.Context())
	if err != nil {
		h.log.WithError(err).Error("listing catalog for sitemap")
		http.Error(w, "sitemap unavailable", http.StatusInternalServerError)
		return
	}

	body, err := h.builder.Build(records)
	if err != nil {
		h.log.WithError(err).Error("building sitemap")
		http.Error(w, "sitemap unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400, stale-while-revalidate=3600")
	w.Write(body)
}
