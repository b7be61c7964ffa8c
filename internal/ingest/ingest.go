package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"path"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tonewall/gallery-backend/internal/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Payload is the media-pipeline notification for one processed upload.
type Payload struct {
	PublicID         string   `json:"public_id"`
	OriginalFilename string   `json:"original_filename"`
	ResourceType     string   `json:"resource_type"`
	SecureURL        string   `json:"secure_url"`
	URL              string   `json:"url"`
	Format           string   `json:"format"`
	Width            int      `json:"width"`
	Height           int      `json:"height"`
	Duration         float64  `json:"duration"`
	Tags             []string `json:"tags"`
	Folder           string   `json:"folder"`
	Colors           [][]any  `json:"colors"`
}

// MediaURL prefers the HTTPS delivery URL over the plain one.
func (p *Payload) MediaURL() string {
	if p.SecureURL != "" {
		return p.SecureURL
	}
	return p.URL
}

// Classify maps the pipeline's resource type onto a content type: video
// stays video, raw uploads are ringtones, everything else is a wallpaper.
func Classify(resourceType string) model.ContentType {
	switch resourceType {
	case "video":
		return model.ContentTypeVideo
	case "raw":
		return model.ContentTypeRingtone
	default:
		return model.ContentTypeWallpaper
	}
}

// Record converts the payload into the content record to insert.
func (p *Payload) Record() *model.ContentRecord {
	rec := &model.ContentRecord{
		Name:     p.displayName(),
		Type:     Classify(p.ResourceType),
		MediaURL: p.MediaURL(),
		Category: p.Folder,
		Tags:     p.Tags,
		Format:   p.Format,
		Colors:   p.dominantColors(),
	}
	if p.Width > 0 {
		width := p.Width
		rec.Width = &width
	}
	if p.Height > 0 {
		height := p.Height
		rec.Height = &height
	}
	if p.Duration > 0 {
		duration := p.Duration
		rec.Duration = &duration
	}
	return rec
}

func (p *Payload) displayName() string {
	name := p.OriginalFilename
	if name == "" {
		name = path.Base(p.PublicID)
	}
	if ext := path.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	return strings.TrimSpace(strings.NewReplacer("-", " ", "_", " ").Replace(name))
}

// dominantColors keeps the color values from the pipeline's [value, share]
// pairs and drops everything else.
func (p *Payload) dominantColors() []string {
	colors := []string{}
	for _, pair := range p.Colors {
		if len(pair) == 0 {
			continue
		}
		if color, ok := pair[0].(string); ok {
			colors = append(colors, color)
		}
	}
	return colors
}

// Inserter stores one ingested record and returns its assigned id.
type Inserter interface {
	Insert(ctx context.Context, rec *model.ContentRecord) (int64, error)
}

// Handler accepts media-pipeline notifications and inserts one content
// record per payload. Malformed payloads are rejected with a client error;
// a failed insert surfaces as a server error and is never retried here (the
// pipeline owns its retry policy).
type Handler struct {
	store  Inserter
	log    logrus.FieldLogger
	errors metric.Int64Counter
}

func NewHandler(store Inserter, errors metric.Int64Counter, log logrus.FieldLogger) *Handler {
	return &Handler{store: store, log: log, errors: errors}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var payload Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed payload"})
		return
	}

	if payload.MediaURL() == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "payload is missing a media URL"})
		return
	}

	rec := payload.Record()
	if err := rec.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	id, err := h.store.Insert(r.Context(), rec)
	if err != nil {
		h.errors.Add(r.Context(), 1, metric.WithAttributes(attribute.String("component", "ingest")))
		h.log.WithError(err).Error("inserting ingested content record")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storing content failed"})
		return
	}

	h.log.WithFields(logrus.Fields{"id": id, "type": rec.Type}).Info("ingested content record")
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
