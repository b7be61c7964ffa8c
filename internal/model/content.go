package model

import (
	"fmt"
	"time"
)

// ContentType is the closed set of media kinds served by the gallery.
type ContentType string

const (
	ContentTypeWallpaper ContentType = "wallpaper"
	ContentTypeRingtone  ContentType = "ringtone"
	ContentTypeVideo     ContentType = "video"
)

// AllContentTypes lists every valid content type, in the order the gallery
// presents them.
var AllContentTypes = []ContentType{
	ContentTypeWallpaper,
	ContentTypeRingtone,
	ContentTypeVideo,
}

func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeWallpaper, ContentTypeRingtone, ContentTypeVideo:
		return true
	}
	return false
}

func (t ContentType) String() string {
	return string(t)
}

// ParseContentType returns the ContentType for s, or an error if s is not one
// of the three known kinds.
func ParseContentType(s string) (ContentType, error) {
	t := ContentType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown content type: %q", s)
	}
	return t, nil
}

// ContentRecord is one unit of downloadable/viewable media plus its metadata.
// The id is assigned by the store on insert. Type-specific metadata (width,
// height, duration) is optional and absent fields are valid for every kind.
type ContentRecord struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Type        ContentType `json:"type"`
	MediaURL    string      `json:"media_url"`
	Description string      `json:"description,omitempty"`
	Category    string      `json:"category,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	Downloads   int64       `json:"downloads"`
	CreatedAt   time.Time   `json:"created_at"`

	Width    *int     `json:"width,omitempty"`
	Height   *int     `json:"height,omitempty"`
	Duration *float64 `json:"duration,omitempty"`
	Format   string   `json:"format,omitempty"`
	Colors   []string `json:"colors,omitempty"`
}

// Validate checks the fields required of every record regardless of kind.
func (r *ContentRecord) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("content record is missing a name")
	}
	if r.MediaURL == "" {
		return fmt.Errorf("content record %q is missing a media URL", r.Name)
	}
	if !r.Type.Valid() {
		return fmt.Errorf("content record %q has an unknown type: %q", r.Name, r.Type)
	}
	if r.Downloads < 0 {
		return fmt.Errorf("content record %q has a negative download count", r.Name)
	}
	return nil
}

// CatalogEntry is the projection of a ContentRecord kept in the suggestion
// index: just enough to match and link back, not the full record.
type CatalogEntry struct {
	ID       int64
	Name     string
	Category string
	Tags     []string
}

// Projection reduces the record to its suggestion-index entry. The category
// falls back to the content type when no folder-derived category was set.
func (r *ContentRecord) Projection() CatalogEntry {
	category := r.Category
	if category == "" {
		category = string(r.Type)
	}
	return CatalogEntry{
		ID:       r.ID,
		Name:     r.Name,
		Category: category,
		Tags:     r.Tags,
	}
}
