package sitemap_test

import (
	"context"
	"encoding/xml"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonewall/gallery-backend/internal/model"
	"github.com/tonewall/gallery-backend/internal/sitemap"
)

func TestBuilder_Build(t *testing.T) {
	builder := sitemap.NewBuilder("https://gallery.example.com")
	created := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	records := []*model.ContentRecord{
		{
			ID:        7,
			Name:      "A & B <test>",
			Type:      model.ContentTypeWallpaper,
			MediaURL:  "https://cdn.example.com/ab.jpg",
			CreatedAt: created,
		},
		{
			ID:       8,
			Name:     "Morning Chime",
			Type:     model.ContentTypeRingtone,
			MediaURL: "https://cdn.example.com/chime.mp3",
		},
	}

	body, err := builder.Build(records)
	require.NoError(t, err)
	doc := string(body)

	t.Run("well-formed with escaped text", func(t *testing.T) {
		var parsed struct {
			XMLName xml.Name `xml:"urlset"`
			URLs    []struct {
				Loc     string `xml:"loc"`
				LastMod string `xml:"lastmod"`
			} `xml:"url"`
		}
		require.NoError(t, xml.Unmarshal(body, &parsed))
		assert.Len(t, parsed.URLs, 7) // 5 static routes + 2 records

		assert.Contains(t, doc, "A &amp; B &lt;test&gt;")
		assert.NotContains(t, doc, "<test>")
	})

	t.Run("item locations carry id and slug", func(t *testing.T) {
		assert.Contains(t, doc, "https://gallery.example.com/item/7/a-b-test")
		assert.Contains(t, doc, "https://gallery.example.com/item/8/morning-chime")
	})

	t.Run("lastmod is ISO-8601", func(t *testing.T) {
		assert.Contains(t, doc, "<lastmod>2026-03-14T12:00:00Z</lastmod>")
	})

	t.Run("only wallpapers get image entries", func(t *testing.T) {
		assert.Equal(t, 1, strings.Count(doc, "<image:image>"))
		assert.Contains(t, doc, "<image:loc>https://cdn.example.com/ab.jpg</image:loc>")
	})

	t.Run("static routes are present", func(t *testing.T) {
		assert.Contains(t, doc, "<loc>https://gallery.example.com/ringtones</loc>")
		assert.Contains(t, doc, "<loc>https://gallery.example.com/search</loc>")
	})
}

func TestHandler_ServeHTTP(t *testing.T) {
	testLogger, _ := test.NewNullLogger()
	builder := sitemap.NewBuilder("https://gallery.example.com")

	t.Run("serves XML with cache headers", func(t *testing.T) {
		handler := sitemap.NewHandler(builder, func(ctx context.Context) ([]*model.ContentRecord, error) {
			return []*model.ContentRecord{}, nil
		}, testLogger)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/sitemap.xml", nil))

		assert.Equal(t, 200, rec.Code)
		assert.Equal(t, "application/xml; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, "public, max-age=86400, stale-while-revalidate=3600", rec.Header().Get("Cache-Control"))
		assert.Contains(t, rec.Body.String(), "<urlset")
	})

	t.Run("store failure is a server error", func(t *testing.T) {
		handler := sitemap.NewHandler(builder, func(ctx context.Context) ([]*model.ContentRecord, error) {
			return nil, errors.New("store unavailable")
		}, testLogger)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/sitemap.xml", nil))
		assert.Equal(t, 500, rec.Code)
	})
}
