package model_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tonewall/gallery-backend/internal/model"
)

func TestNormalizeQuery(t *testing.T) {
	t.Run("lower-cases and singularizes", func(t *testing.T) {
		assert.Equal(t, "wallpaper", model.NormalizeQuery("Wallpapers"))
		assert.Equal(t, "cat", model.NormalizeQuery("CATS"))
	})

	t.Run("double s is kept", func(t *testing.T) {
		assert.Equal(t, "glass", model.NormalizeQuery("glass"))
	})

	t.Run("whitespace-only collapses to empty", func(t *testing.T) {
		assert.Equal(t, "", model.NormalizeQuery("   "))
	})

	t.Run("idempotent", func(t *testing.T) {
		for _, raw := range []string{"Wallpapers", "boss", "s", "Sunset Beach", "  mixed CASE words  "} {
			once := model.NormalizeQuery(raw)
			assert.Equal(t, once, model.NormalizeQuery(once), "query %q", raw)
		}
	})
}

func TestParseSearchQuery(t *testing.T) {
	t.Run("query parameter", func(t *testing.T) {
		q := model.ParseSearchQuery(url.Values{"query": {" Sunsets "}})
		assert.Equal(t, "Sunsets", q.Raw)
		assert.Equal(t, "sunset", q.Normalized)
		assert.Nil(t, q.Type)
		assert.False(t, q.FromChip)
	})

	t.Run("chip search with type filter", func(t *testing.T) {
		q := model.ParseSearchQuery(url.Values{"type": {"ringtone"}, "from": {"chip"}})
		assert.True(t, q.FromChip)
		if assert.NotNil(t, q.Type) {
			assert.Equal(t, model.ContentTypeRingtone, *q.Type)
		}
		assert.True(t, q.Empty())
	})

	t.Run("invalid type is ignored", func(t *testing.T) {
		q := model.ParseSearchQuery(url.Values{"query": {"beach"}, "type": {"podcast"}})
		assert.Nil(t, q.Type)
	})
}
