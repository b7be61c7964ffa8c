package search_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tonewall/gallery-backend/internal/model"
	"github.com/tonewall/gallery-backend/internal/search"
)

func TestWindow(t *testing.T) {
	results := make([]*model.ContentRecord, 25)
	for i := range results {
		results[i] = record(fmt.Sprintf("Wallpaper %d", i), "", int64(25-i))
	}

	t.Run("grows by one page and saturates", func(t *testing.T) {
		w := search.NewWindow(results, 12)
		assert.Len(t, w.Items(), 12)
		assert.True(t, w.HasMore())

		assert.Len(t, w.Grow(), 24)
		assert.True(t, w.HasMore())

		assert.Len(t, w.Grow(), 25)
		assert.False(t, w.HasMore())

		// growing past the end keeps returning the full set
		assert.Len(t, w.Grow(), 25)
	})

	t.Run("window is a prefix of the ranked order", func(t *testing.T) {
		w := search.NewWindow(results, 12)
		items := w.Grow()
		for i, rec := range items {
			assert.Same(t, results[i], rec)
		}
	})

	t.Run("non-positive size falls back to the default", func(t *testing.T) {
		w := search.NewWindow(results, 0)
		assert.Len(t, w.Items(), search.PageSize)
	})

	t.Run("short result set is fully visible at once", func(t *testing.T) {
		w := search.NewWindow(results[:3], 12)
		assert.Len(t, w.Items(), 3)
		assert.False(t, w.HasMore())
	})
}
