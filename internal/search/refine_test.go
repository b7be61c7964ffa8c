package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tonewall/gallery-backend/internal/model"
	"github.com/tonewall/gallery-backend/internal/search"
)

func TestRefine(t *testing.T) {
	t.Run("drops substring-only false positives", func(t *testing.T) {
		candidates := []*model.ContentRecord{
			record("Cartoon Cat", "", 10),
			record("Abstract Art", "", 3),
			record("Street Art Collection", "", 7),
		}
		refined := search.Refine(candidates, "art")
		assert.Len(t, refined, 2)
		for _, rec := range refined {
			assert.NotEqual(t, "Cartoon Cat", rec.Name)
		}
	})

	t.Run("matches the plural form", func(t *testing.T) {
		candidates := []*model.ContentRecord{record("City Sunsets", "", 1)}
		assert.Len(t, search.Refine(candidates, "sunset"), 1)
	})

	t.Run("matches in the description", func(t *testing.T) {
		candidates := []*model.ContentRecord{record("Morning Glow", "a calm sunset over the bay", 1)}
		assert.Len(t, search.Refine(candidates, "sunset"), 1)
	})

	t.Run("sorts by downloads with stable ties", func(t *testing.T) {
		a := record("Sunset A", "", 5)
		b := record("Sunset B", "", 50)
		c := record("Sunset C", "", 5)
		d := record("Sunset D", "", 20)
		refined := search.Refine([]*model.ContentRecord{a, b, c, d}, "sunset")
		assert.Equal(t, []*model.ContentRecord{b, d, a, c}, refined)
	})

	t.Run("regex metacharacters in the query are literal", func(t *testing.T) {
		candidates := []*model.ContentRecord{record("Sunset", "", 1)}
		assert.Empty(t, search.Refine(candidates, "sun.et ("))
	})

	t.Run("empty normalized query yields nothing", func(t *testing.T) {
		candidates := []*model.ContentRecord{record("Sunset", "", 1)}
		assert.Empty(t, search.Refine(candidates, ""))
	})
}
