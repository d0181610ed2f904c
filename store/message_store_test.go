package store

import (
	"testing"
	"time"

	"github.com/Gurilao-dev/loja/models"
	"github.com/stretchr/testify/assert"
)

func messageAt(t time.Time) *models.Message {
	return &models.Message{Content: t.Format(time.RFC3339), CreatedAt: t}
}

func TestChronologicalReversesNewestFirstPage(t *testing.T) {
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	// The cursor yields the page newest first.
	page := []*models.Message{
		messageAt(base.Add(2 * time.Minute)),
		messageAt(base.Add(1 * time.Minute)),
		messageAt(base),
	}

	ordered := chronological(page)

	for i := 1; i < len(ordered); i++ {
		assert.True(t, ordered[i-1].CreatedAt.Before(ordered[i].CreatedAt),
			"messages must come back in ascending created_at order")
	}
}

func TestChronologicalHandlesSmallPages(t *testing.T) {
	assert.Empty(t, chronological([]*models.Message{}))

	single := []*models.Message{messageAt(time.Now())}
	assert.Len(t, chronological(single), 1)
}
