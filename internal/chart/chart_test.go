package chart

import (
	"testing"
	"time"

	"rastreio-produtos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func historyOf(prices ...float64) []models.PriceHistoryEntry {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	history := make([]models.PriceHistoryEntry, len(prices))
	for i, p := range prices {
		history[i] = models.PriceHistoryEntry{
			ProductID: 1,
			Price:     p,
			CheckedAt: base.Add(time.Duration(i) * time.Hour),
		}
	}
	return history
}

func TestRenderRequiresTwoPoints(t *testing.T) {
	_, err := Render("Produto", nil)
	assert.Error(t, err)

	_, err = Render("Produto", historyOf(100))
	assert.Error(t, err)
}

func TestRenderProducesPNG(t *testing.T) {
	png, err := Render("Tênis Esportivo", historyOf(120, 110, 99.9, 105))
	require.NoError(t, err)
	require.NotEmpty(t, png)

	// Assinatura PNG
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}
