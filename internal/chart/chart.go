// Package chart renderiza o histórico de preços de um produto como imagem
package chart

import (
	"bytes"
	"fmt"
	"time"

	"rastreio-produtos/internal/models"

	"github.com/wcharczuk/go-chart/v2"
)

// Render gera um gráfico PNG a partir do histórico de preços.
// São necessários ao menos dois pontos para traçar uma série.
func Render(title string, history []models.PriceHistoryEntry) ([]byte, error) {
	if len(history) < 2 {
		return nil, fmt.Errorf("histórico insuficiente para gerar gráfico (%d pontos)", len(history))
	}

	xValues := make([]time.Time, len(history))
	yValues := make([]float64, len(history))
	for i, h := range history {
		xValues[i] = h.CheckedAt
		yValues[i] = h.Price
	}

	graph := chart.Chart{
		Title:  title,
		Width:  900,
		Height: 500,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("02/01 15:04"),
		},
		YAxis: chart.YAxis{
			Name: "Preço (TL)",
		},
		Series: []chart.Series{
			chart.TimeSeries{
				XValues: xValues,
				YValues: yValues,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("erro ao renderizar gráfico: %w", err)
	}
	return buf.Bytes(), nil
}
