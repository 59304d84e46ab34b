package tracker

import (
	"fmt"
	"strings"

	"rastreio-produtos/internal/models"
)

func formatPriceDrop(p models.Product, r models.ScrapeResult) string {
	discount := ((p.LastPrice - r.Price) / p.LastPrice) * 100
	return fmt.Sprintf(
		"🔔 PREÇO CAIU!\n\n"+
			"📦 Produto: %s\n"+
			"💰 Preço anterior: %.2f TL\n"+
			"🏷 Novo preço: %.2f TL\n"+
			"📉 Desconto: %.1f%%\n"+
			"📏 Tamanhos disponíveis: %s\n\n"+
			"🛍 Link: %s",
		p.Name, p.LastPrice, r.Price, discount,
		strings.Join(r.AvailableSizes, ", "), p.URL,
	)
}

func formatThresholdReached(p models.Product, t models.PriceThreshold, r models.ScrapeResult) string {
	return fmt.Sprintf(
		"🎯 PREÇO ALVO ATINGIDO!\n\n"+
			"📦 Produto: %s\n"+
			"💰 Preço atual: %.2f TL\n"+
			"🎯 Limite configurado: %.2f TL\n\n"+
			"🛍 Link: %s",
		p.Name, r.Price, t.Price, p.URL,
	)
}

func formatRestock(p models.Product, r models.ScrapeResult) string {
	msg := fmt.Sprintf(
		"📦 PRODUTO DE VOLTA AO ESTOQUE!\n\n"+
			"📦 Produto: %s\n"+
			"💰 Preço atual: %.2f TL\n",
		p.Name, r.Price,
	)
	if len(r.AvailableSizes) > 0 {
		msg += fmt.Sprintf("📏 Tamanhos disponíveis: %s\n", strings.Join(r.AvailableSizes, ", "))
	}
	return msg + fmt.Sprintf("\n🛍 Link: %s", p.URL)
}
