package tracker

import (
	"rastreio-produtos/internal/models"
)

// ShouldNotifyPriceDrop decide se uma queda de preço deve ser notificada:
// o preço precisa ter diminuído estritamente e o tamanho acompanhado
// precisa estar disponível (ou o produto acompanhar todos os tamanhos).
// Primeira verificação (preço anterior zerado) nunca notifica.
func ShouldNotifyPriceDrop(product models.Product, result models.ScrapeResult) bool {
	if product.LastPrice <= 0 || result.Price <= 0 {
		return false
	}
	if result.Price >= product.LastPrice {
		return false
	}
	if product.WantsAllSizes() {
		return true
	}
	return result.HasSize(product.Size)
}

// SatisfiedThresholds retorna os limites atingidos ou ultrapassados pelo
// novo preço. Cada limite satisfeito gera sua própria notificação.
func SatisfiedThresholds(thresholds []models.PriceThreshold, price float64) []models.PriceThreshold {
	if price <= 0 {
		return nil
	}
	var satisfied []models.PriceThreshold
	for _, t := range thresholds {
		if price <= t.Price {
			satisfied = append(satisfied, t)
		}
	}
	return satisfied
}

// IsRestock detecta a transição de indisponível para disponível
func IsRestock(product models.Product, result models.ScrapeResult) bool {
	return result.InStock && !product.WasAvailable
}
