package models

import "time"

// ScrapeResult é o resultado transitório de uma raspagem de página de produto.
// Price igual a 0 significa "preço não encontrado" e o ciclo deve descartar
// a leitura; nunca é persistido diretamente.
type ScrapeResult struct {
	Name           string
	Price          float64
	AvailableSizes []string
	InStock        bool
	FetchedAt      time.Time
}

// HasSize verifica se um tamanho aparece na lista de tamanhos disponíveis
func (r ScrapeResult) HasSize(size string) bool {
	for _, s := range r.AvailableSizes {
		if s == size {
			return true
		}
	}
	return false
}

// StorePrice é uma leitura de preço de um produto em uma loja específica,
// usada na comparação entre lojas
type StorePrice struct {
	StoreName string
	Price     float64
	InStock   bool
	URL       string
}
