// Package scraper extrai nome, preço e tamanhos de páginas de produto já
// renderizadas por uma sessão de navegador. Os seletores vêm da
// configuração de cada loja, permitindo ajustes sem mudança de código.
package scraper

import (
	"encoding/json"
	"errors"
	"strings"

	"rastreio-produtos/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// ErrUnsupportedStore indica que nenhuma loja habilitada atende a URL
var ErrUnsupportedStore = errors.New("nenhuma loja suportada para esta URL")

// StoreScraper define as capacidades de extração de uma loja
type StoreScraper interface {
	Store() string
	// CanHandle verifica se a URL pertence ao domínio da loja
	CanHandle(url string) bool
	// ValidateURL verifica se a URL tem o formato de página de produto da loja
	ValidateURL(url string) bool
	// WaitSelector é o elemento aguardado após a navegação
	WaitSelector() string
	GetName(doc *goquery.Document) string
	GetPrice(doc *goquery.Document) float64
	GetSizes(doc *goquery.Document) []string
	IsInStock(doc *goquery.Document) bool
}

// Selectors mapeia campos semânticos para listas ordenadas de seletores
// CSS candidatos, separados por vírgula
type Selectors struct {
	Name  string `json:"name"`
	Price string `json:"price"`
	Size  string `json:"size"`
	Stock string `json:"stock,omitempty"`
}

// ParseSelectors decodifica o mapa de seletores JSON de uma loja
func ParseSelectors(raw string) (Selectors, error) {
	var s Selectors
	err := json.Unmarshal([]byte(raw), &s)
	return s, err
}

// candidates divide uma lista de seletores em candidatos ordenados
func candidates(list string) []string {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Registry mantém os scrapers das lojas habilitadas
type Registry struct {
	scrapers []StoreScraper
}

// NewRegistry monta o registro a partir das configurações de loja.
// Trendyol tem implementação própria; as demais usam a extração genérica
// dirigida apenas pelos seletores configurados.
func NewRegistry(stores []models.StoreConfig) (*Registry, error) {
	r := &Registry{}
	for _, cfg := range stores {
		if !cfg.Enabled {
			continue
		}
		sel, err := ParseSelectors(cfg.Selectors)
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(cfg.Name, "Trendyol") {
			r.scrapers = append(r.scrapers, NewTrendyolScraper(sel))
		} else {
			r.scrapers = append(r.scrapers, NewGenericScraper(cfg.Name, cfg.BaseURL, sel))
		}
	}
	return r, nil
}

// FindScraper encontra o scraper apropriado para uma URL
func (r *Registry) FindScraper(url string) StoreScraper {
	for _, s := range r.scrapers {
		if s.CanHandle(url) {
			return s
		}
	}
	return nil
}

// ByName retorna o scraper de uma loja pelo nome
func (r *Registry) ByName(store string) StoreScraper {
	for _, s := range r.scrapers {
		if strings.EqualFold(s.Store(), store) {
			return s
		}
	}
	return nil
}

// ValidateURL é a validação pura que protege a entrada no rastreamento:
// a URL precisa casar com o formato de página de produto de alguma loja
// habilitada. Nenhuma sessão de navegador é consumida aqui.
func (r *Registry) ValidateURL(url string) StoreScraper {
	for _, s := range r.scrapers {
		if s.ValidateURL(url) {
			return s
		}
	}
	return nil
}
