package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// GenericScraper atende lojas cuja página funciona só com os seletores
// configurados (Bershka, Zara). Lojas com estrutura de página mais
// divergente ganham uma implementação própria, como a Trendyol.
type GenericScraper struct {
	store      string
	domain     string
	sel        Selectors
	urlPattern *regexp.Regexp
}

// NewGenericScraper cria um scraper dirigido por configuração
func NewGenericScraper(store, domain string, sel Selectors) *GenericScraper {
	// Formato de URL de produto: domínio da loja seguido de um caminho
	// com identificador numérico
	pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(domain) + `/.*[0-9]+`)
	return &GenericScraper{
		store:      store,
		domain:     strings.ToLower(domain),
		sel:        sel,
		urlPattern: pattern,
	}
}

func (g *GenericScraper) Store() string {
	return g.store
}

func (g *GenericScraper) CanHandle(url string) bool {
	return strings.Contains(strings.ToLower(url), g.domain)
}

func (g *GenericScraper) ValidateURL(url string) bool {
	return g.urlPattern.MatchString(url)
}

func (g *GenericScraper) WaitSelector() string {
	if c := candidates(g.sel.Price); len(c) > 0 {
		return c[0]
	}
	return "body"
}

func (g *GenericScraper) GetName(doc *goquery.Document) string {
	return firstText(doc, g.sel.Name)
}

func (g *GenericScraper) GetPrice(doc *goquery.Document) float64 {
	return firstPrice(doc, g.sel.Price)
}

func (g *GenericScraper) GetSizes(doc *goquery.Document) []string {
	return collectSizes(doc, g.sel.Size)
}

func (g *GenericScraper) IsInStock(doc *goquery.Document) bool {
	// Indicador de estoque explícito quando configurado; caso contrário
	// a disponibilidade deriva da lista de tamanhos
	if g.sel.Stock != "" {
		return doc.Find(g.sel.Stock).Length() > 0
	}
	return len(g.GetSizes(doc)) > 0
}
