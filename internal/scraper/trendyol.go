package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// URLs de produto da Trendyol terminam em "-p-<número>"
var trendyolURLPattern = regexp.MustCompile(`(?i)trendyol\.com/[^/]+/[^/]*-p-[0-9]+`)

var (
	trendyolNameFallback  = "h1.pr-new-br, h1.product-name, h1"
	trendyolPriceFallback = ".prc-dsc, .prc-slg, .price-box"
	trendyolSizeFallback  = "div.sp-itm:not(.so), div.size-variant-wrapper:not(.disabled), div.variant-wrapper:not(.disabled)"
)

// TrendyolScraper é a implementação completa para a Trendyol
type TrendyolScraper struct {
	sel Selectors
}

// NewTrendyolScraper cria o scraper da Trendyol. Seletores ausentes na
// configuração caem nos candidatos conhecidos da loja.
func NewTrendyolScraper(sel Selectors) *TrendyolScraper {
	if sel.Name == "" {
		sel.Name = trendyolNameFallback
	}
	if sel.Price == "" {
		sel.Price = trendyolPriceFallback
	}
	if sel.Size == "" {
		sel.Size = trendyolSizeFallback
	}
	return &TrendyolScraper{sel: sel}
}

func (t *TrendyolScraper) Store() string {
	return "Trendyol"
}

func (t *TrendyolScraper) CanHandle(url string) bool {
	return strings.Contains(strings.ToLower(url), "trendyol.com")
}

func (t *TrendyolScraper) ValidateURL(url string) bool {
	return trendyolURLPattern.MatchString(url)
}

func (t *TrendyolScraper) WaitSelector() string {
	return candidates(t.sel.Price)[0]
}

// GetName extrai o nome do produto
func (t *TrendyolScraper) GetName(doc *goquery.Document) string {
	if name := firstText(doc, t.sel.Name); name != "" {
		return name
	}
	// Último recurso: buscar no JSON-LD da página
	return jsonLDField(doc, "name")
}

// GetPrice tenta os candidatos em ordem (preço com desconto, preço cheio,
// caixa de preço) e retorna 0 quando nenhum é interpretável
func (t *TrendyolScraper) GetPrice(doc *goquery.Document) float64 {
	if price := firstPrice(doc, t.sel.Price); price > 0 {
		return price
	}
	return parseJSONLDPrice(jsonLDField(doc, "price"))
}

// parseJSONLDPrice interpreta um preço vindo do JSON-LD. Ao contrário do
// texto visível da página, o JSON-LD usa ponto decimal e não tem separador
// de milhar; o formato local só entra como último recurso.
func parseJSONLDPrice(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if price, err := strconv.ParseFloat(raw, 64); err == nil && price >= 0 {
		return price
	}
	return ParsePrice(raw)
}

// GetSizes retorna os tamanhos disponíveis. Lista vazia significa produto
// sem conceito de tamanho ou falha de carregamento, nunca um erro.
func (t *TrendyolScraper) GetSizes(doc *goquery.Document) []string {
	return collectSizes(doc, t.sel.Size)
}

// IsInStock deriva a disponibilidade da lista de tamanhos, já que a
// Trendyol não expõe um indicador de estoque dedicado
func (t *TrendyolScraper) IsInStock(doc *goquery.Document) bool {
	return len(t.GetSizes(doc)) > 0
}

// jsonLDField busca um campo simples nos blocos JSON-LD da página
func jsonLDField(doc *goquery.Document, field string) string {
	re := regexp.MustCompile(`"` + field + `"\s*:\s*"?([^",}]+)"?`)

	var value string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		matches := re.FindStringSubmatch(s.Text())
		if len(matches) > 1 {
			value = strings.TrimSpace(matches[1])
			return false
		}
		return true
	})
	return value
}
