package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var nonPriceChars = regexp.MustCompile(`[^0-9.]`)

// ParsePrice converte um texto de preço no formato local ("1.299,99 TL")
// para float64. Separador de milhar é ponto, decimal é vírgula e o sufixo
// de moeda é descartado. Retorna 0 quando o texto não é um preço válido.
func ParsePrice(text string) float64 {
	t := strings.TrimSpace(text)
	if t == "" {
		return 0
	}

	t = strings.ReplaceAll(t, ".", "")
	t = strings.ReplaceAll(t, ",", ".")
	t = nonPriceChars.ReplaceAllString(t, "")
	if t == "" {
		return 0
	}

	price, err := strconv.ParseFloat(t, 64)
	if err != nil || price < 0 {
		return 0
	}
	return price
}

// firstText retorna o texto do primeiro candidato que encontra um elemento
// com conteúdo não vazio
func firstText(doc *goquery.Document, selectorList string) string {
	for _, sel := range candidates(selectorList) {
		text := strings.TrimSpace(doc.Find(sel).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

// firstPrice tenta os candidatos em ordem e retorna o primeiro preço
// que consegue interpretar
func firstPrice(doc *goquery.Document, selectorList string) float64 {
	for _, sel := range candidates(selectorList) {
		var price float64
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			price = ParsePrice(s.Text())
			return price == 0
		})
		if price > 0 {
			return price
		}
	}
	return 0
}

// collectSizes tenta os candidatos em ordem e retorna os textos do primeiro
// seletor que encontra algum elemento
func collectSizes(doc *goquery.Document, selectorList string) []string {
	for _, sel := range candidates(selectorList) {
		var sizes []string
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				sizes = append(sizes, text)
			}
		})
		if len(sizes) > 0 {
			return sizes
		}
	}
	return nil
}
