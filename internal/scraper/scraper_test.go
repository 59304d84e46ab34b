package scraper

import (
	"testing"

	"rastreio-produtos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var trendyolFixture = `<html><body>
	<h1 class="pr-new-br">Tênis Esportivo Branco</h1>
	<span class="prc-dsc">1.299,99 TL</span>
	<div class="sp-itm">M</div>
	<div class="sp-itm">L</div>
	<div class="sp-itm so">XL</div>
</body></html>`

func testStores() []models.StoreConfig {
	return []models.StoreConfig{
		{
			ID:        1,
			Name:      "Trendyol",
			BaseURL:   "trendyol.com",
			Selectors: `{"name": "h1.pr-new-br", "price": ".prc-dsc, .prc-slg, .price-box", "size": "div.sp-itm:not(.so)"}`,
			Enabled:   true,
		},
		{
			ID:        2,
			Name:      "Bershka",
			BaseURL:   "bershka.com",
			Selectors: `{"name": "h1.product-title", "price": ".current-price-elem", "size": ".size-selector-option:not(.disabled)"}`,
			Enabled:   true,
		},
	}
}

func TestNewRegistry(t *testing.T) {
	registry, err := NewRegistry(testStores())
	require.NoError(t, err)

	require.NotNil(t, registry.ByName("Trendyol"))
	require.NotNil(t, registry.ByName("bershka"))
	assert.Nil(t, registry.ByName("Zara"))
}

func TestNewRegistrySkipsDisabledStores(t *testing.T) {
	stores := testStores()
	stores[1].Enabled = false

	registry, err := NewRegistry(stores)
	require.NoError(t, err)
	assert.Nil(t, registry.ByName("Bershka"))
}

func TestFindScraperByDomain(t *testing.T) {
	registry, err := NewRegistry(testStores())
	require.NoError(t, err)

	assert.Equal(t, "Trendyol", registry.FindScraper("https://www.trendyol.com/marca/produto-p-1234567").Store())
	assert.Equal(t, "Bershka", registry.FindScraper("https://www.bershka.com/tr/calca-c123.html").Store())
	assert.Nil(t, registry.FindScraper("https://example.com/foo"))
}

func TestValidateURL(t *testing.T) {
	registry, err := NewRegistry(testStores())
	require.NoError(t, err)

	valid := []string{
		"https://www.trendyol.com/marca/tenis-esportivo-p-1234567",
		"http://trendyol.com/nike/air-max-p-99",
		"HTTPS://WWW.TRENDYOL.COM/MARCA/PRODUTO-P-555",
	}
	for _, url := range valid {
		assert.NotNil(t, registry.ValidateURL(url), url)
	}

	invalid := []string{
		"http://example.com/foo",
		"https://www.trendyol.com/",
		"https://www.trendyol.com/marca/produto",
		"não é uma url",
	}
	for _, url := range invalid {
		assert.Nil(t, registry.ValidateURL(url), url)
	}
}

func TestTrendyolExtraction(t *testing.T) {
	registry, err := NewRegistry(testStores())
	require.NoError(t, err)
	sc := registry.ByName("Trendyol")
	doc := docFromHTML(t, trendyolFixture)

	assert.Equal(t, "Tênis Esportivo Branco", sc.GetName(doc))
	assert.Equal(t, 1299.99, sc.GetPrice(doc))
	// XL está marcado como esgotado (classe "so") e não deve aparecer
	assert.Equal(t, []string{"M", "L"}, sc.GetSizes(doc))
	assert.True(t, sc.IsInStock(doc))
}

func TestTrendyolJSONLDFallback(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">{"@type": "Product", "name": "Produto JSON", "offers": {"price": "450.00"}}</script>
	</head><body></body></html>`

	sc := NewTrendyolScraper(Selectors{})
	doc := docFromHTML(t, html)

	assert.Equal(t, "Produto JSON", sc.GetName(doc))
	// JSON-LD usa ponto decimal: 450.00 são 450 TL, não 45.000
	assert.Equal(t, 450.0, sc.GetPrice(doc))
}

func TestParseJSONLDPrice(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"decimal com ponto", "450.00", 450},
		{"inteiro", "450", 450},
		{"com espaços", " 1299.99 ", 1299.99},
		{"vazio", "", 0},
		{"negativo", "-10.00", 0},
		{"não numérico", "indisponível", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseJSONLDPrice(tt.text))
		})
	}
}

func TestTrendyolOutOfStock(t *testing.T) {
	html := `<html><body>
		<h1 class="pr-new-br">Produto Esgotado</h1>
		<span class="prc-dsc">99,90 TL</span>
	</body></html>`

	registry, err := NewRegistry(testStores())
	require.NoError(t, err)
	sc := registry.ByName("Trendyol")
	doc := docFromHTML(t, html)

	assert.Empty(t, sc.GetSizes(doc))
	assert.False(t, sc.IsInStock(doc))
}

func TestGenericScraperUsesConfiguredSelectors(t *testing.T) {
	html := `<html><body>
		<h1 class="product-title">Calça Jeans</h1>
		<span class="current-price-elem">459,95 TL</span>
		<div class="size-selector-option">36</div>
		<div class="size-selector-option">38</div>
		<div class="size-selector-option disabled">40</div>
	</body></html>`

	registry, err := NewRegistry(testStores())
	require.NoError(t, err)
	sc := registry.ByName("Bershka")
	doc := docFromHTML(t, html)

	assert.Equal(t, "Calça Jeans", sc.GetName(doc))
	assert.Equal(t, 459.95, sc.GetPrice(doc))
	assert.Equal(t, []string{"36", "38"}, sc.GetSizes(doc))
	assert.True(t, sc.IsInStock(doc))
}

func TestParseSelectorsInvalidJSON(t *testing.T) {
	_, err := ParseSelectors("{inválido")
	assert.Error(t, err)

	_, err = NewRegistry([]models.StoreConfig{{Name: "Loja", BaseURL: "loja.com", Selectors: "{inválido", Enabled: true}})
	assert.Error(t, err)
}
