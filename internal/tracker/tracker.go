// Package tracker implementa o motor de rastreamento: o ciclo periódico de
// verificação, a política de novas tentativas por produto, a comparação de
// preço/limite/estoque e a emissão de notificações.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"rastreio-produtos/internal/chart"
	"rastreio-produtos/internal/metrics"
	"rastreio-produtos/internal/models"
	"rastreio-produtos/internal/retry"
	"rastreio-produtos/internal/scraper"
)

var (
	// ErrInvalidURL indica URL fora do formato de produto das lojas habilitadas
	ErrInvalidURL = errors.New("URL de produto inválida")
	// ErrDetailsUnavailable indica que a raspagem não obteve os dados do produto
	ErrDetailsUnavailable = errors.New("não foi possível obter os detalhes do produto")
	// ErrInvalidThreshold indica limite de preço fora do intervalo aceito
	ErrInvalidThreshold = errors.New("limite de preço deve ser maior que zero")
	// ErrNotOwner indica que o produto pertence a outro usuário
	ErrNotOwner = errors.New("produto não pertence ao usuário")
)

// Store é o subconjunto do banco de dados consumido pelo rastreador
type Store interface {
	GetAllTrackedProducts() ([]models.Product, error)
	GetProductByID(id int64) (*models.Product, error)
	AddTrackedProduct(userID int64, p models.Product) (int64, error)
	DeleteProduct(userID, productID int64) (bool, error)
	UpdateProductPrice(productID int64, price float64, available bool) error
	GetProductThresholds(productID int64) ([]models.PriceThreshold, error)
	AddThreshold(userID, productID int64, price float64) error
	GetPriceHistory(productID int64) ([]models.PriceHistoryEntry, error)
	GetEnabledStores() ([]models.StoreConfig, error)
	GetLatestPrice(productName string, storeID int64) (*models.StorePrice, error)
}

// Notifier entrega mensagens aos usuários; a entrega é melhor esforço e
// falhas são responsabilidade do destino, não do rastreador
type Notifier interface {
	Notify(userID int64, message string)
}

// NotifierFunc adapta uma função a Notifier
type NotifierFunc func(userID int64, message string)

// Notify chama a própria função
func (f NotifierFunc) Notify(userID int64, message string) {
	f(userID, message)
}

// Tracker é o motor de rastreamento de produtos
type Tracker struct {
	db       Store
	fetcher  Fetcher
	registry *scraper.Registry
	notifier Notifier
	interval time.Duration
	policy   retry.Policy

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startOnce sync.Once
	closeOnce sync.Once
}

// New cria o rastreador. O ciclo só começa após Start.
func New(db Store, fetcher Fetcher, registry *scraper.Registry, notifier Notifier, interval time.Duration) *Tracker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{
		db:       db,
		fetcher:  fetcher,
		registry: registry,
		notifier: notifier,
		interval: interval,
		policy:   retry.Default(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Interval retorna o intervalo entre ciclos de verificação
func (t *Tracker) Interval() time.Duration {
	return t.interval
}

// Start inicia o ciclo de verificação em background
func (t *Tracker) Start() {
	t.startOnce.Do(func() {
		t.wg.Add(1)
		go t.loop()
	})
}

func (t *Tracker) loop() {
	defer t.wg.Done()
	log.Printf("Rastreador iniciado. Verificando produtos a cada %v", t.interval)

	for {
		t.checkAllProducts()

		select {
		case <-t.ctx.Done():
			log.Println("Ciclo de rastreamento encerrado")
			return
		case <-time.After(t.interval):
		}
	}
}

// checkAllProducts executa uma passada completa pelos produtos rastreados
func (t *Tracker) checkAllProducts() {
	products, err := t.db.GetAllTrackedProducts()
	if err != nil {
		log.Printf("Erro ao buscar produtos rastreados: %v", err)
		return
	}

	for _, product := range products {
		// O sinal de encerramento é verificado entre produtos; o produto
		// em andamento termina sua verificação normalmente
		if t.ctx.Err() != nil {
			return
		}
		t.checkProduct(product)
	}
}

func (t *Tracker) checkProduct(product models.Product) {
	result, err := t.scrape(t.ctx, product.URL)
	if err != nil {
		// Desistir do produto neste ciclo: estado armazenado intocado,
		// nenhuma notificação
		log.Printf("Produto %d (%s) ignorado neste ciclo: %v", product.ID, product.URL, err)
		return
	}

	t.evaluate(product, *result)

	if err := t.db.UpdateProductPrice(product.ID, result.Price, result.InStock); err != nil {
		log.Printf("Erro ao persistir preço do produto %d: %v", product.ID, err)
	}
}

// evaluate compara a leitura nova com o estado armazenado e emite as
// notificações devidas. As condições são independentes entre si.
func (t *Tracker) evaluate(product models.Product, result models.ScrapeResult) {
	thresholds, err := t.db.GetProductThresholds(product.ID)
	if err != nil {
		log.Printf("Erro ao buscar limites do produto %d: %v", product.ID, err)
	}
	for _, threshold := range SatisfiedThresholds(thresholds, result.Price) {
		t.notifier.Notify(threshold.UserID, formatThresholdReached(product, threshold, result))
	}

	if IsRestock(product, result) {
		t.notifier.Notify(product.UserID, formatRestock(product, result))
	}

	if ShouldNotifyPriceDrop(product, result) {
		metrics.PriceDrops.Inc()
		t.notifier.Notify(product.UserID, formatPriceDrop(product, result))
	}
}

// scrape executa a raspagem de uma URL com a política de novas tentativas.
// Preço zerado conta como falha e entra nas tentativas.
func (t *Tracker) scrape(ctx context.Context, url string) (*models.ScrapeResult, error) {
	sc := t.registry.FindScraper(url)
	if sc == nil {
		return nil, fmt.Errorf("%w: %s", scraper.ErrUnsupportedStore, url)
	}

	var result *models.ScrapeResult
	err := t.policy.Do(ctx, func() error {
		doc, err := t.fetcher.Fetch(ctx, url, sc.WaitSelector())
		if err != nil {
			metrics.ScrapeErrors.Inc()
			log.Printf("Falha na raspagem de %s: %v", url, err)
			return err
		}

		res := models.ScrapeResult{
			Name:           sc.GetName(doc),
			Price:          sc.GetPrice(doc),
			AvailableSizes: sc.GetSizes(doc),
			InStock:        sc.IsInStock(doc),
			FetchedAt:      time.Now(),
		}
		if res.Price == 0 {
			metrics.ScrapeErrors.Inc()
			log.Printf("Falha na raspagem de %s: preço não encontrado", url)
			return fmt.Errorf("preço não encontrado em %s", url)
		}

		metrics.Scrapes.Inc()
		result = &res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetProductDetails busca os detalhes atuais de um produto sob demanda
func (t *Tracker) GetProductDetails(ctx context.Context, url string) (*models.ScrapeResult, error) {
	return t.scrape(ctx, url)
}

// GetAvailableSizes retorna os tamanhos disponíveis de um produto
func (t *Tracker) GetAvailableSizes(ctx context.Context, url string) ([]string, error) {
	result, err := t.scrape(ctx, url)
	if err != nil {
		return nil, err
	}
	return result.AvailableSizes, nil
}

// AddTracking valida a URL, busca os detalhes iniciais e registra o
// rastreamento. A validação acontece antes de qualquer sessão ser usada.
func (t *Tracker) AddTracking(ctx context.Context, userID int64, url, size string) (*models.ScrapeResult, error) {
	sc := t.registry.ValidateURL(url)
	if sc == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, url)
	}

	result, err := t.scrape(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDetailsUnavailable, err)
	}

	if size = strings.TrimSpace(size); size == "" {
		size = models.SizeAll
	}

	id, err := t.db.AddTrackedProduct(userID, models.Product{
		UserID:       userID,
		URL:          url,
		Store:        sc.Store(),
		Size:         size,
		LastPrice:    result.Price,
		Name:         result.Name,
		WasAvailable: result.InStock,
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao registrar rastreamento: %w", err)
	}

	// Primeira entrada do histórico segue a regra normal de atualização
	if err := t.db.UpdateProductPrice(id, result.Price, result.InStock); err != nil {
		log.Printf("Erro ao registrar histórico inicial do produto %d: %v", id, err)
	}

	return result, nil
}

// CheckNow verifica um produto imediatamente a pedido do usuário,
// persistindo a leitura como em um ciclo normal
func (t *Tracker) CheckNow(ctx context.Context, userID, productID int64) (*models.ScrapeResult, error) {
	product, err := t.db.GetProductByID(productID)
	if err != nil {
		return nil, fmt.Errorf("produto não encontrado: %w", err)
	}
	if product.UserID != userID {
		return nil, ErrNotOwner
	}

	result, err := t.scrape(ctx, product.URL)
	if err != nil {
		return nil, err
	}

	if err := t.db.UpdateProductPrice(product.ID, result.Price, result.InStock); err != nil {
		log.Printf("Erro ao persistir preço do produto %d: %v", product.ID, err)
	}
	return result, nil
}

// DeleteTracking remove um rastreamento do usuário
func (t *Tracker) DeleteTracking(userID, productID int64) (bool, error) {
	return t.db.DeleteProduct(userID, productID)
}

// AddPriceThreshold registra um limite de preço para um produto do usuário
func (t *Tracker) AddPriceThreshold(userID, productID int64, price float64) error {
	if price <= 0 {
		return ErrInvalidThreshold
	}
	product, err := t.db.GetProductByID(productID)
	if err != nil {
		return fmt.Errorf("produto não encontrado: %w", err)
	}
	if product.UserID != userID {
		return ErrNotOwner
	}
	return t.db.AddThreshold(userID, productID, price)
}

// GetPriceHistoryChart gera o gráfico do histórico de preços de um produto
func (t *Tracker) GetPriceHistoryChart(productID int64) ([]byte, error) {
	product, err := t.db.GetProductByID(productID)
	if err != nil {
		return nil, fmt.Errorf("produto não encontrado: %w", err)
	}

	history, err := t.db.GetPriceHistory(productID)
	if err != nil {
		return nil, err
	}
	return chart.Render(product.Name, history)
}

// ComparePrices compara o preço de um produto entre as lojas habilitadas,
// em ordem crescente de preço. Empates preservam a ordem das lojas.
func (t *Tracker) ComparePrices(productName string) ([]models.StorePrice, error) {
	stores, err := t.db.GetEnabledStores()
	if err != nil {
		return nil, err
	}

	var results []models.StorePrice
	for _, store := range stores {
		price, err := t.db.GetLatestPrice(productName, store.ID)
		if err != nil {
			log.Printf("Erro ao buscar preço de %q na loja %s: %v", productName, store.Name, err)
			continue
		}
		if price == nil {
			continue
		}
		results = append(results, models.StorePrice{
			StoreName: store.Name,
			Price:     price.Price,
			InStock:   price.InStock,
			URL:       price.URL,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Price < results[j].Price
	})
	return results, nil
}

// Cleanup encerra o ciclo dentro de um tempo limitado e descarta todas as
// sessões de navegador. É idempotente e seguro de chamar múltiplas vezes.
func (t *Tracker) Cleanup() {
	t.closeOnce.Do(func() {
		log.Println("Encerrando rastreador...")
		t.cancel()

		done := make(chan struct{})
		go func() {
			t.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(30 * time.Second):
			log.Println("Tempo esgotado aguardando o fim do ciclo")
		}

		t.fetcher.Shutdown()
		log.Println("Rastreador encerrado")
	})
}
