package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rastreio-produtos/internal/driver"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher obtém o documento renderizado de uma página de produto
type Fetcher interface {
	Fetch(ctx context.Context, url, waitSelector string) (*goquery.Document, error)
	Shutdown()
}

// PageFetcher busca páginas usando o pool de sessões de navegador.
// Cada busca ocupa uma sessão apenas entre a navegação e a captura do HTML;
// a extração e a persistência acontecem fora do pool.
type PageFetcher struct {
	pool        *driver.Pool
	navTimeout  time.Duration
	waitTimeout time.Duration
}

// NewPageFetcher cria um fetcher sobre o pool informado
func NewPageFetcher(pool *driver.Pool) *PageFetcher {
	return &PageFetcher{
		pool:        pool,
		navTimeout:  20 * time.Second,
		waitTimeout: 10 * time.Second,
	}
}

// Fetch adquire uma sessão, navega até a URL e devolve o documento
// renderizado. A sessão é devolvida ao pool em todos os caminhos de saída;
// sessões que falharam na navegação são descartadas em vez de devolvidas.
func (f *PageFetcher) Fetch(ctx context.Context, url, waitSelector string) (*goquery.Document, error) {
	session, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	healthy := false
	defer func() {
		if healthy {
			f.pool.Release(session)
		} else {
			f.pool.Discard(session)
		}
	}()

	if err := session.Navigate(url, f.navTimeout); err != nil {
		return nil, fmt.Errorf("erro ao carregar página %s: %w", url, err)
	}

	// Esperas de melhor esforço: o elemento pode simplesmente não existir
	// e o conteúdo dinâmico pode já estar carregado
	if waitSelector != "" && waitSelector != "body" {
		_ = session.WaitVisible(waitSelector, f.waitTimeout)
	}
	_ = session.ScrollToBottom(5 * time.Second)

	html, err := session.HTML(f.waitTimeout)
	if err != nil {
		return nil, fmt.Errorf("erro ao capturar HTML de %s: %w", url, err)
	}
	healthy = true

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("erro ao interpretar HTML de %s: %w", url, err)
	}
	return doc, nil
}

// Shutdown encerra o pool de sessões
func (f *PageFetcher) Shutdown() {
	f.pool.Shutdown()
}
