// Package metrics mantém os contadores globais de observabilidade do
// rastreador, expostos via Prometheus.
package metrics

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Scrapes conta o total de raspagens de produto realizadas
	Scrapes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "product_scrapes_total",
		Help: "Total de raspagens de produto",
	})

	// ScrapeErrors conta o total de erros de raspagem
	ScrapeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scrape_errors_total",
		Help: "Total de erros de raspagem",
	})

	// PriceDrops conta o total de quedas de preço detectadas
	PriceDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "price_drops_total",
		Help: "Total de quedas de preço detectadas",
	})

	// ActiveDrivers registra o número de sessões de navegador ativas
	ActiveDrivers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "browser_drivers_active",
		Help: "Número de sessões de navegador ativas",
	})
)

// Serve inicia o servidor de métricas em background. Porta 0 desabilita.
func Serve(port int) {
	if port <= 0 {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Servidor de métricas iniciado na porta %d", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Servidor de métricas encerrado: %v", err)
		}
	}()
}
