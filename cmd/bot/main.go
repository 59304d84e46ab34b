package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rastreio-produtos/config"
	"rastreio-produtos/internal/bot"
	"rastreio-produtos/internal/database"
	"rastreio-produtos/internal/driver"
	"rastreio-produtos/internal/metrics"
	"rastreio-produtos/internal/scraper"
	"rastreio-produtos/internal/tracker"

	"github.com/joho/godotenv"
)

func main() {
	// Carregar variáveis de ambiente
	if err := godotenv.Load(); err != nil {
		log.Println("Arquivo .env não encontrado, usando variáveis de ambiente do sistema")
	}

	// Carregar configurações
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Erro ao carregar configurações: %v", err)
	}

	// Verificar o ambiente antes de iniciar qualquer sessão
	if !driver.EnvironmentReady() {
		log.Fatalf("Nenhum navegador encontrado no PATH. Instale o Chrome ou Chromium.")
	}

	// Inicializar banco de dados
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Erro ao inicializar banco de dados: %v", err)
	}
	defer db.Close()

	// Servidor de métricas
	metrics.Serve(cfg.MetricsPort)

	// Pool de sessões de navegador; a falha do teste inicial impede a
	// inicialização do rastreador
	pool := driver.NewPool(cfg.MaxDrivers)
	verifyCtx, cancelVerify := context.WithTimeout(context.Background(), time.Minute)
	if err := pool.Verify(verifyCtx); err != nil {
		cancelVerify()
		log.Fatalf("Falha no teste do navegador: %v", err)
	}
	cancelVerify()
	log.Println("Sessão de navegador verificada com sucesso")

	// Montar o registro de scrapers a partir das lojas habilitadas
	stores, err := db.GetEnabledStores()
	if err != nil {
		log.Fatalf("Erro ao carregar lojas habilitadas: %v", err)
	}
	registry, err := scraper.NewRegistry(stores)
	if err != nil {
		log.Fatalf("Erro ao montar registro de scrapers: %v", err)
	}

	// Inicializar bot do Telegram
	telegramBot, err := bot.Init(cfg.TelegramBotToken)
	if err != nil {
		log.Fatalf("Erro ao inicializar bot do Telegram: %v", err)
	}

	// Criar e iniciar o rastreador
	fetcher := tracker.NewPageFetcher(pool)
	tr := tracker.New(db, fetcher, registry, bot.NewNotifier(telegramBot), cfg.CheckInterval)
	tr.Start()
	defer tr.Cleanup()

	// Processar comandos do bot em background
	go bot.SetupCommands(telegramBot, db, tr, cfg.TelegramChatID)

	// Aguardar sinal de interrupção
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Encerrando bot...")
	tr.Cleanup()
}
