// Package driver mantém um pool limitado de sessões de navegador
// descartáveis usadas pelas raspagens.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"rastreio-produtos/internal/metrics"

	"github.com/chromedp/chromedp"
)

// ErrPoolClosed é retornado por Acquire depois que o pool foi encerrado
var ErrPoolClosed = errors.New("pool de sessões encerrado")

// DefaultMaxDrivers é a capacidade padrão do pool
const DefaultMaxDrivers = 3

// Pool é um conjunto de capacidade fixa de sessões de navegador reutilizáveis.
// Nunca há mais sessões em uso do que a capacidade; chamadores excedentes
// ficam bloqueados até uma devolução.
type Pool struct {
	mu      sync.Mutex
	free    chan *Session
	created int
	max     int
	closed  bool
	done    chan struct{}
	once    sync.Once

	allocCtx    context.Context
	allocCancel context.CancelFunc

	// newSession é substituível em testes
	newSession func() (*Session, error)
}

// NewPool cria um pool com a capacidade informada. As sessões são criadas
// sob demanda com configuração fixa: headless, sem sandbox e sem GPU.
func NewPool(max int) *Pool {
	if max <= 0 {
		max = DefaultMaxDrivers
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"),
		chromedp.WindowSize(1920, 1080),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	p := &Pool{
		free:        make(chan *Session, max),
		max:         max,
		done:        make(chan struct{}),
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
	}
	p.newSession = p.createSession
	return p
}

// createSession cria uma sessão nova e falha imediatamente se o navegador
// não puder ser iniciado — novas tentativas são responsabilidade do chamador
func (p *Pool) createSession() (*Session, error) {
	ctx, cancel := chromedp.NewContext(p.allocCtx)

	startCtx, startCancel := context.WithTimeout(ctx, 30*time.Second)
	defer startCancel()
	if err := chromedp.Run(startCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("não foi possível iniciar o navegador: %w", err)
	}

	log.Println("Nova sessão de navegador criada")
	return &Session{ctx: ctx, cancel: cancel}, nil
}

// Acquire obtém uma sessão, bloqueando até uma ficar disponível ou a
// capacidade permitir criar uma nova. O contexto cancela a espera.
func (p *Pool) Acquire(ctx context.Context) (*Session, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}

	select {
	case s := <-p.free:
		p.mu.Unlock()
		return s, nil
	default:
	}

	if p.created < p.max {
		p.created++
		p.mu.Unlock()

		s, err := p.newSession()
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}
		metrics.ActiveDrivers.Inc()
		return s, nil
	}
	p.mu.Unlock()

	select {
	case s := <-p.free:
		return s, nil
	case <-p.done:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release devolve uma sessão ao pool. Depois do encerramento a sessão é
// descartada em vez de devolvida.
func (p *Pool) Release(s *Session) {
	if s == nil {
		return
	}

	p.mu.Lock()
	if p.closed {
		p.created--
		p.mu.Unlock()
		s.dispose()
		metrics.ActiveDrivers.Dec()
		return
	}
	p.mu.Unlock()

	// O canal tem capacidade igual ao máximo de sessões, o envio nunca bloqueia
	select {
	case p.free <- s:
	default:
		s.dispose()
	}
}

// Discard descarta uma sessão corrompida em vez de devolvê-la, liberando
// capacidade para uma nova criação
func (p *Pool) Discard(s *Session) {
	if s == nil {
		return
	}
	p.mu.Lock()
	p.created--
	p.mu.Unlock()
	s.dispose()
	metrics.ActiveDrivers.Dec()
}

// Shutdown descarta todas as sessões e faz chamadas futuras de Acquire
// falharem com ErrPoolClosed. É idempotente.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.done)
		p.mu.Unlock()

		for {
			select {
			case s := <-p.free:
				s.dispose()
				p.mu.Lock()
				p.created--
				p.mu.Unlock()
				metrics.ActiveDrivers.Dec()
			default:
				p.allocCancel()
				log.Println("Pool de sessões encerrado")
				return
			}
		}
	})
}

// Verify cria uma sessão e carrega uma página em branco para validar o
// ambiente do navegador na inicialização. A sessão que falha na navegação
// é descartada, nunca devolvida ao pool.
func (p *Pool) Verify(ctx context.Context) error {
	s, err := p.Acquire(ctx)
	if err != nil {
		return err
	}

	if err := s.Navigate("about:blank", 15*time.Second); err != nil {
		p.Discard(s)
		return err
	}
	p.Release(s)
	return nil
}
