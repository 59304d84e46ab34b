package driver

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPool cria um pool cujas sessões são objetos vazios, sem navegador
func newTestPool(max int) *Pool {
	p := NewPool(max)
	p.newSession = func() (*Session, error) {
		return &Session{}, nil
	}
	return p
}

func TestPoolNeverExceedsCapacity(t *testing.T) {
	const capacity = 3
	const callers = 10

	p := newTestPool(capacity)
	defer p.Shutdown()

	var active, peak int64
	var wg sync.WaitGroup

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			s, err := p.Acquire(context.Background())
			if !assert.NoError(t, err) {
				return
			}

			now := atomic.AddInt64(&active, 1)
			for {
				old := atomic.LoadInt64(&peak)
				if now <= old || atomic.CompareAndSwapInt64(&peak, old, now) {
					break
				}
			}

			time.Sleep(10 * time.Millisecond)
			atomic.AddInt64(&active, -1)
			p.Release(s)
		}()
	}

	wg.Wait()
	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(capacity))
}

func TestAcquireBlocksUntilRelease(t *testing.T) {
	p := newTestPool(1)
	defer p.Shutdown()

	s1, err := p.Acquire(context.Background())
	require.NoError(t, err)

	acquired := make(chan *Session, 1)
	go func() {
		s, err := p.Acquire(context.Background())
		if assert.NoError(t, err) {
			acquired <- s
		}
	}()

	select {
	case <-acquired:
		t.Fatal("Acquire não bloqueou com o pool esgotado")
	case <-time.After(50 * time.Millisecond):
	}

	p.Release(s1)

	select {
	case s2 := <-acquired:
		p.Release(s2)
	case <-time.After(time.Second):
		t.Fatal("Acquire não desbloqueou após a devolução")
	}
}

func TestAcquireHonorsContext(t *testing.T) {
	p := newTestPool(1)
	defer p.Shutdown()

	s1, err := p.Acquire(context.Background())
	require.NoError(t, err)
	defer p.Release(s1)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = p.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestShutdownFailsFutureAcquires(t *testing.T) {
	p := newTestPool(2)

	s, err := p.Acquire(context.Background())
	require.NoError(t, err)
	p.Release(s)

	p.Shutdown()
	p.Shutdown() // idempotente

	_, err = p.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestShutdownWakesBlockedAcquirers(t *testing.T) {
	p := newTestPool(1)

	s, err := p.Acquire(context.Background())
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		_, err := p.Acquire(context.Background())
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	p.Shutdown()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrPoolClosed)
	case <-time.After(time.Second):
		t.Fatal("Acquire bloqueado não foi acordado pelo encerramento")
	}

	// Sessão em uso no momento do encerramento é descartada na devolução
	p.Release(s)
}

func TestReleaseAfterShutdownDisposes(t *testing.T) {
	p := newTestPool(1)

	s, err := p.Acquire(context.Background())
	require.NoError(t, err)

	p.Shutdown()
	p.Release(s)

	_, err = p.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestDiscardFreesCapacity(t *testing.T) {
	p := newTestPool(1)
	defer p.Shutdown()

	s, err := p.Acquire(context.Background())
	require.NoError(t, err)

	// Descartar a sessão corrompida libera espaço para criar outra
	p.Discard(s)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s2, err := p.Acquire(ctx)
	require.NoError(t, err)
	p.Release(s2)
}

func TestVerifyDiscardsFailedSession(t *testing.T) {
	p := NewPool(1)
	defer p.Shutdown()

	var created int
	p.newSession = func() (*Session, error) {
		created++
		// Sessão sem contexto de navegador: qualquer navegação falha
		return &Session{ctx: context.Background()}, nil
	}

	require.Error(t, p.Verify(context.Background()))

	// A sessão quebrada foi descartada e liberou capacidade para uma nova
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s, err := p.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	p.Release(s)
}

func TestAcquireReusesReleasedSessions(t *testing.T) {
	p := newTestPool(2)
	defer p.Shutdown()

	var created int
	p.newSession = func() (*Session, error) {
		created++
		return &Session{}, nil
	}

	for i := 0; i < 5; i++ {
		s, err := p.Acquire(context.Background())
		require.NoError(t, err)
		p.Release(s)
	}

	assert.Equal(t, 1, created)
}
