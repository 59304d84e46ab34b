// Package retry aplica uma política de novas tentativas com recuo
// exponencial em torno de chamadas externas sujeitas a falhas transitórias.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrMaxAttempts é retornado quando todas as tentativas falharam
var ErrMaxAttempts = errors.New("número máximo de tentativas excedido")

// Policy define a política de novas tentativas aplicada no ponto da chamada
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
}

// Default é a política usada nas raspagens: até 3 tentativas com
// atrasos de 2s e 4s entre elas
func Default() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: 2 * time.Second,
		Multiplier:   2,
	}
}

// DelayFor retorna o atraso antes da tentativa de número attempt (a partir
// da segunda). Os atrasos dobram a cada tentativa: 2, 4, 8, ...
func (p Policy) DelayFor(attempt int) time.Duration {
	delay := p.InitialDelay
	for i := 2; i < attempt; i++ {
		delay = time.Duration(float64(delay) * p.Multiplier)
	}
	return delay
}

// Do executa fn até obter sucesso ou esgotar as tentativas, aguardando o
// atraso da política entre elas. O contexto interrompe a espera.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if lastErr = fn(); lastErr == nil {
			return nil
		}

		if attempt < p.MaxAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.DelayFor(attempt + 1)):
			}
		}
	}

	return fmt.Errorf("%w após %d tentativas: %w", ErrMaxAttempts, p.MaxAttempts, lastErr)
}
