// Pacote redis implementa fila de entradas, contadores e publicação de eventos do sorteio sobre Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/lucky-draw/internal/domain"
)

const esperaPadrao = 5 * time.Second

// Fila é a lista Redis por onde o pipeline de upload entrega eventos de entrada.
// LPUSH na publicação e BRPOP no consumo mantêm a ordem de chegada.
type Fila struct {
	client *redis.Client
	key    string
	espera time.Duration
}

func NewFila(client *redis.Client, key string) *Fila {
	return &Fila{client: client, key: key, espera: esperaPadrao}
}

// ChaveInvalidas guarda payloads que não puderam ser decodificados, para inspeção manual.
func (f *Fila) ChaveInvalidas() string {
	return f.key + ":invalidas"
}

func (f *Fila) PublicarEntrada(ctx context.Context, evento domain.EntryEvent) error {
	payload, err := json.Marshal(evento)
	if err != nil {
		return fmt.Errorf("redis fila: serializar entrada: %w", err)
	}
	if err := f.client.LPush(ctx, f.key, payload).Err(); err != nil {
		return fmt.Errorf("redis fila: enfileirar entrada: %w", err)
	}
	return nil
}

// ConsumirEntradas bloqueia até o contexto acabar ou o handler devolver erro.
func (f *Fila) ConsumirEntradas(ctx context.Context, handler func(context.Context, domain.EntryEvent) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := f.client.BRPop(ctx, f.espera, f.key).Result()
		switch {
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("redis fila: consumir entrada: %w", err)
		case len(res) != 2:
			continue
		}

		var evento domain.EntryEvent
		if err := json.Unmarshal([]byte(res[1]), &evento); err != nil {
			if err := f.client.LPush(ctx, f.ChaveInvalidas(), res[1]).Err(); err != nil {
				return fmt.Errorf("redis fila: mover payload invalido: %w", err)
			}
			continue
		}

		if err := handler(ctx, evento); err != nil {
			return err
		}
	}
}

var _ domain.Fila = (*Fila)(nil)
