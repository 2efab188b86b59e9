package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/lucky-draw/internal/domain"
)

// Publisher envia os eventos do sorteio em tempo real por pub/sub, um canal por evento.
type Publisher struct {
	client *redis.Client
	prefix string
}

func NewPublisher(client *redis.Client, prefix string) *Publisher {
	if prefix == "" {
		prefix = "sorteio"
	}
	return &Publisher{client: client, prefix: prefix}
}

// Channel devolve o canal em que os clientes do evento devem se inscrever.
func (p *Publisher) Channel(eventID domain.EventID) string {
	return fmt.Sprintf("%s:%s", p.prefix, eventID)
}

func (p *Publisher) Publish(ctx context.Context, evento domain.DrawEvent) error {
	payload, err := json.Marshal(evento)
	if err != nil {
		return fmt.Errorf("redis publisher: serializar %s: %w", evento.Type, err)
	}
	if err := p.client.Publish(ctx, p.Channel(evento.EventID), payload).Err(); err != nil {
		return fmt.Errorf("redis publisher: publicar %s: %w", evento.Type, err)
	}
	return nil
}

var _ domain.DrawPublisher = (*Publisher)(nil)
