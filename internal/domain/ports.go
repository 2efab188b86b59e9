package domain

import (
	"context"
	"time"
)

type ConfigRepository interface {
	Create(ctx context.Context, c DrawConfig) error
	// UpdateScheduled grava a config somente se ela ainda estiver em scheduled.
	UpdateScheduled(ctx context.Context, c DrawConfig) error
	FindByID(ctx context.Context, id ConfigID) (DrawConfig, error)
	FindActive(ctx context.Context, eventID EventID) (DrawConfig, error)
	ListByEvent(ctx context.Context, eventID EventID, statuses ...ConfigStatus) ([]DrawConfig, error)
	// TransitionStatus é o compare-and-set atômico de status; devolve false quando o status atual difere de from.
	TransitionStatus(ctx context.Context, id ConfigID, from, to ConfigStatus, at time.Time) (bool, error)
}

type EntryRepository interface {
	// Append grava a entrada respeitando o limite de slots por participante.
	Append(ctx context.Context, e Entry, maxPerUser int) (Entry, error)
	CountByConfig(ctx context.Context, configID ConfigID) (int64, error)
	List(ctx context.Context, configID ConfigID, offset, limit int) ([]Entry, error)
	ListAll(ctx context.Context, configID ConfigID) ([]Entry, error)
	// Snapshot devolve as entradas criadas até o instante informado.
	Snapshot(ctx context.Context, configID ConfigID, until time.Time) ([]Entry, error)
}

// DrawCompletion é o resultado gravado de uma rodada, aplicado numa única transação.
type DrawCompletion struct {
	ConfigID     ConfigID
	Winners      []Winner
	TotalEntries int64
	Seed         int64
	CompletedAt  time.Time
}

type WinnerRepository interface {
	// Complete grava ganhadores e marca a config como completed se ela ainda estiver em drawing.
	Complete(ctx context.Context, c DrawCompletion) error
	ListByConfig(ctx context.Context, configID ConfigID) ([]Winner, error)
	FindByID(ctx context.Context, id WinnerID) (Winner, error)
	// MarkClaimed resgata o prêmio somente se ainda não foi resgatado.
	MarkClaimed(ctx context.Context, id WinnerID, at time.Time) (bool, error)
}

type Contador interface {
	Incrementar(ctx context.Context, chave string, delta int64) (int64, error)
	Definir(ctx context.Context, chave string, valor int64) error
	Obter(ctx context.Context, chave string) (int64, error)
}

type Fila interface {
	PublicarEntrada(ctx context.Context, evento EntryEvent) error
	ConsumirEntradas(ctx context.Context, handler func(context.Context, EntryEvent) error) error
}

type DrawPublisher interface {
	Publish(ctx context.Context, evento DrawEvent) error
}

type AdmissionGuard interface {
	Allow(ctx context.Context, configID ConfigID, fingerprint string) error
}

type Clock interface {
	Agora() time.Time
}
