// Pacote worker contém o processamento assíncrono dos eventos de entrada vindos da fila Redis.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/marcelojr/lucky-draw/internal/app/luckydraw"
	"github.com/marcelojr/lucky-draw/internal/domain"
	"github.com/marcelojr/lucky-draw/internal/platform/metrics"
)

// Admitter é o recorte do luckydraw.Service usado pelo worker.
type Admitter interface {
	ActiveConfig(ctx context.Context, eventID domain.EventID) (domain.DrawConfig, error)
	Admit(ctx context.Context, req luckydraw.AdmitRequest) (domain.Entry, error)
}

// EntryProcessor transforma eventos do pipeline de upload em entradas do sorteio.
type EntryProcessor struct {
	admitter Admitter
	requeue  domain.Fila
	log      *slog.Logger
}

// NewEntryProcessor recebe a fila opcional usada para devolver o evento quando a infraestrutura falha.
func NewEntryProcessor(admitter Admitter, requeue domain.Fila, log *slog.Logger) *EntryProcessor {
	return &EntryProcessor{admitter: admitter, requeue: requeue, log: log}
}

// Process devolve erro apenas para falhas de infraestrutura; recusas de regra são registradas e descartadas.
func (p *EntryProcessor) Process(ctx context.Context, evento domain.EntryEvent) error {
	err := p.process(ctx, evento)

	var derr *domain.Error
	switch {
	case err == nil:
		metrics.ObserveEntryEvent("admitted")
		return nil
	case errors.As(err, &derr):
		metrics.ObserveEntryEvent("rejected")
		p.log.Warn("evento de entrada recusado",
			"codigo", derr.Code,
			"config_id", evento.ConfigID,
			"event_id", evento.EventID,
			"fingerprint", evento.UserFingerprint,
		)
		return nil
	}

	metrics.ObserveEntryEvent("error")
	if p.requeue != nil {
		// O evento já saiu da lista; devolvemos antes de parar o worker.
		if rerr := p.requeue.PublicarEntrada(context.WithoutCancel(ctx), evento); rerr != nil {
			p.log.Error("falha ao devolver evento para a fila", "err", rerr, "fingerprint", evento.UserFingerprint)
		}
	}
	return fmt.Errorf("worker: processar entrada de %s: %w", evento.UserFingerprint, err)
}

func (p *EntryProcessor) process(ctx context.Context, evento domain.EntryEvent) error {
	configID := evento.ConfigID
	if configID == "" {
		if strings.TrimSpace(string(evento.EventID)) == "" {
			return domain.ErrInvalidEntry
		}
		cfg, err := p.admitter.ActiveConfig(ctx, evento.EventID)
		if err != nil {
			return err
		}
		configID = cfg.ID
	}

	entry, err := p.admitter.Admit(ctx, luckydraw.AdmitRequest{
		ConfigID:        configID,
		UserFingerprint: evento.UserFingerprint,
		ParticipantName: evento.ParticipantName,
		PhotoID:         evento.PhotoID,
	})
	if err != nil {
		return err
	}

	p.log.Debug("entrada registrada", "entry_id", entry.ID, "config_id", entry.ConfigID, "slot", entry.Slot)
	return nil
}
