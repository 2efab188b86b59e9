package luckydraw

import (
	"context"
	"fmt"

	"github.com/marcelojr/lucky-draw/internal/domain"
)

func CounterKeyEntries(id domain.ConfigID) string {
	return fmt.Sprintf("sorteio:%s:entradas", id)
}

func CounterKeyParticipant(id domain.ConfigID, fingerprint string) string {
	return fmt.Sprintf("sorteio:%s:participante:%s", id, fingerprint)
}

// bumpCounters atualiza o cache de totais; falhas só geram log porque o banco é a fonte de verdade.
func (s *Service) bumpCounters(ctx context.Context, e domain.Entry) {
	if s.contador == nil {
		return
	}
	if _, err := s.contador.Incrementar(ctx, CounterKeyEntries(e.ConfigID), 1); err != nil {
		s.log.Warn("falha ao incrementar contador de entradas", "config_id", e.ConfigID, "erro", err)
		return
	}
	if _, err := s.contador.Incrementar(ctx, CounterKeyParticipant(e.ConfigID, e.UserFingerprint), 1); err != nil {
		s.log.Warn("falha ao incrementar contador do participante", "config_id", e.ConfigID, "erro", err)
	}
}

// resyncTotal grava no cache o total recalculado na execução.
func (s *Service) resyncTotal(ctx context.Context, id domain.ConfigID, total int64) {
	if s.contador == nil {
		return
	}
	if err := s.contador.Definir(ctx, CounterKeyEntries(id), total); err != nil {
		s.log.Warn("falha ao sincronizar contador de entradas", "config_id", id, "erro", err)
	}
}

// liveTotal preenche TotalEntries de configs ainda abertas, preferindo o cache e caindo para o banco.
func (s *Service) liveTotal(ctx context.Context, cfg domain.DrawConfig) (domain.DrawConfig, error) {
	if cfg.Status != domain.StatusScheduled {
		return cfg, nil
	}
	if s.contador != nil {
		total, err := s.contador.Obter(ctx, CounterKeyEntries(cfg.ID))
		if err == nil && total > 0 {
			cfg.TotalEntries = total
			return cfg, nil
		}
		if err != nil {
			s.log.Warn("contador indisponivel, usando banco", "config_id", cfg.ID, "erro", err)
		}
	}
	total, err := s.entries.CountByConfig(ctx, cfg.ID)
	if err != nil {
		return domain.DrawConfig{}, fmt.Errorf("luckydraw: contar entradas: %w", err)
	}
	cfg.TotalEntries = total
	return cfg, nil
}
