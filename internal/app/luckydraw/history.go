package luckydraw

import (
	"context"
	"errors"
	"fmt"

	"github.com/marcelojr/lucky-draw/internal/domain"
	"github.com/marcelojr/lucky-draw/internal/platform/metrics"
)

// ListHistory junta as configs encerradas do evento com seus ganhadores, das mais recentes para as mais antigas.
func (s *Service) ListHistory(ctx context.Context, eventID domain.EventID) ([]domain.DrawHistoryItem, error) {
	configs, err := s.configs.ListByEvent(ctx, eventID, domain.StatusCompleted, domain.StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("luckydraw: historico: %w", err)
	}

	items := make([]domain.DrawHistoryItem, 0, len(configs))
	for _, cfg := range configs {
		winners, err := s.winners.ListByConfig(ctx, cfg.ID)
		if err != nil {
			return nil, fmt.Errorf("luckydraw: ganhadores de %s: %w", cfg.ID, err)
		}
		if winners == nil {
			winners = []domain.Winner{}
		}
		items = append(items, domain.DrawHistoryItem{
			ConfigID:     cfg.ID,
			Status:       cfg.Status,
			PrizeTiers:   cfg.PrizeTiers,
			TotalEntries: cfg.TotalEntries,
			CreatedAt:    cfg.CreatedAt,
			CompletedAt:  cfg.CompletedAt,
			Winners:      winners,
			WinnerCount:  len(winners),
		})
	}
	return items, nil
}

// Winners devolve os ganhadores da config em ordem de revelação.
func (s *Service) Winners(ctx context.Context, configID domain.ConfigID) ([]domain.Winner, error) {
	if _, err := s.loadConfig(ctx, configID); err != nil {
		return nil, err
	}
	winners, err := s.winners.ListByConfig(ctx, configID)
	if err != nil {
		return nil, fmt.Errorf("luckydraw: listar ganhadores: %w", err)
	}
	return winners, nil
}

// Claim marca o prêmio como entregue uma única vez; a segunda tentativa falha.
func (s *Service) Claim(ctx context.Context, actor domain.Actor, winnerID domain.WinnerID) (domain.Winner, error) {
	w, err := s.claim(ctx, actor, winnerID)
	metrics.ObserveClaim(admissionStatus(err))
	return w, err
}

func (s *Service) claim(ctx context.Context, actor domain.Actor, winnerID domain.WinnerID) (domain.Winner, error) {
	if err := authorize(actor, nil); err != nil {
		return domain.Winner{}, err
	}
	w, err := s.winners.FindByID(ctx, winnerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Winner{}, domain.ErrWinnerNotFound
		}
		return domain.Winner{}, fmt.Errorf("luckydraw: buscar ganhador: %w", err)
	}
	cfg, err := s.loadConfig(ctx, w.ConfigID)
	if err != nil {
		return domain.Winner{}, err
	}
	if err := authorize(actor, &cfg); err != nil {
		return domain.Winner{}, err
	}
	if w.IsClaimed {
		return domain.Winner{}, domain.ErrAlreadyClaimed
	}

	agora := s.clock.Agora()
	ok, err := s.winners.MarkClaimed(ctx, winnerID, agora)
	if err != nil {
		return domain.Winner{}, fmt.Errorf("luckydraw: resgatar: %w", err)
	}
	if !ok {
		return domain.Winner{}, domain.ErrAlreadyClaimed
	}

	w.IsClaimed = true
	w.ClaimedAt = &agora
	s.log.Info("premio resgatado", "winner_id", winnerID, "config_id", w.ConfigID, "actor", actor.UserID)
	return w, nil
}
