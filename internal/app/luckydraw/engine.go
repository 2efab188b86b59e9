package luckydraw

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/marcelojr/lucky-draw/internal/domain"
	"github.com/marcelojr/lucky-draw/internal/platform/metrics"
	"github.com/marcelojr/lucky-draw/internal/platform/random"
)

// DrawResult é o resultado de uma rodada concluída.
type DrawResult struct {
	Winners []domain.Winner   `json:"winners"`
	Config  domain.DrawConfig `json:"config"`
}

// Execute roda o sorteio uma única vez: scheduled→drawing por compare-and-set, snapshot das
// entradas, seleção e gravação atômica de ganhadores e status completed. Se a gravação falhar a
// config volta para scheduled e a chamada pode ser repetida.
func (s *Service) Execute(ctx context.Context, actor domain.Actor, configID domain.ConfigID) (DrawResult, error) {
	result, err := s.execute(ctx, actor, configID)
	metrics.ObserveDrawExecution(executionStatus(err))
	return result, err
}

func (s *Service) execute(ctx context.Context, actor domain.Actor, configID domain.ConfigID) (DrawResult, error) {
	if err := authorize(actor, nil); err != nil {
		return DrawResult{}, err
	}
	cfg, err := s.loadConfig(ctx, configID)
	if err != nil {
		return DrawResult{}, err
	}
	if err := authorize(actor, &cfg); err != nil {
		return DrawResult{}, err
	}

	inicio := s.clock.Agora()
	ok, err := s.configs.TransitionStatus(ctx, configID, domain.StatusScheduled, domain.StatusDrawing, inicio)
	if err != nil {
		return DrawResult{}, fmt.Errorf("luckydraw: iniciar sorteio: %w", err)
	}
	if !ok {
		return DrawResult{}, s.lostRace(ctx, configID)
	}
	cfg.Status = domain.StatusDrawing
	cfg.DrawStartedAt = &inicio

	log := s.log.With("config_id", configID, "event_id", cfg.EventID, "actor", actor.UserID)
	log.Info("sorteio iniciado")
	s.publish(ctx, domain.DrawEvent{Type: domain.DrawEventStarted, EventID: cfg.EventID, ConfigID: configID, At: inicio})

	winners, total, seed, err := s.run(ctx, cfg, actor, inicio)
	if err != nil {
		s.revert(ctx, configID, log)
		log.Error("sorteio falhou", "erro", err)
		s.publish(context.WithoutCancel(ctx), domain.DrawEvent{Type: domain.DrawEventFailed, EventID: cfg.EventID, ConfigID: configID, At: s.clock.Agora()})
		return DrawResult{}, domain.Wrap(domain.ErrDrawPersistence, err)
	}

	concluidoEm := s.clock.Agora()
	cfg.Status = domain.StatusCompleted
	cfg.CompletedAt = &concluidoEm
	cfg.UpdatedAt = concluidoEm
	cfg.TotalEntries = total
	cfg.Seed = seed

	metrics.ObserveDrawDuration(concluidoEm.Sub(inicio).Seconds())
	for tier, n := range winnersPerTier(winners) {
		metrics.AddWinners(string(tier), n)
	}
	s.resyncTotal(ctx, configID, total)

	for i := range winners {
		w := winners[i]
		s.publish(ctx, domain.DrawEvent{Type: domain.DrawEventWinner, EventID: cfg.EventID, ConfigID: configID, Winner: &w, At: concluidoEm})
	}
	s.publish(ctx, domain.DrawEvent{Type: domain.DrawEventCompleted, EventID: cfg.EventID, ConfigID: configID, Total: len(winners), At: concluidoEm})

	log.Info("sorteio concluido", "ganhadores", len(winners), "entradas", total, "seed", seed)
	return DrawResult{Winners: winners, Config: cfg}, nil
}

// run tira o snapshot, sorteia e grava; qualquer erro aqui exige reverter o status.
func (s *Service) run(ctx context.Context, cfg domain.DrawConfig, actor domain.Actor, inicio time.Time) ([]domain.Winner, int64, int64, error) {
	// Só participam entradas criadas até o compare-and-set.
	snapshot, err := s.entries.Snapshot(ctx, cfg.ID, inicio)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("snapshot de entradas: %w", err)
	}

	seed, err := s.seeds()
	if err != nil {
		return nil, 0, 0, err
	}

	selections := Select(snapshot, cfg.PrizeTiers, nil, cfg.PreventDuplicateWinners, random.New(seed))

	drawnAt := s.clock.Agora()
	winners := make([]domain.Winner, len(selections))
	for i, sel := range selections {
		winners[i] = domain.Winner{
			ID:              domain.WinnerID(s.ids.New()),
			ConfigID:        cfg.ID,
			EntryID:         sel.Entry.ID,
			ParticipantName: sel.Entry.ParticipantName,
			UserFingerprint: sel.Entry.UserFingerprint,
			PrizeTier:       sel.Tier.Tier,
			PrizeName:       sel.Tier.Name,
			SelfieURL:       s.selfieURL(sel.Entry.PhotoID),
			SelectionOrder:  sel.Order,
			DrawnAt:         drawnAt,
			DrawnBy:         actor.UserID,
		}
	}

	total := int64(len(snapshot))
	err = s.winners.Complete(ctx, domain.DrawCompletion{
		ConfigID:     cfg.ID,
		Winners:      winners,
		TotalEntries: total,
		Seed:         seed,
		CompletedAt:  s.clock.Agora(),
	})
	if err != nil {
		return nil, 0, 0, err
	}
	return winners, total, seed, nil
}

// revert devolve a config para scheduled mesmo com o contexto da requisição cancelado.
func (s *Service) revert(ctx context.Context, id domain.ConfigID, log *slog.Logger) {
	ctx = context.WithoutCancel(ctx)
	ok, err := s.configs.TransitionStatus(ctx, id, domain.StatusDrawing, domain.StatusScheduled, s.clock.Agora())
	if err != nil {
		log.Error("falha ao reverter config para scheduled", "erro", err)
		return
	}
	if !ok {
		log.Warn("config nao estava em drawing ao reverter")
	}
}

// lostRace traduz um compare-and-set perdido no erro correspondente ao status atual.
func (s *Service) lostRace(ctx context.Context, id domain.ConfigID) error {
	cfg, err := s.loadConfig(ctx, id)
	if err != nil {
		return err
	}
	switch cfg.Status {
	case domain.StatusCompleted:
		return domain.ErrAlreadyCompleted
	case domain.StatusCancelled:
		return domain.ErrConfigCancelled
	default:
		// drawing, ou scheduled de novo após a reversão de outra rodada.
		return domain.ErrAlreadyExecuting
	}
}

func (s *Service) publish(ctx context.Context, evento domain.DrawEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, evento); err != nil {
		s.log.Warn("falha ao publicar evento do sorteio", "tipo", evento.Type, "config_id", evento.ConfigID, "erro", err)
	}
}

func winnersPerTier(winners []domain.Winner) map[domain.TierKind]int {
	result := make(map[domain.TierKind]int)
	for _, w := range winners {
		result[w.PrizeTier]++
	}
	return result
}

func executionStatus(err error) string {
	if err == nil {
		return "completed"
	}
	return outcomeLabel(err)
}
