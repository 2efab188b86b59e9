package luckydraw

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/marcelojr/lucky-draw/internal/domain"
)

// DefaultConfig devolve a configuração aplicada antes do patch do organizador.
func DefaultConfig(eventID domain.EventID) domain.DrawConfig {
	return domain.DrawConfig{
		EventID: eventID,
		PrizeTiers: []domain.PrizeTier{
			{Tier: domain.TierFirst, Name: domain.TierFirst.DefaultName(), Count: 1},
		},
		MaxEntriesPerUser:        1,
		RequirePhotoUpload:       true,
		PreventDuplicateWinners:  true,
		AnimationStyle:           domain.AnimationSlotMachine,
		AnimationDurationSeconds: 5,
		ShowSelfie:               true,
		ShowFullName:             true,
		PlaySound:                true,
		ConfettiAnimation:        true,
		Status:                   domain.StatusScheduled,
	}
}

// CreateConfig cria a config ativa do evento a partir dos padrões mais o patch informado.
func (s *Service) CreateConfig(ctx context.Context, actor domain.Actor, eventID domain.EventID, patch domain.ConfigPatch) (domain.DrawConfig, error) {
	if err := authorize(actor, nil); err != nil {
		return domain.DrawConfig{}, err
	}

	cfg := normalizeConfig(patch.Apply(DefaultConfig(eventID)))
	if err := validateConfig(cfg); err != nil {
		return domain.DrawConfig{}, err
	}

	agora := s.clock.Agora()
	cfg.ID = domain.ConfigID(s.ids.New())
	cfg.TenantID = actor.TenantID
	cfg.CreatedBy = actor.UserID
	cfg.Status = domain.StatusScheduled
	cfg.CreatedAt = agora
	cfg.UpdatedAt = agora

	if err := s.configs.Create(ctx, cfg); err != nil {
		return domain.DrawConfig{}, err
	}

	s.log.Info("config de sorteio criada", "config_id", cfg.ID, "event_id", cfg.EventID, "tiers", len(cfg.PrizeTiers))
	return cfg, nil
}

// UpdateConfig só altera configs em scheduled; a partir de drawing os tiers ficam congelados.
func (s *Service) UpdateConfig(ctx context.Context, actor domain.Actor, id domain.ConfigID, patch domain.ConfigPatch) (domain.DrawConfig, error) {
	if err := authorize(actor, nil); err != nil {
		return domain.DrawConfig{}, err
	}
	cfg, err := s.loadConfig(ctx, id)
	if err != nil {
		return domain.DrawConfig{}, err
	}
	if err := authorize(actor, &cfg); err != nil {
		return domain.DrawConfig{}, err
	}
	if cfg.Status != domain.StatusScheduled {
		return domain.DrawConfig{}, domain.ErrConfigLocked
	}

	updated := normalizeConfig(patch.Apply(cfg))
	if err := validateConfig(updated); err != nil {
		return domain.DrawConfig{}, err
	}
	updated.UpdatedAt = s.clock.Agora()

	if err := s.configs.UpdateScheduled(ctx, updated); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.DrawConfig{}, domain.ErrConfigNotFound
		}
		return domain.DrawConfig{}, err
	}
	return updated, nil
}

// CancelConfig encerra uma config em scheduled. Em drawing o cancelamento é recusado.
func (s *Service) CancelConfig(ctx context.Context, actor domain.Actor, id domain.ConfigID) (domain.DrawConfig, error) {
	if err := authorize(actor, nil); err != nil {
		return domain.DrawConfig{}, err
	}
	cfg, err := s.loadConfig(ctx, id)
	if err != nil {
		return domain.DrawConfig{}, err
	}
	if err := authorize(actor, &cfg); err != nil {
		return domain.DrawConfig{}, err
	}
	if err := cancelable(cfg.Status); err != nil {
		return domain.DrawConfig{}, err
	}

	agora := s.clock.Agora()
	ok, err := s.configs.TransitionStatus(ctx, id, domain.StatusScheduled, domain.StatusCancelled, agora)
	if err != nil {
		return domain.DrawConfig{}, fmt.Errorf("luckydraw: cancelar: %w", err)
	}
	if !ok {
		// Outra requisição mudou o status entre a leitura e o update.
		atual, err := s.loadConfig(ctx, id)
		if err != nil {
			return domain.DrawConfig{}, err
		}
		if err := cancelable(atual.Status); err != nil {
			return domain.DrawConfig{}, err
		}
		return domain.DrawConfig{}, domain.ErrInvalidTransition
	}

	cfg.Status = domain.StatusCancelled
	cfg.UpdatedAt = agora
	s.log.Info("config de sorteio cancelada", "config_id", id, "actor", actor.UserID)
	return cfg, nil
}

func cancelable(status domain.ConfigStatus) error {
	switch {
	case status == domain.StatusDrawing:
		return domain.ErrConfigLocked
	case status.Terminal():
		return domain.ErrInvalidTransition
	}
	return nil
}

func (s *Service) GetConfig(ctx context.Context, id domain.ConfigID) (domain.DrawConfig, error) {
	cfg, err := s.loadConfig(ctx, id)
	if err != nil {
		return domain.DrawConfig{}, err
	}
	return s.liveTotal(ctx, cfg)
}

// ActiveConfig devolve a config não terminal do evento.
func (s *Service) ActiveConfig(ctx context.Context, eventID domain.EventID) (domain.DrawConfig, error) {
	cfg, err := s.configs.FindActive(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.DrawConfig{}, domain.ErrConfigNotFound
		}
		return domain.DrawConfig{}, fmt.Errorf("luckydraw: config ativa: %w", err)
	}
	return s.liveTotal(ctx, cfg)
}

func normalizeConfig(c domain.DrawConfig) domain.DrawConfig {
	c.EventID = domain.EventID(strings.TrimSpace(string(c.EventID)))
	tiers := make([]domain.PrizeTier, len(c.PrizeTiers))
	for i, t := range c.PrizeTiers {
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			t.Name = t.Tier.DefaultName()
		}
		tiers[i] = t
	}
	c.PrizeTiers = tiers
	return c
}

// validateConfig rejeita valores fora da faixa em vez de ajustá-los.
func validateConfig(c domain.DrawConfig) error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.EventID, validation.Required),
		validation.Field(&c.PrizeTiers, validation.Required, validation.By(validTiers)),
		validation.Field(&c.MaxEntriesPerUser, validation.Required, validation.Min(1)),
		validation.Field(&c.AnimationStyle, validation.Required, validation.By(validAnimationStyle)),
		validation.Field(&c.AnimationDurationSeconds,
			validation.Required,
			validation.Min(domain.MinAnimationSeconds),
			validation.Max(domain.MaxAnimationSeconds),
		),
	)
	if err != nil {
		return domain.Wrap(domain.ErrInvalidConfig, err)
	}
	return nil
}

func validTiers(value interface{}) error {
	tiers, _ := value.([]domain.PrizeTier)
	seen := make(map[domain.TierKind]struct{}, len(tiers))
	for i, t := range tiers {
		err := validation.ValidateStruct(&t,
			validation.Field(&t.Tier, validation.Required, validation.By(validTierKind)),
			validation.Field(&t.Name, validation.Length(0, 120)),
			validation.Field(&t.Count, validation.Required, validation.Min(1)),
			validation.Field(&t.Description, validation.Length(0, 500)),
		)
		if err != nil {
			return fmt.Errorf("tier %d: %v", i+1, err)
		}
		if _, dup := seen[t.Tier]; dup {
			return fmt.Errorf("tier %s repetido", t.Tier)
		}
		seen[t.Tier] = struct{}{}
	}
	return nil
}

func validTierKind(value interface{}) error {
	if t, _ := value.(domain.TierKind); !t.Valid() {
		return fmt.Errorf("tier desconhecido %q", value)
	}
	return nil
}

func validAnimationStyle(value interface{}) error {
	if a, _ := value.(domain.AnimationStyle); !a.Valid() {
		return fmt.Errorf("estilo de animacao desconhecido %q", value)
	}
	return nil
}
