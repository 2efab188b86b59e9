// Pacote luckydraw implementa as regras do sorteio: livro de entradas, configuração, execução e histórico.
package luckydraw

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/marcelojr/lucky-draw/internal/domain"
	"github.com/marcelojr/lucky-draw/internal/platform/clock"
	"github.com/marcelojr/lucky-draw/internal/platform/ids"
	"github.com/marcelojr/lucky-draw/internal/platform/logger"
	"github.com/marcelojr/lucky-draw/internal/platform/random"
)

// Dependencies agrupa os colaboradores do Service. Contador, Publisher e Guard são opcionais.
type Dependencies struct {
	Configs   domain.ConfigRepository
	Entries   domain.EntryRepository
	Winners   domain.WinnerRepository
	Contador  domain.Contador
	Publisher domain.DrawPublisher
	Guard     domain.AdmissionGuard
	Clock     domain.Clock
	IDs       *ids.Generator
	Seeds     random.SeedSource
	Logger    *slog.Logger

	// PhotoURLTemplate monta a selfie do ganhador; %s recebe o photo id.
	PhotoURLTemplate string
}

// Service concentra as regras do sorteio e delega persistência aos repositórios.
type Service struct {
	configs   domain.ConfigRepository
	entries   domain.EntryRepository
	winners   domain.WinnerRepository
	contador  domain.Contador
	publisher domain.DrawPublisher
	guard     domain.AdmissionGuard
	clock     domain.Clock
	ids       *ids.Generator
	seeds     random.SeedSource
	log       *slog.Logger
	photoURL  string
}

func NewService(deps Dependencies) *Service {
	if deps.IDs == nil {
		deps.IDs = ids.DefaultGenerator()
	}
	if deps.Clock == nil {
		deps.Clock = clock.NewSystemClock()
	}
	if deps.Seeds == nil {
		deps.Seeds = random.Crypto()
	}
	if deps.Logger == nil {
		deps.Logger = logger.Component("luckydraw")
	}
	return &Service{
		configs:   deps.Configs,
		entries:   deps.Entries,
		winners:   deps.Winners,
		contador:  deps.Contador,
		publisher: deps.Publisher,
		guard:     deps.Guard,
		clock:     deps.Clock,
		ids:       deps.IDs,
		seeds:     deps.Seeds,
		log:       deps.Logger,
		photoURL:  deps.PhotoURLTemplate,
	}
}

func (s *Service) loadConfig(ctx context.Context, id domain.ConfigID) (domain.DrawConfig, error) {
	if id == "" {
		return domain.DrawConfig{}, domain.ErrConfigNotFound
	}
	cfg, err := s.configs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.DrawConfig{}, domain.ErrConfigNotFound
		}
		return domain.DrawConfig{}, fmt.Errorf("luckydraw: carregar config %s: %w", id, err)
	}
	return cfg, nil
}

// authorize exige papel de organizador e, quando ambos informam tenant, o mesmo tenant da config.
func authorize(actor domain.Actor, cfg *domain.DrawConfig) error {
	if !actor.CanManageDraws() {
		return domain.ErrUnauthorized
	}
	if cfg == nil || actor.Role == domain.RoleAdmin {
		return nil
	}
	if cfg.TenantID != "" && actor.TenantID != "" && cfg.TenantID != actor.TenantID {
		return domain.ErrUnauthorized
	}
	return nil
}

func (s *Service) selfieURL(photoID *string) string {
	if s.photoURL == "" || photoID == nil || *photoID == "" {
		return ""
	}
	return fmt.Sprintf(s.photoURL, *photoID)
}
