package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/marcelojr/lucky-draw/internal/domain"
)

// WinnerRepository grava o resultado do sorteio e os resgates de prêmio.
type WinnerRepository struct {
	db *gorm.DB
}

func NewWinnerRepository(db *gorm.DB) *WinnerRepository {
	return &WinnerRepository{db: db}
}

type winnerModel struct {
	ID              string     `gorm:"column:id;primaryKey"`
	ConfigID        string     `gorm:"column:config_id"`
	EntryID         string     `gorm:"column:entry_id"`
	ParticipantName string     `gorm:"column:participant_name"`
	UserFingerprint string     `gorm:"column:user_fingerprint"`
	PrizeTier       string     `gorm:"column:prize_tier"`
	PrizeName       string     `gorm:"column:prize_name"`
	SelfieURL       string     `gorm:"column:selfie_url"`
	SelectionOrder  int        `gorm:"column:selection_order"`
	IsClaimed       bool       `gorm:"column:is_claimed"`
	ClaimedAt       *time.Time `gorm:"column:claimed_at"`
	DrawnAt         time.Time  `gorm:"column:drawn_at"`
	DrawnBy         string     `gorm:"column:drawn_by"`
}

func (winnerModel) TableName() string {
	return "draw_winners"
}

func (m winnerModel) toDomain() domain.Winner {
	return domain.Winner{
		ID:              domain.WinnerID(m.ID),
		ConfigID:        domain.ConfigID(m.ConfigID),
		EntryID:         domain.EntryID(m.EntryID),
		ParticipantName: m.ParticipantName,
		UserFingerprint: m.UserFingerprint,
		PrizeTier:       domain.TierKind(m.PrizeTier),
		PrizeName:       m.PrizeName,
		SelfieURL:       m.SelfieURL,
		SelectionOrder:  m.SelectionOrder,
		IsClaimed:       m.IsClaimed,
		ClaimedAt:       m.ClaimedAt,
		DrawnAt:         m.DrawnAt,
		DrawnBy:         m.DrawnBy,
	}
}

func fromDomainWinner(w domain.Winner) winnerModel {
	return winnerModel{
		ID:              string(w.ID),
		ConfigID:        string(w.ConfigID),
		EntryID:         string(w.EntryID),
		ParticipantName: w.ParticipantName,
		UserFingerprint: w.UserFingerprint,
		PrizeTier:       string(w.PrizeTier),
		PrizeName:       w.PrizeName,
		SelfieURL:       w.SelfieURL,
		SelectionOrder:  w.SelectionOrder,
		IsClaimed:       w.IsClaimed,
		ClaimedAt:       w.ClaimedAt,
		DrawnAt:         w.DrawnAt,
		DrawnBy:         w.DrawnBy,
	}
}

// Complete aplica ganhadores e status completed na mesma transação; sem a config em drawing nada é gravado.
func (r *WinnerRepository) Complete(ctx context.Context, c domain.DrawCompletion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&configModel{}).
			Where("id = ? AND status = ?", string(c.ConfigID), string(domain.StatusDrawing)).
			Updates(map[string]any{
				"status":        string(domain.StatusCompleted),
				"completed_at":  c.CompletedAt,
				"updated_at":    c.CompletedAt,
				"total_entries": c.TotalEntries,
				"seed":          c.Seed,
			})
		if res.Error != nil {
			return fmt.Errorf("gorm ganhadores: concluir config: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrInvalidTransition
		}

		if len(c.Winners) == 0 {
			return nil
		}

		models := make([]winnerModel, len(c.Winners))
		for i, w := range c.Winners {
			models[i] = fromDomainWinner(w)
		}
		if err := tx.Create(&models).Error; err != nil {
			return fmt.Errorf("gorm ganhadores: inserir: %w", err)
		}
		return nil
	})
}

func (r *WinnerRepository) ListByConfig(ctx context.Context, configID domain.ConfigID) ([]domain.Winner, error) {
	var models []winnerModel
	if err := r.db.WithContext(ctx).
		Where("config_id = ?", string(configID)).
		Order("selection_order ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm ganhadores: listar: %w", err)
	}

	result := make([]domain.Winner, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result, nil
}

func (r *WinnerRepository) FindByID(ctx context.Context, id domain.WinnerID) (domain.Winner, error) {
	var model winnerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", string(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Winner{}, domain.ErrNotFound
		}
		return domain.Winner{}, fmt.Errorf("gorm ganhadores: buscar id: %w", err)
	}
	return model.toDomain(), nil
}

func (r *WinnerRepository) MarkClaimed(ctx context.Context, id domain.WinnerID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&winnerModel{}).
		Where("id = ? AND is_claimed = ?", string(id), false).
		Updates(map[string]any{
			"is_claimed": true,
			"claimed_at": at,
		})
	if res.Error != nil {
		return false, fmt.Errorf("gorm ganhadores: resgatar: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

var _ domain.WinnerRepository = (*WinnerRepository)(nil)
