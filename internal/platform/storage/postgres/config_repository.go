package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/marcelojr/lucky-draw/internal/domain"
)

// ConfigRepository persiste as configurações de sorteio e concentra o compare-and-set de status.
type ConfigRepository struct {
	db *gorm.DB
}

func NewConfigRepository(db *gorm.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

type configModel struct {
	ID                       string             `gorm:"column:id;primaryKey"`
	EventID                  string             `gorm:"column:event_id"`
	TenantID                 string             `gorm:"column:tenant_id"`
	PrizeTiers               []domain.PrizeTier `gorm:"column:prize_tiers;serializer:json"`
	MaxEntriesPerUser        int                `gorm:"column:max_entries_per_user"`
	RequirePhotoUpload       bool               `gorm:"column:require_photo_upload"`
	PreventDuplicateWinners  bool               `gorm:"column:prevent_duplicate_winners"`
	AnimationStyle           string             `gorm:"column:animation_style"`
	AnimationDurationSeconds int                `gorm:"column:animation_duration_seconds"`
	ShowSelfie               bool               `gorm:"column:show_selfie"`
	ShowFullName             bool               `gorm:"column:show_full_name"`
	PlaySound                bool               `gorm:"column:play_sound"`
	ConfettiAnimation        bool               `gorm:"column:confetti_animation"`
	Status                   string             `gorm:"column:status"`
	TotalEntries             int64              `gorm:"column:total_entries"`
	Seed                     int64              `gorm:"column:seed"`
	CreatedBy                string             `gorm:"column:created_by"`
	CreatedAt                time.Time          `gorm:"column:created_at"`
	UpdatedAt                time.Time          `gorm:"column:updated_at"`
	DrawStartedAt            *time.Time         `gorm:"column:draw_started_at"`
	CompletedAt              *time.Time         `gorm:"column:completed_at"`
}

func (configModel) TableName() string {
	return "draw_configs"
}

func (m configModel) toDomain() domain.DrawConfig {
	return domain.DrawConfig{
		ID:                       domain.ConfigID(m.ID),
		EventID:                  domain.EventID(m.EventID),
		TenantID:                 m.TenantID,
		PrizeTiers:               m.PrizeTiers,
		MaxEntriesPerUser:        m.MaxEntriesPerUser,
		RequirePhotoUpload:       m.RequirePhotoUpload,
		PreventDuplicateWinners:  m.PreventDuplicateWinners,
		AnimationStyle:           domain.AnimationStyle(m.AnimationStyle),
		AnimationDurationSeconds: m.AnimationDurationSeconds,
		ShowSelfie:               m.ShowSelfie,
		ShowFullName:             m.ShowFullName,
		PlaySound:                m.PlaySound,
		ConfettiAnimation:        m.ConfettiAnimation,
		Status:                   domain.ConfigStatus(m.Status),
		TotalEntries:             m.TotalEntries,
		Seed:                     m.Seed,
		CreatedBy:                m.CreatedBy,
		CreatedAt:                m.CreatedAt,
		UpdatedAt:                m.UpdatedAt,
		DrawStartedAt:            m.DrawStartedAt,
		CompletedAt:              m.CompletedAt,
	}
}

func fromDomainConfig(c domain.DrawConfig) configModel {
	return configModel{
		ID:                       string(c.ID),
		EventID:                  string(c.EventID),
		TenantID:                 c.TenantID,
		PrizeTiers:               c.PrizeTiers,
		MaxEntriesPerUser:        c.MaxEntriesPerUser,
		RequirePhotoUpload:       c.RequirePhotoUpload,
		PreventDuplicateWinners:  c.PreventDuplicateWinners,
		AnimationStyle:           string(c.AnimationStyle),
		AnimationDurationSeconds: c.AnimationDurationSeconds,
		ShowSelfie:               c.ShowSelfie,
		ShowFullName:             c.ShowFullName,
		PlaySound:                c.PlaySound,
		ConfettiAnimation:        c.ConfettiAnimation,
		Status:                   string(c.Status),
		TotalEntries:             c.TotalEntries,
		Seed:                     c.Seed,
		CreatedBy:                c.CreatedBy,
		CreatedAt:                c.CreatedAt,
		UpdatedAt:                c.UpdatedAt,
		DrawStartedAt:            c.DrawStartedAt,
		CompletedAt:              c.CompletedAt,
	}
}

func (r *ConfigRepository) Create(ctx context.Context, c domain.DrawConfig) error {
	model := fromDomainConfig(c)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Só o índice parcial de config ativa por evento pode colidir aqui.
			return domain.ErrActiveConfigExists
		}
		return fmt.Errorf("gorm config: inserir: %w", err)
	}
	return nil
}

func (r *ConfigRepository) UpdateScheduled(ctx context.Context, c domain.DrawConfig) error {
	tiers, err := json.Marshal(c.PrizeTiers)
	if err != nil {
		return fmt.Errorf("gorm config: serializar tiers: %w", err)
	}

	res := r.db.WithContext(ctx).Model(&configModel{}).
		Where("id = ? AND status = ?", string(c.ID), string(domain.StatusScheduled)).
		Updates(map[string]any{
			"prize_tiers":                string(tiers),
			"max_entries_per_user":       c.MaxEntriesPerUser,
			"require_photo_upload":       c.RequirePhotoUpload,
			"prevent_duplicate_winners":  c.PreventDuplicateWinners,
			"animation_style":            string(c.AnimationStyle),
			"animation_duration_seconds": c.AnimationDurationSeconds,
			"show_selfie":                c.ShowSelfie,
			"show_full_name":             c.ShowFullName,
			"play_sound":                 c.PlaySound,
			"confetti_animation":         c.ConfettiAnimation,
			"updated_at":                 c.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("gorm config: atualizar: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, c.ID); err != nil {
			return err
		}
		return domain.ErrConfigLocked
	}
	return nil
}

func (r *ConfigRepository) FindByID(ctx context.Context, id domain.ConfigID) (domain.DrawConfig, error) {
	var model configModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", string(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.DrawConfig{}, domain.ErrNotFound
		}
		return domain.DrawConfig{}, fmt.Errorf("gorm config: buscar id: %w", err)
	}
	return model.toDomain(), nil
}

func (r *ConfigRepository) FindActive(ctx context.Context, eventID domain.EventID) (domain.DrawConfig, error) {
	var model configModel
	if err := r.db.WithContext(ctx).
		Where("event_id = ? AND status IN ?", string(eventID), []string{string(domain.StatusScheduled), string(domain.StatusDrawing)}).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.DrawConfig{}, domain.ErrNotFound
		}
		return domain.DrawConfig{}, fmt.Errorf("gorm config: buscar ativa: %w", err)
	}
	return model.toDomain(), nil
}

func (r *ConfigRepository) ListByEvent(ctx context.Context, eventID domain.EventID, statuses ...domain.ConfigStatus) ([]domain.DrawConfig, error) {
	query := r.db.WithContext(ctx).Where("event_id = ?", string(eventID))
	if len(statuses) > 0 {
		values := make([]string, len(statuses))
		for i, s := range statuses {
			values[i] = string(s)
		}
		query = query.Where("status IN ?", values)
	}

	var models []configModel
	if err := query.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm config: listar por evento: %w", err)
	}

	result := make([]domain.DrawConfig, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result, nil
}

// TransitionStatus executa um único UPDATE condicional; RowsAffected decide quem venceu a corrida.
func (r *ConfigRepository) TransitionStatus(ctx context.Context, id domain.ConfigID, from, to domain.ConfigStatus, at time.Time) (bool, error) {
	updates := map[string]any{
		"status":     string(to),
		"updated_at": at,
	}
	switch {
	case to == domain.StatusDrawing:
		updates["draw_started_at"] = at
	case from == domain.StatusDrawing && to == domain.StatusScheduled:
		updates["draw_started_at"] = nil
	}

	res := r.db.WithContext(ctx).Model(&configModel{}).
		Where("id = ? AND status = ?", string(id), string(from)).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("gorm config: transicao %s->%s: %w", from, to, res.Error)
	}
	return res.RowsAffected == 1, nil
}

var _ domain.ConfigRepository = (*ConfigRepository)(nil)
