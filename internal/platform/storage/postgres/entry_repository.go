package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/marcelojr/lucky-draw/internal/domain"
)

// slotRetryMargin cobre colisões de foto além das de slot. Cada colisão de slot significa que
// outra admissão ocupou uma vaga, então maxPerUser+slotRetryMargin tentativas bastam para chegar
// ao limite real.
const slotRetryMargin = 2

// ErrSlotContention indica que as tentativas acabaram sem o participante atingir o limite.
// É falha transitória de infraestrutura; a admissão pode ser repetida.
var ErrSlotContention = errors.New("gorm entradas: slot disputado")

// EntryRepository é o livro-razão append-only de entradas do sorteio.
type EntryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

type entryModel struct {
	ID              string    `gorm:"column:id;primaryKey"`
	EventID         string    `gorm:"column:event_id"`
	ConfigID        string    `gorm:"column:config_id"`
	UserFingerprint string    `gorm:"column:user_fingerprint"`
	Slot            int       `gorm:"column:slot"`
	ParticipantName string    `gorm:"column:participant_name"`
	PhotoID         *string   `gorm:"column:photo_id"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

func (entryModel) TableName() string {
	return "draw_entries"
}

func (m entryModel) toDomain() domain.Entry {
	return domain.Entry{
		ID:              domain.EntryID(m.ID),
		EventID:         domain.EventID(m.EventID),
		ConfigID:        domain.ConfigID(m.ConfigID),
		UserFingerprint: m.UserFingerprint,
		Slot:            m.Slot,
		ParticipantName: m.ParticipantName,
		PhotoID:         m.PhotoID,
		CreatedAt:       m.CreatedAt,
	}
}

func fromDomainEntry(e domain.Entry) entryModel {
	return entryModel{
		ID:              string(e.ID),
		EventID:         string(e.EventID),
		ConfigID:        string(e.ConfigID),
		UserFingerprint: e.UserFingerprint,
		Slot:            e.Slot,
		ParticipantName: e.ParticipantName,
		PhotoID:         e.PhotoID,
		CreatedAt:       e.CreatedAt,
	}
}

// Append reserva o próximo slot do participante; o índice único (config, fingerprint, slot)
// impede que admissões concorrentes ultrapassem maxPerUser.
func (r *EntryRepository) Append(ctx context.Context, e domain.Entry, maxPerUser int) (domain.Entry, error) {
	db := r.db.WithContext(ctx)

	tentativas := maxPerUser + slotRetryMargin
	for attempt := 0; attempt < tentativas; attempt++ {
		var count int64
		if err := db.Model(&entryModel{}).
			Where("config_id = ? AND user_fingerprint = ?", string(e.ConfigID), e.UserFingerprint).
			Count(&count).Error; err != nil {
			return domain.Entry{}, fmt.Errorf("gorm entradas: contar participante: %w", err)
		}
		if count >= int64(maxPerUser) {
			return domain.Entry{}, domain.ErrEntryCapReached
		}

		used, err := r.photoUsed(ctx, e.ConfigID, e.PhotoID)
		if err != nil {
			return domain.Entry{}, err
		}
		if used {
			return domain.Entry{}, domain.ErrPhotoAlreadyUsed
		}

		e.Slot = int(count) + 1
		model := fromDomainEntry(e)
		err = db.Create(&model).Error
		if err == nil {
			return model.toDomain(), nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Entry{}, fmt.Errorf("gorm entradas: inserir: %w", err)
		}
		// Colisão: outra admissão levou o slot ou a foto; relemos o estado e tentamos de novo.
	}

	return domain.Entry{}, fmt.Errorf("%w apos %d tentativas", ErrSlotContention, tentativas)
}

func (r *EntryRepository) photoUsed(ctx context.Context, configID domain.ConfigID, photoID *string) (bool, error) {
	if photoID == nil {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&entryModel{}).
		Where("config_id = ? AND photo_id = ?", string(configID), *photoID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("gorm entradas: checar foto: %w", err)
	}
	return count > 0, nil
}

func (r *EntryRepository) CountByConfig(ctx context.Context, configID domain.ConfigID) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&entryModel{}).
		Where("config_id = ?", string(configID)).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("gorm entradas: total config: %w", err)
	}
	return total, nil
}

func (r *EntryRepository) List(ctx context.Context, configID domain.ConfigID, offset, limit int) ([]domain.Entry, error) {
	var models []entryModel
	if err := r.db.WithContext(ctx).
		Where("config_id = ?", string(configID)).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm entradas: listar: %w", err)
	}
	return toDomainEntries(models), nil
}

func (r *EntryRepository) ListAll(ctx context.Context, configID domain.ConfigID) ([]domain.Entry, error) {
	var models []entryModel
	if err := r.db.WithContext(ctx).
		Where("config_id = ?", string(configID)).
		Order("created_at ASC, id ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm entradas: listar todas: %w", err)
	}
	return toDomainEntries(models), nil
}

func (r *EntryRepository) Snapshot(ctx context.Context, configID domain.ConfigID, until time.Time) ([]domain.Entry, error) {
	var models []entryModel
	if err := r.db.WithContext(ctx).
		Where("config_id = ? AND created_at <= ?", string(configID), until).
		Order("created_at ASC, id ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm entradas: snapshot: %w", err)
	}
	return toDomainEntries(models), nil
}

func toDomainEntries(models []entryModel) []domain.Entry {
	result := make([]domain.Entry, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result
}

var _ domain.EntryRepository = (*EntryRepository)(nil)
