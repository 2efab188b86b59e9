package luckydraw

import (
	"context"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/marcelojr/lucky-draw/internal/domain"
	"github.com/marcelojr/lucky-draw/internal/platform/metrics"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// AdmitRequest é o evento de criação de entrada já validado pelo pipeline de upload.
type AdmitRequest struct {
	ConfigID        domain.ConfigID `json:"config_id"`
	UserFingerprint string          `json:"user_fingerprint"`
	ParticipantName string          `json:"participant_name,omitempty"`
	PhotoID         string          `json:"photo_id,omitempty"`
}

func (r *AdmitRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ConfigID, validation.Required),
		validation.Field(&r.UserFingerprint, validation.Required, validation.Length(1, 128)),
		validation.Field(&r.ParticipantName, validation.Length(0, 120)),
		validation.Field(&r.PhotoID, validation.Length(0, 64)),
	)
}

// EntryPage é uma página de entradas em ordem de criação.
type EntryPage struct {
	Entries  []domain.Entry `json:"entries"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// Admit registra a entrada de um convidado.
func (s *Service) Admit(ctx context.Context, req AdmitRequest) (domain.Entry, error) {
	entry, err := s.admit(ctx, req, nil)
	metrics.ObserveAdmission(admissionStatus(err))
	return entry, err
}

// ManualAdmit permite ao organizador incluir uma entrada; as mesmas regras valem, sem o throttle.
func (s *Service) ManualAdmit(ctx context.Context, actor domain.Actor, req AdmitRequest) (domain.Entry, error) {
	if err := authorize(actor, nil); err != nil {
		return domain.Entry{}, err
	}
	entry, err := s.admit(ctx, req, &actor)
	metrics.ObserveAdmission(admissionStatus(err))
	if err == nil {
		s.log.Info("entrada manual registrada", "config_id", entry.ConfigID, "entry_id", entry.ID, "actor", actor.UserID)
	}
	return entry, err
}

// admit aplica as regras de entrada. Com manual nil é o caminho do convidado, sujeito ao throttle.
func (s *Service) admit(ctx context.Context, req AdmitRequest, manual *domain.Actor) (domain.Entry, error) {
	req.UserFingerprint = strings.TrimSpace(req.UserFingerprint)
	req.ParticipantName = strings.TrimSpace(req.ParticipantName)
	req.PhotoID = strings.TrimSpace(req.PhotoID)
	if err := req.Validate(); err != nil {
		return domain.Entry{}, domain.Wrap(domain.ErrInvalidEntry, err)
	}

	cfg, err := s.loadConfig(ctx, req.ConfigID)
	if err != nil {
		return domain.Entry{}, err
	}
	if manual != nil {
		if err := authorize(*manual, &cfg); err != nil {
			return domain.Entry{}, err
		}
	}
	if cfg.Status != domain.StatusScheduled {
		return domain.Entry{}, domain.ErrNotAcceptingEntries
	}
	if cfg.RequirePhotoUpload && req.PhotoID == "" {
		return domain.Entry{}, domain.ErrPhotoRequired
	}

	if manual == nil && s.guard != nil {
		if err := s.guard.Allow(ctx, cfg.ID, req.UserFingerprint); err != nil {
			return domain.Entry{}, err
		}
	}

	entry := domain.Entry{
		ID:              domain.EntryID(s.ids.New()),
		EventID:         cfg.EventID,
		ConfigID:        cfg.ID,
		UserFingerprint: req.UserFingerprint,
		ParticipantName: req.ParticipantName,
		CreatedAt:       s.clock.Agora(),
	}
	if req.PhotoID != "" {
		photo := req.PhotoID
		entry.PhotoID = &photo
	}

	// O limite por participante é garantido pelo índice de slots no repositório.
	saved, err := s.entries.Append(ctx, entry, cfg.MaxEntriesPerUser)
	if err != nil {
		return domain.Entry{}, err
	}

	s.bumpCounters(ctx, saved)
	return saved, nil
}

func admissionStatus(err error) string {
	if err == nil {
		return "ok"
	}
	return outcomeLabel(err)
}

// outcomeLabel usa o código do erro de domínio como label de métrica.
func outcomeLabel(err error) string {
	return strings.ToLower(domain.CodeOf(err))
}

// ListEntries pagina as entradas da config; page começa em 1.
func (s *Service) ListEntries(ctx context.Context, configID domain.ConfigID, page, pageSize int) (EntryPage, error) {
	if _, err := s.loadConfig(ctx, configID); err != nil {
		return EntryPage{}, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	total, err := s.entries.CountByConfig(ctx, configID)
	if err != nil {
		return EntryPage{}, fmt.Errorf("luckydraw: contar entradas: %w", err)
	}
	entries, err := s.entries.List(ctx, configID, (page-1)*pageSize, pageSize)
	if err != nil {
		return EntryPage{}, fmt.Errorf("luckydraw: listar entradas: %w", err)
	}

	winning, err := s.winningEntries(ctx, configID)
	if err != nil {
		return EntryPage{}, err
	}
	for i := range entries {
		_, entries[i].IsWinner = winning[entries[i].ID]
	}

	return EntryPage{Entries: entries, Total: total, Page: page, PageSize: pageSize}, nil
}

// Participants agrega as entradas por fingerprint, do maior número de entradas para o menor.
func (s *Service) Participants(ctx context.Context, configID domain.ConfigID) ([]domain.Participant, error) {
	if _, err := s.loadConfig(ctx, configID); err != nil {
		return nil, err
	}
	entries, err := s.entries.ListAll(ctx, configID)
	if err != nil {
		return nil, fmt.Errorf("luckydraw: listar entradas: %w", err)
	}
	winners, err := s.winners.ListByConfig(ctx, configID)
	if err != nil {
		return nil, fmt.Errorf("luckydraw: listar ganhadores: %w", err)
	}

	// Ganhadores vêm em selection_order, então o primeiro prêmio de cada participante prevalece.
	prizes := make(map[string]domain.TierKind, len(winners))
	for _, w := range winners {
		if _, ok := prizes[w.UserFingerprint]; !ok {
			prizes[w.UserFingerprint] = w.PrizeTier
		}
	}

	index := make(map[string]int)
	var result []domain.Participant
	for _, e := range entries {
		i, ok := index[e.UserFingerprint]
		if !ok {
			i = len(result)
			index[e.UserFingerprint] = i
			result = append(result, domain.Participant{
				UserFingerprint: e.UserFingerprint,
				FirstEntryAt:    e.CreatedAt,
				LastEntryAt:     e.CreatedAt,
			})
		}
		p := &result[i]
		p.EntryCount++
		if p.ParticipantName == "" {
			p.ParticipantName = e.ParticipantName
		}
		if e.CreatedAt.Before(p.FirstEntryAt) {
			p.FirstEntryAt = e.CreatedAt
		}
		if e.CreatedAt.After(p.LastEntryAt) {
			p.LastEntryAt = e.CreatedAt
		}
	}

	for i := range result {
		if tier, ok := prizes[result[i].UserFingerprint]; ok {
			result[i].IsWinner = true
			result[i].PrizeTier = tier
		}
	}

	sort.SliceStable(result, func(a, b int) bool {
		if result[a].EntryCount != result[b].EntryCount {
			return result[a].EntryCount > result[b].EntryCount
		}
		return result[a].FirstEntryAt.Before(result[b].FirstEntryAt)
	})
	return result, nil
}

func (s *Service) winningEntries(ctx context.Context, configID domain.ConfigID) (map[domain.EntryID]struct{}, error) {
	winners, err := s.winners.ListByConfig(ctx, configID)
	if err != nil {
		return nil, fmt.Errorf("luckydraw: listar ganhadores: %w", err)
	}
	result := make(map[domain.EntryID]struct{}, len(winners))
	for _, w := range winners {
		result[w.EntryID] = struct{}{}
	}
	return result, nil
}
