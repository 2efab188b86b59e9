package domain

import (
	"time"
)

type (
	EventID  string
	ConfigID string
	EntryID  string
	WinnerID string
)

type TierKind string

const (
	TierFirst       TierKind = "first"
	TierSecond      TierKind = "second"
	TierThird       TierKind = "third"
	TierConsolation TierKind = "consolation"
)

// Valid informa se o tier pertence ao conjunto suportado.
func (t TierKind) Valid() bool {
	switch t {
	case TierFirst, TierSecond, TierThird, TierConsolation:
		return true
	}
	return false
}

// DefaultName devolve o rótulo usado quando o organizador não informa um nome.
func (t TierKind) DefaultName() string {
	switch t {
	case TierFirst:
		return "First Prize"
	case TierSecond:
		return "Second Prize"
	case TierThird:
		return "Third Prize"
	case TierConsolation:
		return "Consolation Prize"
	}
	return string(t)
}

type ConfigStatus string

const (
	StatusScheduled ConfigStatus = "scheduled"
	StatusDrawing   ConfigStatus = "drawing"
	StatusCompleted ConfigStatus = "completed"
	StatusCancelled ConfigStatus = "cancelled"
)

// Terminal indica status que não aceitam mais transições.
func (s ConfigStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type AnimationStyle string

const (
	AnimationSlotMachine   AnimationStyle = "slot_machine"
	AnimationSpinningWheel AnimationStyle = "spinning_wheel"
	AnimationCardShuffle   AnimationStyle = "card_shuffle"
	AnimationDrumRoll      AnimationStyle = "drum_roll"
	AnimationRandomFade    AnimationStyle = "random_fade"
)

func (a AnimationStyle) Valid() bool {
	switch a {
	case AnimationSlotMachine, AnimationSpinningWheel, AnimationCardShuffle, AnimationDrumRoll, AnimationRandomFade:
		return true
	}
	return false
}

const (
	MinAnimationSeconds = 3
	MaxAnimationSeconds = 30
)

type PrizeTier struct {
	Tier        TierKind `json:"tier"`
	Name        string   `json:"name"`
	Count       int      `json:"count"`
	Description string   `json:"description"`
}

type DrawConfig struct {
	ID                       ConfigID       `gorm:"column:id;type:char(26);primaryKey" json:"id"`
	EventID                  EventID        `gorm:"column:event_id;type:varchar(64);not null;index" json:"event_id"`
	TenantID                 string         `gorm:"column:tenant_id;type:varchar(64)" json:"tenant_id,omitempty"`
	PrizeTiers               []PrizeTier    `gorm:"column:prize_tiers;type:text;serializer:json;not null" json:"prize_tiers"`
	MaxEntriesPerUser        int            `gorm:"column:max_entries_per_user;not null;default:1" json:"max_entries_per_user"`
	RequirePhotoUpload       bool           `gorm:"column:require_photo_upload;not null" json:"require_photo_upload"`
	PreventDuplicateWinners  bool           `gorm:"column:prevent_duplicate_winners;not null" json:"prevent_duplicate_winners"`
	AnimationStyle           AnimationStyle `gorm:"column:animation_style;type:varchar(32);not null" json:"animation_style"`
	AnimationDurationSeconds int            `gorm:"column:animation_duration_seconds;not null" json:"animation_duration_seconds"`
	ShowSelfie               bool           `gorm:"column:show_selfie;not null" json:"show_selfie"`
	ShowFullName             bool           `gorm:"column:show_full_name;not null" json:"show_full_name"`
	PlaySound                bool           `gorm:"column:play_sound;not null" json:"play_sound"`
	ConfettiAnimation        bool           `gorm:"column:confetti_animation;not null" json:"confetti_animation"`
	Status                   ConfigStatus   `gorm:"column:status;type:varchar(16);not null;index" json:"status"`
	TotalEntries             int64          `gorm:"column:total_entries;not null;default:0" json:"total_entries"`
	Seed                     int64          `gorm:"column:seed;not null;default:0" json:"seed,omitempty"`
	CreatedBy                string         `gorm:"column:created_by;type:varchar(64)" json:"created_by,omitempty"`
	CreatedAt                time.Time      `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt                time.Time      `gorm:"column:updated_at;not null" json:"updated_at"`
	DrawStartedAt            *time.Time     `gorm:"column:draw_started_at" json:"draw_started_at,omitempty"`
	CompletedAt              *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

// TotalSlots soma as vagas de todos os tiers.
func (c DrawConfig) TotalSlots() int {
	total := 0
	for _, t := range c.PrizeTiers {
		total += t.Count
	}
	return total
}

// ConfigPatch carrega apenas os campos que o organizador deseja alterar.
type ConfigPatch struct {
	PrizeTiers               []PrizeTier     `json:"prize_tiers,omitempty"`
	MaxEntriesPerUser        *int            `json:"max_entries_per_user,omitempty"`
	RequirePhotoUpload       *bool           `json:"require_photo_upload,omitempty"`
	PreventDuplicateWinners  *bool           `json:"prevent_duplicate_winners,omitempty"`
	AnimationStyle           *AnimationStyle `json:"animation_style,omitempty"`
	AnimationDurationSeconds *int            `json:"animation_duration_seconds,omitempty"`
	ShowSelfie               *bool           `json:"show_selfie,omitempty"`
	ShowFullName             *bool           `json:"show_full_name,omitempty"`
	PlaySound                *bool           `json:"play_sound,omitempty"`
	ConfettiAnimation        *bool           `json:"confetti_animation,omitempty"`
}

// Apply devolve uma cópia da config com o patch aplicado.
func (p ConfigPatch) Apply(c DrawConfig) DrawConfig {
	if p.PrizeTiers != nil {
		c.PrizeTiers = append([]PrizeTier(nil), p.PrizeTiers...)
	}
	if p.MaxEntriesPerUser != nil {
		c.MaxEntriesPerUser = *p.MaxEntriesPerUser
	}
	if p.RequirePhotoUpload != nil {
		c.RequirePhotoUpload = *p.RequirePhotoUpload
	}
	if p.PreventDuplicateWinners != nil {
		c.PreventDuplicateWinners = *p.PreventDuplicateWinners
	}
	if p.AnimationStyle != nil {
		c.AnimationStyle = *p.AnimationStyle
	}
	if p.AnimationDurationSeconds != nil {
		c.AnimationDurationSeconds = *p.AnimationDurationSeconds
	}
	if p.ShowSelfie != nil {
		c.ShowSelfie = *p.ShowSelfie
	}
	if p.ShowFullName != nil {
		c.ShowFullName = *p.ShowFullName
	}
	if p.PlaySound != nil {
		c.PlaySound = *p.PlaySound
	}
	if p.ConfettiAnimation != nil {
		c.ConfettiAnimation = *p.ConfettiAnimation
	}
	return c
}

type Entry struct {
	ID              EntryID   `gorm:"column:id;type:char(26);primaryKey" json:"id"`
	EventID         EventID   `gorm:"column:event_id;type:varchar(64);not null;index" json:"event_id"`
	ConfigID        ConfigID  `gorm:"column:config_id;type:char(26);not null;uniqueIndex:idx_entries_slot,priority:1;uniqueIndex:idx_entries_photo,priority:1;index:idx_entries_config_criado,priority:1" json:"config_id"`
	UserFingerprint string    `gorm:"column:user_fingerprint;type:varchar(128);not null;uniqueIndex:idx_entries_slot,priority:2" json:"user_fingerprint"`
	Slot            int       `gorm:"column:slot;not null;uniqueIndex:idx_entries_slot,priority:3" json:"-"`
	ParticipantName string    `gorm:"column:participant_name;type:text" json:"participant_name,omitempty"`
	PhotoID         *string   `gorm:"column:photo_id;type:varchar(64);uniqueIndex:idx_entries_photo,priority:2" json:"photo_id,omitempty"`
	CreatedAt       time.Time `gorm:"column:created_at;not null;index:idx_entries_config_criado,priority:2" json:"created_at"`
	IsWinner        bool      `gorm:"-" json:"is_winner"`
}

// Participant é uma projeção das entradas agrupadas por fingerprint.
type Participant struct {
	UserFingerprint string    `json:"user_fingerprint"`
	ParticipantName string    `json:"participant_name,omitempty"`
	EntryCount      int       `json:"entry_count"`
	IsWinner        bool      `json:"is_winner"`
	PrizeTier       TierKind  `json:"prize_tier,omitempty"`
	FirstEntryAt    time.Time `json:"first_entry_at"`
	LastEntryAt     time.Time `json:"last_entry_at"`
}

type Winner struct {
	ID              WinnerID   `gorm:"column:id;type:char(26);primaryKey" json:"id"`
	ConfigID        ConfigID   `gorm:"column:config_id;type:char(26);not null;uniqueIndex:idx_winners_ordem,priority:1;uniqueIndex:idx_winners_entry,priority:1" json:"config_id"`
	EntryID         EntryID    `gorm:"column:entry_id;type:char(26);not null;uniqueIndex:idx_winners_entry,priority:2" json:"entry_id"`
	ParticipantName string     `gorm:"column:participant_name;type:text" json:"participant_name"`
	UserFingerprint string     `gorm:"column:user_fingerprint;type:varchar(128);not null;index" json:"user_fingerprint"`
	PrizeTier       TierKind   `gorm:"column:prize_tier;type:varchar(16);not null" json:"prize_tier"`
	PrizeName       string     `gorm:"column:prize_name;type:text;not null" json:"prize_name"`
	SelfieURL       string     `gorm:"column:selfie_url;type:text" json:"selfie_url,omitempty"`
	SelectionOrder  int        `gorm:"column:selection_order;not null;uniqueIndex:idx_winners_ordem,priority:2" json:"selection_order"`
	IsClaimed       bool       `gorm:"column:is_claimed;not null;default:false" json:"is_claimed"`
	ClaimedAt       *time.Time `gorm:"column:claimed_at" json:"claimed_at,omitempty"`
	DrawnAt         time.Time  `gorm:"column:drawn_at;not null" json:"drawn_at"`
	DrawnBy         string     `gorm:"column:drawn_by;type:varchar(64)" json:"drawn_by,omitempty"`
}

type DrawHistoryItem struct {
	ConfigID     ConfigID     `json:"config_id"`
	Status       ConfigStatus `json:"status"`
	PrizeTiers   []PrizeTier  `json:"prize_tiers"`
	TotalEntries int64        `json:"total_entries"`
	CreatedAt    time.Time    `json:"created_at"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
	Winners      []Winner     `json:"winners"`
	WinnerCount  int          `json:"winner_count"`
}

type Role string

const (
	RoleGuest     Role = "guest"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

// Actor é a identidade autenticada repassada pela camada de auth.
type Actor struct {
	UserID   string
	Role     Role
	TenantID string
}

// CanManageDraws diz se o ator pode configurar e executar sorteios.
func (a Actor) CanManageDraws() bool {
	return a.UserID != "" && (a.Role == RoleOrganizer || a.Role == RoleAdmin)
}

// EntryEvent chega do pipeline de upload já validado.
type EntryEvent struct {
	ConfigID        ConfigID `json:"config_id,omitempty"`
	EventID         EventID  `json:"event_id,omitempty"`
	UserFingerprint string   `json:"user_fingerprint"`
	ParticipantName string   `json:"participant_name,omitempty"`
	PhotoID         string   `json:"photo_id,omitempty"`
}

type DrawEventType string

const (
	DrawEventStarted   DrawEventType = "draw_started"
	DrawEventWinner    DrawEventType = "draw_winner"
	DrawEventCompleted DrawEventType = "draw_completed"
	DrawEventFailed    DrawEventType = "draw_failed" // config voltou para scheduled
)

// DrawEvent é publicado para os clientes em tempo real acompanharem o sorteio.
type DrawEvent struct {
	Type     DrawEventType `json:"type"`
	EventID  EventID       `json:"event_id"`
	ConfigID ConfigID      `json:"config_id"`
	Winner   *Winner       `json:"winner,omitempty"`
	Total    int           `json:"total,omitempty"`
	At       time.Time     `json:"at"`
}

func (DrawConfig) TableName() string { return "draw_configs" }

func (Entry) TableName() string { return "draw_entries" }

func (Winner) TableName() string { return "draw_winners" }
