package reveal

import (
	"strings"

	"github.com/marcelojr/lucky-draw/internal/domain"
)

// Slide é um ganhador pronto para exibição, já com as preferências da config aplicadas.
type Slide struct {
	Order       int             `json:"order"`
	WinnerID    domain.WinnerID `json:"winner_id"`
	PrizeTier   domain.TierKind `json:"prize_tier"`
	PrizeName   string          `json:"prize_name"`
	DisplayName string          `json:"display_name"`
	SelfieURL   string          `json:"selfie_url,omitempty"`
}

type Presentation struct {
	ConfigID        domain.ConfigID       `json:"config_id"`
	AnimationStyle  domain.AnimationStyle `json:"animation_style"`
	DurationSeconds int                   `json:"duration_seconds"`
	PlaySound       bool                  `json:"play_sound"`
	Confetti        bool                  `json:"confetti"`
	Slides          []Slide               `json:"slides"`
}

func BuildPresentation(cfg domain.DrawConfig, winners []domain.Winner) Presentation {
	seq := NewSequencer(winners, 0)
	ordered := seq.Winners()

	slides := make([]Slide, len(ordered))
	for i, w := range ordered {
		slide := Slide{
			Order:       w.SelectionOrder,
			WinnerID:    w.ID,
			PrizeTier:   w.PrizeTier,
			PrizeName:   w.PrizeName,
			DisplayName: w.ParticipantName,
		}
		if !cfg.ShowFullName {
			slide.DisplayName = FirstName(w.ParticipantName)
		}
		if cfg.ShowSelfie {
			slide.SelfieURL = w.SelfieURL
		}
		slides[i] = slide
	}

	return Presentation{
		ConfigID:        cfg.ID,
		AnimationStyle:  cfg.AnimationStyle,
		DurationSeconds: cfg.AnimationDurationSeconds,
		PlaySound:       cfg.PlaySound,
		Confetti:        cfg.ConfettiAnimation,
		Slides:          slides,
	}
}

// FirstName mantém só o primeiro nome quando o nome completo não deve aparecer.
func FirstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return name
	}
	return fields[0]
}
