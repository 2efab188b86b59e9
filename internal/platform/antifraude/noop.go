package antifraude

import (
	"context"

	"github.com/marcelojr/lucky-draw/internal/domain"
)

// Noop libera todas as admissões; usado quando o throttle está desligado e no worker.
type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) Allow(context.Context, domain.ConfigID, string) error { return nil }

var _ domain.AdmissionGuard = Noop{}
