package antifraude

import (
	"context"

	"github.com/marcelojr/daily-doodle/internal/domain"
)

// Noop aceita tudo; usado quando ANTIFRAUDE_RATE_LIMIT_ENABLED=false.
type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) Validar(context.Context, domain.UserID, string) error { return nil }

var _ domain.Antifraude = Noop{}
