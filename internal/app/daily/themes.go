package daily

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/marcelojr/daily-doodle/internal/domain"
	"github.com/marcelojr/daily-doodle/internal/platform/logger"
)

var ErrNoThemes = errors.New("daily: fila de temas vazia")

type ThemeRotator struct {
	themes domain.ThemeRepository
	clock  domain.Clock
	log    *slog.Logger
}

func NewThemeRotator(themes domain.ThemeRepository, clock domain.Clock, log *slog.Logger) *ThemeRotator {
	if log == nil {
		log = logger.L()
	}
	return &ThemeRotator{themes: themes, clock: clock, log: log}
}

// Rotate fixa o tema do dia uma única vez; chamadas seguintes devolvem o mesmo registro.
func (r *ThemeRotator) Rotate(ctx context.Context, day domain.Day) (domain.ThemeOfDay, error) {
	tod, err := r.themes.FindOfDay(ctx, day)
	if err == nil {
		return tod, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.ThemeOfDay{}, fmt.Errorf("daily: tema de %s: %w", day, err)
	}

	tod, created, err := r.themes.PromoteNext(ctx, day, r.clock.Agora())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.log.WarnContext(ctx, "fila de temas vazia", "day", day)
			return domain.ThemeOfDay{}, ErrNoThemes
		}
		return domain.ThemeOfDay{}, fmt.Errorf("daily: promover tema de %s: %w", day, err)
	}
	if created {
		r.log.InfoContext(ctx, "tema do dia definido", "day", day, "word", tod.Word)
	}
	return tod, nil
}
