package doodle

import (
	"context"
	"errors"
	"strings"

	"github.com/marcelojr/daily-doodle/internal/domain"
)

func (s *Service) ThemeOfDay(ctx context.Context, day domain.Day) (domain.ThemeOfDay, error) {
	if day == "" {
		day = s.Today()
	}
	tod, err := s.themes.FindOfDay(ctx, day)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ThemeOfDay{}, ErrThemeNotFound
		}
		return domain.ThemeOfDay{}, err
	}
	return tod, nil
}

// EnqueueThemes adiciona palavras ao fim da fila na ordem recebida; ULIDs monotônicos desempatam o mesmo instante.
func (s *Service) EnqueueThemes(ctx context.Context, words []string) ([]domain.Theme, error) {
	agora := s.clock.Agora()
	themes := make([]domain.Theme, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		themes = append(themes, domain.Theme{
			ID:       domain.ThemeID(s.ids.New()),
			Word:     w,
			QueuedAt: agora,
		})
	}
	if len(themes) == 0 {
		return nil, missingField("words")
	}

	if err := s.themes.Enqueue(ctx, themes); err != nil {
		return nil, err
	}
	return themes, nil
}
