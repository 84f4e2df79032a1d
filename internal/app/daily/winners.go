package daily

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/marcelojr/daily-doodle/internal/domain"
	"github.com/marcelojr/daily-doodle/internal/platform/logger"
	"github.com/marcelojr/daily-doodle/internal/platform/metrics"
)

type WinnerSelector struct {
	submissions domain.SubmissionRepository
	winners     domain.WinnerRepository
	clock       domain.Clock
	log         *slog.Logger
}

func NewWinnerSelector(submissions domain.SubmissionRepository, winners domain.WinnerRepository, clock domain.Clock, log *slog.Logger) *WinnerSelector {
	if log == nil {
		log = logger.L()
	}
	return &WinnerSelector{submissions: submissions, winners: winners, clock: clock, log: log}
}

// SelectWinners premia, em cada sala do dia, todas as submissões empatadas na maior contagem.
// Falha em uma sala não interrompe as demais; os erros voltam agregados no fim.
func (w *WinnerSelector) SelectWinners(ctx context.Context, day domain.Day) ([]domain.WinnerRecord, error) {
	subs, err := w.submissions.ListByDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("daily: listar submissoes de %s: %w", day, err)
	}

	salas := make(map[domain.RoomID][]domain.Submission)
	for _, s := range subs {
		salas[s.RoomID] = append(salas[s.RoomID], s)
	}
	ordem := make([]domain.RoomID, 0, len(salas))
	for room := range salas {
		ordem = append(ordem, room)
	}
	sort.Slice(ordem, func(i, j int) bool { return ordem[i] < ordem[j] })

	agora := w.clock.Agora()
	var (
		result []domain.WinnerRecord
		errs   []error
	)
	for _, room := range ordem {
		records, err := w.awardRoom(ctx, day, room, salas[room], agora)
		result = append(result, records...)
		if err != nil {
			w.log.ErrorContext(ctx, "falha ao premiar sala", "day", day, "room", room, "err", err)
			errs = append(errs, fmt.Errorf("daily: sala %q: %w", room, err))
		}
	}

	w.log.InfoContext(ctx, "vencedores selecionados", "day", day, "rooms", len(ordem), "winners", len(result))
	return result, errors.Join(errs...)
}

func (w *WinnerSelector) awardRoom(ctx context.Context, day domain.Day, room domain.RoomID, members []domain.Submission, agora time.Time) ([]domain.WinnerRecord, error) {
	var (
		records []domain.WinnerRecord
		errs    []error
	)
	for _, s := range TopSubmissions(members) {
		rec, created, err := w.winners.Award(ctx, domain.WinnerRecord{
			ID:                   WinnerIDFor(s.ID),
			SubmissionID:         s.ID,
			UserID:               s.UserID,
			RoomID:               room,
			Day:                  day,
			Image:                s.Image,
			VoteCountAtSelection: s.VoteCount,
			SelectedAt:           agora,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("submissao %s: %w", s.ID, err))
			continue
		}
		if created {
			metrics.IncWinnersAwarded()
		}
		records = append(records, rec)
	}
	return records, errors.Join(errs...)
}

// TopSubmissions devolve todas as submissões com a maior contagem de votos; empates geram vários vencedores.
func TopSubmissions(members []domain.Submission) []domain.Submission {
	if len(members) == 0 {
		return nil
	}
	maxVotes := members[0].VoteCount
	for _, s := range members[1:] {
		if s.VoteCount > maxVotes {
			maxVotes = s.VoteCount
		}
	}
	var top []domain.Submission
	for _, s := range members {
		if s.VoteCount == maxVotes {
			top = append(top, s)
		}
	}
	return top
}
