// Pacote doodle implementa as operações por requisição do jogo: envio do desenho, feed da sala e voto.
package doodle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/marcelojr/daily-doodle/internal/domain"
	"github.com/marcelojr/daily-doodle/internal/platform/ids"
	"github.com/marcelojr/daily-doodle/internal/platform/logger"
)

const (
	acaoSubmit = "submit"
	acaoVote   = "vote"
	acaoFlag   = "flag"
)

type Repositories struct {
	Submissions domain.SubmissionRepository
	Votes       domain.VoteRepository
	Users       domain.UserRepository
	Themes      domain.ThemeRepository
}

type Options struct {
	Calendar domain.Calendar
	Schedule domain.Schedule
	IDs      *ids.Generator
	Logger   *slog.Logger
}

// Service aplica as regras do dia antes de delegar aos repositórios; unicidade e contadores ficam no banco.
type Service struct {
	submissions domain.SubmissionRepository
	votes       domain.VoteRepository
	users       domain.UserRepository
	themes      domain.ThemeRepository
	flags       domain.FlagQueue
	antifraude  domain.Antifraude
	clock       domain.Clock
	calendar    domain.Calendar
	schedule    domain.Schedule
	ids         *ids.Generator
	log         *slog.Logger
}

func NewService(repos Repositories, flags domain.FlagQueue, antifraude domain.Antifraude, clock domain.Clock, opts Options) *Service {
	if opts.IDs == nil {
		opts.IDs = ids.DefaultGenerator()
	}
	if opts.Logger == nil {
		opts.Logger = logger.L()
	}
	return &Service{
		submissions: repos.Submissions,
		votes:       repos.Votes,
		users:       repos.Users,
		themes:      repos.Themes,
		flags:       flags,
		antifraude:  antifraude,
		clock:       clock,
		calendar:    opts.Calendar,
		schedule:    opts.Schedule,
		ids:         opts.IDs,
		log:         opts.Logger,
	}
}

func (s *Service) Today() domain.Day {
	return s.calendar.DayOf(s.clock.Agora())
}

// Submit aceita no máximo um desenho por usuário por dia, até o fechamento das submissões.
func (s *Service) Submit(ctx context.Context, userID domain.UserID, image string) (domain.Submission, error) {
	if userID == "" {
		return domain.Submission{}, ErrUnauthenticated
	}
	if image == "" {
		return domain.Submission{}, missingField("image")
	}

	agora := s.clock.Agora()
	day := s.calendar.DayOf(agora)
	fechamento, err := s.calendar.At(day, s.schedule.SubmissionClose)
	if err != nil {
		return domain.Submission{}, err
	}
	if !agora.Before(fechamento) {
		return domain.Submission{}, ErrSubmissionWindowClosed
	}

	if err := s.validar(ctx, userID, acaoSubmit); err != nil {
		return domain.Submission{}, err
	}

	sub := domain.Submission{
		ID:              SubmissionIDFor(userID, day),
		UserID:          userID,
		Day:             day,
		Image:           image,
		CreatedAtMillis: agora.UnixMilli(),
	}
	created, err := s.submissions.CreateIfAbsent(ctx, sub)
	if err != nil {
		return domain.Submission{}, err
	}
	if !created {
		return domain.Submission{}, ErrAlreadySubmitted
	}
	return sub, nil
}

// RoomFeed devolve os outros desenhos da sala do usuário; sem desenho ou sem sala o feed é vazio.
func (s *Service) RoomFeed(ctx context.Context, userID domain.UserID, day domain.Day) ([]domain.Submission, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if day == "" {
		day = s.Today()
	}

	own, err := s.submissions.FindByUserAndDay(ctx, userID, day)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.Submission{}, nil
		}
		return nil, err
	}
	if own.RoomID == "" {
		return []domain.Submission{}, nil
	}

	feed, err := s.submissions.ListRoom(ctx, day, own.RoomID, userID)
	if err != nil {
		return nil, err
	}
	return feed, nil
}

// CastVote registra o voto diário do usuário e incrementa o alvo de forma atômica.
func (s *Service) CastVote(ctx context.Context, voterID domain.UserID, target domain.SubmissionID) error {
	if voterID == "" {
		return ErrUnauthenticated
	}
	if target == "" {
		return missingField("submission_id")
	}

	agora := s.clock.Agora()
	day := s.calendar.DayOf(agora)
	abertura, err := s.calendar.At(day, s.schedule.RoomAssignment)
	if err != nil {
		return err
	}
	encerramento, err := s.calendar.At(day, s.schedule.WinnerSelection)
	if err != nil {
		return err
	}
	if agora.Before(abertura) || !agora.Before(encerramento) {
		return ErrVotingWindowClosed
	}

	if err := s.validar(ctx, voterID, acaoVote); err != nil {
		return err
	}

	voteID := VoteIDFor(voterID, day)
	// Leitura antecipada só melhora a mensagem; a garantia real é o insert condicional em Cast.
	if _, err := s.votes.FindByID(ctx, voteID); err == nil {
		return ErrAlreadyVoted
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	alvo, err := s.submissions.FindByID(ctx, target)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrTargetNotFound
		}
		return err
	}
	if alvo.Day != day {
		return ErrTargetNotFound
	}
	if alvo.UserID == voterID {
		return ErrSelfVote
	}

	// A votação abre junto com a distribuição; até o job gravar as salas o voto é recusado.
	if alvo.RoomID == "" {
		return ErrVotingWindowClosed
	}

	own, err := s.submissions.FindByUserAndDay(ctx, voterID, day)
	switch {
	case err == nil:
		if own.RoomID == "" {
			return ErrVotingWindowClosed
		}
		if own.RoomID != alvo.RoomID {
			return ErrTargetOutsideRoom
		}
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}

	err = s.votes.Cast(ctx, domain.VoteRecord{
		ID:                 voteID,
		VoterID:            voterID,
		TargetSubmissionID: target,
		Day:                day,
		CastAt:             agora,
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrAlreadyExists):
		return ErrAlreadyVoted
	case errors.Is(err, domain.ErrNotFound):
		return ErrTargetNotFound
	default:
		return err
	}
}

func (s *Service) validar(ctx context.Context, userID domain.UserID, acao string) error {
	if s.antifraude == nil {
		return nil
	}
	return s.antifraude.Validar(ctx, userID, acao)
}

func missingField(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, name)
}

var _ domain.DoodleService = (*Service)(nil)
