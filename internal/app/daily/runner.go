package daily

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/marcelojr/daily-doodle/internal/domain"
	"github.com/marcelojr/daily-doodle/internal/platform/logger"
	"github.com/marcelojr/daily-doodle/internal/platform/metrics"
)

const (
	JobThemeRotation = "theme-rotation"
	JobAssignRooms   = "assign-rooms"
	JobSelectWinners = "select-winners"
)

var (
	ErrUnknownJob = errors.New("daily: job desconhecido")
	ErrJobLocked  = errors.New("daily: job ja em execucao")
)

// Jobs lista os nomes aceitos por Runner.Run.
func Jobs() []string {
	return []string{JobThemeRotation, JobAssignRooms, JobSelectWinners}
}

// Runner executa um job diário com lock, métricas e log; é usado pelo cron do worker e pelo jobctl.
type Runner struct {
	partitioner *RoomPartitioner
	winners     *WinnerSelector
	themes      *ThemeRotator
	lock        domain.JobLock
	lockTTL     time.Duration
	log         *slog.Logger
}

func NewRunner(partitioner *RoomPartitioner, winners *WinnerSelector, themes *ThemeRotator, lock domain.JobLock, lockTTL time.Duration, log *slog.Logger) *Runner {
	if log == nil {
		log = logger.L()
	}
	return &Runner{
		partitioner: partitioner,
		winners:     winners,
		themes:      themes,
		lock:        lock,
		lockTTL:     lockTTL,
		log:         log,
	}
}

func (r *Runner) Run(ctx context.Context, job string, day domain.Day) error {
	start := time.Now()
	log := r.log.With("job", job, "day", day)

	if r.lock != nil {
		release, ok, err := r.lock.Acquire(ctx, LockKey(job, day), r.lockTTL)
		switch {
		case err != nil:
			// O lock só evita trabalho duplicado; a corretude vem das escritas idempotentes.
			log.WarnContext(ctx, "lock indisponivel, executando sem lock", "err", err)
		case !ok:
			log.InfoContext(ctx, "job ja em execucao, ignorando")
			metrics.ObserveJobRun(job, "skipped", time.Since(start).Seconds())
			return ErrJobLocked
		default:
			defer release()
		}
	}

	err := r.dispatch(ctx, log, job, day)

	status := "ok"
	if err != nil {
		status = "error"
		log.ErrorContext(ctx, "job falhou", "err", err, "duracao", time.Since(start))
	} else {
		log.InfoContext(ctx, "job concluido", "duracao", time.Since(start))
	}
	metrics.ObserveJobRun(job, status, time.Since(start).Seconds())
	return err
}

func (r *Runner) dispatch(ctx context.Context, log *slog.Logger, job string, day domain.Day) error {
	switch job {
	case JobThemeRotation:
		tod, err := r.themes.Rotate(ctx, day)
		if err != nil {
			return err
		}
		log.InfoContext(ctx, "tema do dia", "word", tod.Word)
		return nil
	case JobAssignRooms:
		res, err := r.partitioner.AssignRooms(ctx, day)
		metrics.AddSubmissionsAssigned(res.SubmissionsAssigned)
		return err
	case JobSelectWinners:
		_, err := r.winners.SelectWinners(ctx, day)
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownJob, job)
	}
}
