package daily

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/marcelojr/daily-doodle/internal/domain"
	"github.com/marcelojr/daily-doodle/internal/platform/logger"
)

// Scheduler dispara os jobs diários nos horários da agenda, no fuso do calendário.
type Scheduler struct {
	engine   *cron.Cron
	runner   *Runner
	schedule domain.Schedule
	calendar domain.Calendar
	clock    domain.Clock
	log      *slog.Logger
}

func NewScheduler(runner *Runner, schedule domain.Schedule, calendar domain.Calendar, clock domain.Clock, log *slog.Logger) *Scheduler {
	if log == nil {
		log = logger.L()
	}
	return &Scheduler{
		engine:   cron.New(cron.WithSeconds(), cron.WithLocation(calendar.Location())),
		runner:   runner,
		schedule: schedule,
		calendar: calendar,
		clock:    clock,
		log:      log,
	}
}

func (s *Scheduler) RegisterJobs() error {
	entries := []struct {
		job string
		at  domain.TimeOfDay
	}{
		{JobThemeRotation, s.schedule.ThemeRotation},
		{JobAssignRooms, s.schedule.RoomAssignment},
		{JobSelectWinners, s.schedule.WinnerSelection},
	}
	for _, e := range entries {
		if _, err := s.engine.AddJob(e.at.CronSpec(), scheduledJob{scheduler: s, job: e.job}); err != nil {
			return fmt.Errorf("daily: agendar %s: %w", e.job, err)
		}
		s.log.Info("job agendado", "job", e.job, "at", e.at.String(), "tz", s.calendar.Location().String())
	}
	return nil
}

func (s *Scheduler) Entries() []cron.Entry {
	return s.engine.Entries()
}

func (s *Scheduler) Start() {
	s.log.Info("agendador de jobs iniciado")
	s.engine.Start()
}

// Stop para o agendador e devolve um contexto que termina quando os jobs em andamento acabarem.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("agendador de jobs parado")
	return s.engine.Stop()
}

type scheduledJob struct {
	scheduler *Scheduler
	job       string
}

func (j scheduledJob) Run() {
	s := j.scheduler
	day := s.calendar.DayOf(s.clock.Agora())
	if err := s.runner.Run(context.Background(), j.job, day); err != nil && !errors.Is(err, ErrJobLocked) {
		s.log.Error("execucao agendada falhou", "job", j.job, "day", day, "err", err)
	}
}
