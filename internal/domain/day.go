package domain

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// Day identifica um dia de calendário no fuso de referência (YYYY-MM-DD).
type Day string

func ParseDay(raw string) (Day, error) {
	t, err := time.Parse(dayLayout, raw)
	if err != nil {
		return "", fmt.Errorf("dia invalido %q: %w", raw, err)
	}
	return Day(t.Format(dayLayout)), nil
}

func (d Day) String() string { return string(d) }

// TimeOfDay é um horário de relógio (hora:minuto) dentro do dia de referência.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("horario invalido %q: %w", raw, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) minutes() int { return t.Hour*60 + t.Minute }

func (t TimeOfDay) Before(o TimeOfDay) bool { return t.minutes() < o.minutes() }

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

// CronSpec devolve a expressão cron (com segundos) que dispara neste horário todo dia.
func (t TimeOfDay) CronSpec() string {
	return fmt.Sprintf("0 %d %d * * *", t.Minute, t.Hour)
}

// Schedule fixa os horários canônicos do ciclo diário.
type Schedule struct {
	ThemeRotation   TimeOfDay
	SubmissionClose TimeOfDay
	RoomAssignment  TimeOfDay
	WinnerSelection TimeOfDay
}

func DefaultSchedule() Schedule {
	return Schedule{
		ThemeRotation:   TimeOfDay{Hour: 0, Minute: 5},
		SubmissionClose: TimeOfDay{Hour: 13, Minute: 45},
		RoomAssignment:  TimeOfDay{Hour: 14, Minute: 0},
		WinnerSelection: TimeOfDay{Hour: 20, Minute: 0},
	}
}

// Validate exige a ordem rotação < fechamento <= salas < vencedores.
func (s Schedule) Validate() error {
	if !s.ThemeRotation.Before(s.SubmissionClose) {
		return fmt.Errorf("agenda: rotacao de tema (%s) deve ser antes do fechamento (%s)", s.ThemeRotation, s.SubmissionClose)
	}
	if s.RoomAssignment.Before(s.SubmissionClose) {
		return fmt.Errorf("agenda: salas (%s) antes do fechamento das submissoes (%s)", s.RoomAssignment, s.SubmissionClose)
	}
	if !s.RoomAssignment.Before(s.WinnerSelection) {
		return fmt.Errorf("agenda: salas (%s) devem ser antes da selecao de vencedores (%s)", s.RoomAssignment, s.WinnerSelection)
	}
	return nil
}

// Calendar converte instantes em dias e horários no fuso de referência.
type Calendar struct {
	loc *time.Location
}

func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{loc: loc}
}

func LoadCalendar(name string) (Calendar, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Calendar{}, fmt.Errorf("calendario: fuso %q: %w", name, err)
	}
	return NewCalendar(loc), nil
}

func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

func (c Calendar) DayOf(t time.Time) Day {
	return Day(t.In(c.Location()).Format(dayLayout))
}

func (c Calendar) At(d Day, tod TimeOfDay) (time.Time, error) {
	t, err := time.Parse(dayLayout, string(d))
	if err != nil {
		return time.Time{}, fmt.Errorf("calendario: dia invalido %q: %w", d, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), tod.Hour, tod.Minute, 0, 0, c.Location()), nil
}
