package daily

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/marcelojr/daily-doodle/internal/domain"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Agora() time.Time { return c.now }

type memSubmissions struct {
	mu   sync.Mutex
	data map[domain.SubmissionID]domain.Submission
	// falhaNaSala simula erro de escrita ao atribuir essa sala.
	falhaNaSala domain.RoomID
}

func newMemSubmissions(subs ...domain.Submission) *memSubmissions {
	m := &memSubmissions{data: make(map[domain.SubmissionID]domain.Submission)}
	for _, s := range subs {
		m.data[s.ID] = s
	}
	return m
}

func (m *memSubmissions) get(id domain.SubmissionID) domain.Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[id]
}

// remove simula o apagamento de conta entre duas execuções.
func (m *memSubmissions) remove(id domain.SubmissionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
}

func (m *memSubmissions) CreateIfAbsent(_ context.Context, s domain.Submission) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[s.ID]; ok {
		return false, nil
	}
	m.data[s.ID] = s
	return true, nil
}

func (m *memSubmissions) FindByID(_ context.Context, id domain.SubmissionID) (domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.data[id]
	if !ok {
		return domain.Submission{}, domain.ErrNotFound
	}
	return s, nil
}

func (m *memSubmissions) FindByUserAndDay(_ context.Context, userID domain.UserID, day domain.Day) (domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.data {
		if s.UserID == userID && s.Day == day {
			return s, nil
		}
	}
	return domain.Submission{}, domain.ErrNotFound
}

func (m *memSubmissions) ListByDay(_ context.Context, day domain.Day) ([]domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Submission
	for _, s := range m.data {
		if s.Day == day {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAtMillis != out[j].CreatedAtMillis {
			return out[i].CreatedAtMillis < out[j].CreatedAtMillis
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memSubmissions) ListRoom(context.Context, domain.Day, domain.RoomID, domain.UserID) ([]domain.Submission, error) {
	return nil, errors.New("nao usado")
}

func (m *memSubmissions) AssignRoom(_ context.Context, room domain.RoomID, ids []domain.SubmissionID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if room == m.falhaNaSala {
		return 0, errors.New("falha simulada")
	}
	var n int64
	for _, id := range ids {
		s, ok := m.data[id]
		if !ok || s.RoomID != "" {
			continue
		}
		s.RoomID = room
		m.data[id] = s
		n++
	}
	return n, nil
}

func (m *memSubmissions) MarkFlagged(context.Context, domain.SubmissionID) error { return nil }

// memWinners espelha o Award do banco: cria uma vez por submissão e soma a vitória só na criação.
type memWinners struct {
	mu       sync.Mutex
	records  map[domain.SubmissionID]domain.WinnerRecord
	winCount map[domain.UserID]int64
	falhaEm  domain.RoomID
}

func newMemWinners() *memWinners {
	return &memWinners{
		records:  make(map[domain.SubmissionID]domain.WinnerRecord),
		winCount: make(map[domain.UserID]int64),
	}
}

func (m *memWinners) Award(_ context.Context, w domain.WinnerRecord) (domain.WinnerRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.falhaEm != "" && w.RoomID == m.falhaEm {
		return domain.WinnerRecord{}, false, errors.New("falha simulada")
	}
	if existing, ok := m.records[w.SubmissionID]; ok {
		return existing, false, nil
	}
	m.records[w.SubmissionID] = w
	m.winCount[w.UserID]++
	return w, true, nil
}

type memThemes struct {
	mu         sync.Mutex
	queue      []domain.Theme
	themeOfDay map[domain.Day]domain.ThemeOfDay
}

func newMemThemes(words ...string) *memThemes {
	m := &memThemes{themeOfDay: make(map[domain.Day]domain.ThemeOfDay)}
	for _, w := range words {
		m.queue = append(m.queue, domain.Theme{ID: domain.ThemeID("t-" + w), Word: w})
	}
	return m
}

func (m *memThemes) Enqueue(_ context.Context, themes []domain.Theme) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, themes...)
	return nil
}

func (m *memThemes) FindOfDay(_ context.Context, day domain.Day) (domain.ThemeOfDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tod, ok := m.themeOfDay[day]
	if !ok {
		return domain.ThemeOfDay{}, domain.ErrNotFound
	}
	return tod, nil
}

func (m *memThemes) PromoteNext(_ context.Context, day domain.Day, at time.Time) (domain.ThemeOfDay, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tod, ok := m.themeOfDay[day]; ok {
		return tod, false, nil
	}
	if len(m.queue) == 0 {
		return domain.ThemeOfDay{}, false, domain.ErrNotFound
	}
	next := m.queue[0]
	m.queue = m.queue[1:]
	tod := domain.ThemeOfDay{Day: day, ThemeID: next.ID, Word: next.Word, RotatedAt: at}
	m.themeOfDay[day] = tod
	return tod, true, nil
}

type fakeLock struct {
	mu       sync.Mutex
	held     map[string]bool
	err      error
	released int
}

func newFakeLock() *fakeLock {
	return &fakeLock{held: make(map[string]bool)}
}

func (l *fakeLock) Acquire(_ context.Context, key string, _ time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, false, l.err
	}
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		l.released++
	}, true, nil
}
