package doodle

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/marcelojr/daily-doodle/internal/domain"
)

type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stubClock) Agora() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stubClock) set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// memStore reúne submissões, votos, usuários e temas sob um único mutex, como uma transação do banco.
type memStore struct {
	mu          sync.Mutex
	submissions map[domain.SubmissionID]domain.Submission
	votes       map[domain.VoteID]domain.VoteRecord
	users       map[domain.UserID]domain.User
	themes      []domain.Theme
	themeOfDay  map[domain.Day]domain.ThemeOfDay

	tutorialWrites int
}

func newMemStore() *memStore {
	return &memStore{
		submissions: make(map[domain.SubmissionID]domain.Submission),
		votes:       make(map[domain.VoteID]domain.VoteRecord),
		users:       make(map[domain.UserID]domain.User),
		themeOfDay:  make(map[domain.Day]domain.ThemeOfDay),
	}
}

type memSubmissions struct{ *memStore }

func (m memSubmissions) CreateIfAbsent(_ context.Context, s domain.Submission) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.submissions[s.ID]; ok {
		return false, nil
	}
	for _, existing := range m.submissions {
		if existing.UserID == s.UserID && existing.Day == s.Day {
			return false, nil
		}
	}
	m.submissions[s.ID] = s
	return true, nil
}

func (m memSubmissions) FindByID(_ context.Context, id domain.SubmissionID) (domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.submissions[id]
	if !ok {
		return domain.Submission{}, domain.ErrNotFound
	}
	return s, nil
}

func (m memSubmissions) FindByUserAndDay(_ context.Context, userID domain.UserID, day domain.Day) (domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.submissions {
		if s.UserID == userID && s.Day == day {
			return s, nil
		}
	}
	return domain.Submission{}, domain.ErrNotFound
}

func (m memSubmissions) ListByDay(_ context.Context, day domain.Day) ([]domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Submission
	for _, s := range m.submissions {
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

func (m memSubmissions) ListRoom(_ context.Context, day domain.Day, room domain.RoomID, exclude domain.UserID) ([]domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Submission
	for _, s := range m.submissions {
		if s.Day == day && s.RoomID == room && s.UserID != exclude {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VoteCount != out[j].VoteCount {
			return out[i].VoteCount > out[j].VoteCount
		}
		return out[i].UserID > out[j].UserID
	})
	return out, nil
}

func (m memSubmissions) AssignRoom(_ context.Context, room domain.RoomID, ids []domain.SubmissionID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		s, ok := m.submissions[id]
		if !ok || s.RoomID != "" {
			continue
		}
		s.RoomID = room
		m.submissions[id] = s
		n++
	}
	return n, nil
}

func (m memSubmissions) MarkFlagged(_ context.Context, id domain.SubmissionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.submissions[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Flagged = true
	m.submissions[id] = s
	return nil
}

type memVotes struct{ *memStore }

func (m memVotes) Cast(_ context.Context, v domain.VoteRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.votes[v.ID]; ok {
		return domain.ErrAlreadyExists
	}
	s, ok := m.submissions[v.TargetSubmissionID]
	if !ok {
		return domain.ErrNotFound
	}
	s.VoteCount++
	m.submissions[s.ID] = s
	m.votes[v.ID] = v
	return nil
}

func (m memVotes) FindByID(_ context.Context, id domain.VoteID) (domain.VoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.votes[id]
	if !ok {
		return domain.VoteRecord{}, domain.ErrNotFound
	}
	return v, nil
}

type memUsers struct{ *memStore }

func (m memUsers) Create(_ context.Context, u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; ok {
		return domain.ErrAlreadyExists
	}
	m.users[u.ID] = u
	return nil
}

func (m memUsers) FindByID(_ context.Context, id domain.UserID) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (m memUsers) MarkTutorialSeen(_ context.Context, id domain.UserID) error {
	return m.update(id, func(u *domain.User) {
		u.HasSeenTutorial = true
		m.tutorialWrites++
	})
}

func (m memUsers) MarkVerified(_ context.Context, id domain.UserID) error {
	return m.update(id, func(u *domain.User) { u.IsVerified = true })
}

func (m memUsers) update(id domain.UserID, fn func(*domain.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	fn(&u)
	m.users[id] = u
	return nil
}

func (m memUsers) Erase(_ context.Context, id domain.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for sid, s := range m.submissions {
		if s.UserID == id {
			delete(m.submissions, sid)
		}
	}
	for vid, v := range m.votes {
		if v.VoterID == id {
			delete(m.votes, vid)
		}
	}
	delete(m.users, id)
	return nil
}

type memThemes struct{ *memStore }

func (m memThemes) Enqueue(_ context.Context, themes []domain.Theme) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.themes = append(m.themes, themes...)
	return nil
}

func (m memThemes) FindOfDay(_ context.Context, day domain.Day) (domain.ThemeOfDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tod, ok := m.themeOfDay[day]
	if !ok {
		return domain.ThemeOfDay{}, domain.ErrNotFound
	}
	return tod, nil
}

func (m memThemes) PromoteNext(_ context.Context, day domain.Day, at time.Time) (domain.ThemeOfDay, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tod, ok := m.themeOfDay[day]; ok {
		return tod, false, nil
	}
	if len(m.themes) == 0 {
		return domain.ThemeOfDay{}, false, domain.ErrNotFound
	}
	next := m.themes[0]
	m.themes = m.themes[1:]
	tod := domain.ThemeOfDay{Day: day, ThemeID: next.ID, Word: next.Word, RotatedAt: at}
	m.themeOfDay[day] = tod
	return tod, true, nil
}

type recordingFlagQueue struct {
	mu    sync.Mutex
	flags []domain.Flag
}

func (q *recordingFlagQueue) PublishFlag(_ context.Context, f domain.Flag) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.flags = append(q.flags, f)
	return nil
}

func (q *recordingFlagQueue) ConsumeFlags(ctx context.Context, handler func(context.Context, domain.Flag) error) error {
	q.mu.Lock()
	pending := q.flags
	q.flags = nil
	q.mu.Unlock()
	for _, f := range pending {
		if err := handler(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (q *recordingFlagQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.flags)
}
