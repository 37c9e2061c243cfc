package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/devinfinitee/AI-health-companion/internal/domain"
	"github.com/devinfinitee/AI-health-companion/pkg/events"
)

// ---------- Mocks ----------

type memAppointments struct {
	mu          sync.Mutex
	items       map[string]*domain.Appointment
	taken       map[string]bool // codes ExistsByCode reports as used
	seq         int
	existsCalls int
	creates     int
	createErr   error
}

func newMemAppointments() *memAppointments {
	return &memAppointments{items: map[string]*domain.Appointment{}, taken: map[string]bool{}}
}

func (m *memAppointments) Create(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, existing := range m.items {
		if existing.ConfirmationCode == a.ConfirmationCode {
			return nil, domain.ErrDuplicateCode
		}
	}
	m.seq++
	cp := *a
	cp.ID = fmt.Sprintf("appt-%d", m.seq)
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.items[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memAppointments) GetByID(_ context.Context, id string) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *a
	return &out, nil
}

func (m *memAppointments) ExistsByCode(_ context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.existsCalls++
	if m.taken[code] {
		return true, nil
	}
	for _, a := range m.items {
		if a.ConfirmationCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAppointments) ListByUser(_ context.Context, userID string) ([]domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Appointment
	for _, a := range m.items {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentDate.After(out[j].AppointmentDate) })
	return out, nil
}

func (m *memAppointments) Update(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[a.ID]; !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	cp.UpdatedAt = time.Now()
	m.items[a.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memAppointments) MarkReminderSent(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.ReminderSent = true
	return nil
}

func (m *memAppointments) CountByStatus(_ context.Context, userID string) (map[domain.AppointmentStatus]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[domain.AppointmentStatus]int{}
	for _, a := range m.items {
		if a.UserID == userID {
			out[a.Status]++
		}
	}
	return out, nil
}

func (m *memAppointments) NextUpcoming(_ context.Context, userID string, after time.Time) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *domain.Appointment
	for _, a := range m.items {
		if a.UserID != userID || !a.AppointmentDate.After(after) {
			continue
		}
		if a.Status != domain.StatusPending && a.Status != domain.StatusConfirmed {
			continue
		}
		if best == nil || a.AppointmentDate.Before(best.AppointmentDate) {
			best = a
		}
	}
	if best == nil {
		return nil, domain.ErrNotFound
	}
	out := *best
	return &out, nil
}

type memUsers struct {
	byEmail map[string]*domain.User
	seq     int
	err     error
}

func newMemUsers() *memUsers { return &memUsers{byEmail: map[string]*domain.User{}} }

func (m *memUsers) Create(_ context.Context, email, hash, name string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if _, ok := m.byEmail[email]; ok {
		return nil, domain.ErrDuplicateEmail
	}
	m.seq++
	u := &domain.User{ID: fmt.Sprintf("user-%d", m.seq), Email: email, PasswordHash: hash, Name: name}
	m.byEmail[email] = u
	return u, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

type memConversations struct {
	items []domain.Conversation
}

func (m *memConversations) Create(_ context.Context, userID, question, reply string) (*domain.Conversation, error) {
	c := domain.Conversation{
		ID:        fmt.Sprintf("conv-%d", len(m.items)+1),
		UserID:    userID,
		Question:  question,
		Reply:     reply,
		CreatedAt: time.Now().Add(time.Duration(len(m.items)) * time.Second),
	}
	m.items = append(m.items, c)
	return &c, nil
}

func (m *memConversations) ListByUser(_ context.Context, userID string, limit int) ([]domain.Conversation, error) {
	var out []domain.Conversation
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.items[i].UserID == userID {
			out = append(out, m.items[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memConversations) CountByUser(_ context.Context, userID string) (int, error) {
	n := 0
	for _, c := range m.items {
		if c.UserID == userID {
			n++
		}
	}
	return n, nil
}

type recordingBus struct {
	mu        sync.Mutex
	published []string
	payloads  []interface{}
	err       error
}

func (b *recordingBus) Publish(_ context.Context, subject string, data interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, subject)
	b.payloads = append(b.payloads, data)
	return b.err
}

func (b *recordingBus) Close() error { return nil }

func (b *recordingBus) subjects() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.published...)
}

var _ events.Publisher = (*recordingBus)(nil)

// scriptedCodes returns the given codes in order, then repeats the last.
func scriptedCodes(codes ...string) CodeGenerator {
	i := 0
	return func() (string, error) {
		c := codes[min(i, len(codes)-1)]
		i++
		return c, nil
	}
}
