package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"civic-backend/internal/idgen"
	"civic-backend/internal/models"
	"civic-backend/internal/recordings"
	"civic-backend/internal/repository"
)

// memComplaints is an in-memory ComplaintRepository.
type memComplaints struct {
	mu      sync.Mutex
	items   map[string]*models.Complaint
	ids     *idgen.Generator
	failAll error
}

func newMemComplaints() *memComplaints {
	return &memComplaints{items: map[string]*models.Complaint{}, ids: idgen.New()}
}

func (m *memComplaints) Create(_ context.Context, c *models.Complaint) error {
	if m.failAll != nil {
		return m.failAll
	}
	c.PrepareCreate(m.ids.Complaint)
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrInvalid, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[c.ComplaintID]; ok {
		return repository.ErrDuplicate
	}
	now := time.Now().UTC()
	c.ID = fmt.Sprintf("%d", len(m.items)+1)
	c.CreatedAt, c.UpdatedAt = now.Add(time.Duration(len(m.items))*time.Millisecond), now
	cp := *c
	m.items[c.ComplaintID] = &cp
	return nil
}

func (m *memComplaints) FindByComplaintID(_ context.Context, id string) (*models.Complaint, error) {
	if m.failAll != nil {
		return nil, m.failAll
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memComplaints) UpdateStatus(_ context.Context, id string, status models.ComplaintStatus, note string) (*models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	c.Status = status
	if note = strings.TrimSpace(note); note != "" {
		c.Notes = append(c.Notes, note)
	}
	cp := *c
	return &cp, nil
}

func (m *memComplaints) filtered(f repository.ComplaintFilter) []models.Complaint {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Complaint
	for _, c := range m.items {
		if f.Status != "" && string(c.Status) != f.Status {
			continue
		}
		if f.Priority != "" && string(c.Priority) != f.Priority {
			continue
		}
		if f.Category != "" && string(c.Category) != f.Category {
			continue
		}
		if f.Q != "" && !strings.Contains(c.PhoneNumber, f.Q) && !strings.Contains(c.Description, f.Q) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memComplaints) List(_ context.Context, f repository.ComplaintFilter) ([]models.Complaint, error) {
	f = f.Normalize()
	all := m.filtered(f)
	if f.Offset >= len(all) {
		return []models.Complaint{}, nil
	}
	return all[f.Offset:min(f.Offset+f.Limit, len(all))], nil
}

func (m *memComplaints) Count(_ context.Context, f repository.ComplaintFilter) (int, error) {
	return len(m.filtered(f.Normalize())), nil
}

func (m *memComplaints) Summary(_ context.Context, since time.Time) (repository.ComplaintSummary, error) {
	var s repository.ComplaintSummary
	for _, c := range m.filtered(repository.ComplaintFilter{}) {
		switch {
		case c.Status.Open():
			s.Open++
			if c.Priority == models.PriorityHigh || c.Priority == models.PriorityUrgent {
				s.UrgentOpen++
			}
		case !c.UpdatedAt.Before(since):
			s.Resolved7d++
		}
	}
	return s, nil
}

// memUsers is an in-memory UserRepository.
type memUsers struct {
	mu   sync.Mutex
	byID map[string]*models.User
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]*models.User{}} }

func (m *memUsers) add(u models.User) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = fmt.Sprintf("u%d", len(m.byID)+1)
	}
	m.byID[u.ID] = &u
	return &u
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	if got, _ := m.GetByEmail(context.Background(), u.Email); got != nil {
		return repository.ErrDuplicate
	}
	*u = *m.add(*u)
	return nil
}

func (m *memUsers) get(match func(*models.User) bool) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	return m.get(func(u *models.User) bool { return u.ID == id }), nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return m.get(func(u *models.User) bool { return u.Email == email }), nil
}

func (m *memUsers) GetByVerificationToken(_ context.Context, tok string) (*models.User, error) {
	if tok == "" {
		return nil, nil
	}
	return m.get(func(u *models.User) bool { return u.VerificationToken == tok }), nil
}

func (m *memUsers) MarkVerified(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsVerified, u.VerificationToken = true, ""
	return nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id string, p models.ProfileUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	u.Name, u.Age, u.DOB, u.Phone, u.Bio = p.Name, p.Age, p.DOB, p.Phone, p.Bio
	if p.ProfilePic != nil {
		u.ProfilePic = *p.ProfilePic
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) UpdateRole(_ context.Context, id, role string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	u.Role = role
	cp := *u
	return &cp, nil
}

// memTracker is an in-memory recordings.Tracker.
type memTracker struct {
	mu sync.Mutex
	m  map[string]string
}

func (t *memTracker) Record(_ context.Context, sid, status string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.m == nil {
		t.m = map[string]string{}
	}
	t.m[sid] = status
	return nil
}

func (t *memTracker) Get(_ context.Context, sid string) (*recordings.Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.m[sid]
	if !ok {
		return nil, nil
	}
	return &recordings.Status{SID: sid, Status: st}, nil
}
