package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"civic-backend/internal/mailer"
	"civic-backend/internal/models"
	"civic-backend/internal/repository"
)

type memUsers struct {
	mu   sync.Mutex
	byID map[string]*models.User
	seq  int
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]*models.User{}} }

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.byID {
		if x.Email == u.Email || x.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	m.seq++
	u.ID = fmt.Sprintf("u%d", m.seq)
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) find(match func(*models.User) bool) *models.User {
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
	return m.find(func(u *models.User) bool { return u.ID == id }), nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return m.find(func(u *models.User) bool { return u.Email == email }), nil
}

func (m *memUsers) GetByVerificationToken(_ context.Context, tok string) (*models.User, error) {
	if tok == "" {
		return nil, nil
	}
	return m.find(func(u *models.User) bool { return u.VerificationToken == tok }), nil
}

func (m *memUsers) MarkVerified(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsVerified = true
	u.VerificationToken = ""
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

type sentMail struct {
	mu   sync.Mutex
	msgs []mailer.Message
	err  error
}

func (s *sentMail) Send(_ context.Context, m mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, m)
	return s.err
}

type memPosts struct {
	created []*models.Post
	err     error
}

func (m *memPosts) Create(_ context.Context, p *models.Post) error {
	if m.err != nil {
		return m.err
	}
	p.ID = fmt.Sprintf("p%d", len(m.created)+1)
	m.created = append(m.created, p)
	return nil
}

func (m *memPosts) Get(context.Context, string) (*models.Post, error) { return nil, nil }

func (m *memPosts) List(context.Context, int, int) ([]models.Post, error) { return nil, nil }

func (m *memPosts) ToggleLike(context.Context, string, string) (bool, int, error) {
	return true, 1, nil
}

func (m *memPosts) AddComment(_ context.Context, postID, userID, text string) (*models.PostComment, error) {
	return &models.PostComment{ID: "c1", PostID: postID, UserID: userID, Text: text}, nil
}

type memStore struct {
	saved   map[string]string
	deleted []string
	failOn  string // Save fails for this file name
}

func (m *memStore) Save(_ context.Context, folder, filename, _ string, body io.Reader) (string, error) {
	if filename == m.failOn {
		return "", fmt.Errorf("disk full")
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if m.saved == nil {
		m.saved = map[string]string{}
	}
	url := "/uploads/" + folder + "/" + filename
	m.saved[url] = string(b)
	return url, nil
}

func (m *memStore) Delete(_ context.Context, url string) error {
	m.deleted = append(m.deleted, url)
	delete(m.saved, url)
	return nil
}
