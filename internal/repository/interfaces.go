package repository

import (
	"context"
	"time"

	"civic-backend/internal/models"
)

// ComplaintRepository is the complaint store. Single-row reads return
// (nil, nil) when nothing matches.
type ComplaintRepository interface {
	// Create assigns defaults (and a complaint ID when absent), validates and
	// inserts. A complaint ID collision yields ErrDuplicate.
	Create(ctx context.Context, c *models.Complaint) error
	FindByComplaintID(ctx context.Context, complaintID string) (*models.Complaint, error)
	// UpdateStatus sets the status and appends note when it is non-empty.
	UpdateStatus(ctx context.Context, complaintID string, status models.ComplaintStatus, note string) (*models.Complaint, error)
	List(ctx context.Context, f ComplaintFilter) ([]models.Complaint, error)
	Count(ctx context.Context, f ComplaintFilter) (int, error)
	Summary(ctx context.Context, resolvedSince time.Time) (ComplaintSummary, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*models.User, error)
	MarkVerified(ctx context.Context, id string) error
	UpdateProfile(ctx context.Context, id string, p models.ProfileUpdate) (*models.User, error)
	UpdateRole(ctx context.Context, id, role string) (*models.User, error)
}

type PostRepository interface {
	Create(ctx context.Context, p *models.Post) error
	Get(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]models.Post, error)
	// ToggleLike flips userID's like and reports the resulting state.
	ToggleLike(ctx context.Context, postID, userID string) (liked bool, count int, err error)
	AddComment(ctx context.Context, postID, userID, text string) (*models.PostComment, error)
}

// ComplaintSummary feeds the admin dashboard.
type ComplaintSummary struct {
	Open       int `json:"open"`
	Resolved7d int `json:"resolved7d"`
	UrgentOpen int `json:"urgentOpen"`
}
