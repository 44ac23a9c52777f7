package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"civic-backend/internal/models"
	"civic-backend/internal/repository"
)

const complaintCols = `
	id, complaint_id, phone_number, recording_url, description, status, priority, category,
	COALESCE(assigned_to::text, ''), notes, created_at, updated_at`

type ComplaintRepo struct {
	db    *pgxpool.Pool
	newID func() string
}

// NewComplaintRepo returns a complaint store; newID mints complaint IDs for
// records created without one.
func NewComplaintRepo(db *pgxpool.Pool, newID func() string) *ComplaintRepo {
	return &ComplaintRepo{db: db, newID: newID}
}

func scanComplaint(row pgx.Row) (*models.Complaint, error) {
	var c models.Complaint
	err := row.Scan(
		&c.ID, &c.ComplaintID, &c.PhoneNumber, &c.RecordingURL, &c.Description,
		&c.Status, &c.Priority, &c.Category, &c.AssignedTo, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if c.Notes == nil {
		c.Notes = []string{}
	}
	return &c, nil
}

func (r *ComplaintRepo) Create(ctx context.Context, c *models.Complaint) error {
	c.PrepareCreate(r.newID)
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrInvalid, err)
	}
	now := time.Now()
	err := r.db.QueryRow(ctx, `
		INSERT INTO complaints
			(complaint_id, phone_number, recording_url, description, status, priority, category,
			 assigned_to, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7, NULLIF($8::text, '')::uuid, $9, $10, $10)
		RETURNING id, created_at, updated_at
	`,
		c.ComplaintID, c.PhoneNumber, c.RecordingURL, c.Description,
		string(c.Status), string(c.Priority), string(c.Category), c.AssignedTo, c.Notes, now,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapWriteErr(err)
}

func (r *ComplaintRepo) FindByComplaintID(ctx context.Context, complaintID string) (*models.Complaint, error) {
	c, err := scanComplaint(r.db.QueryRow(ctx,
		`SELECT `+complaintCols+` FROM complaints WHERE complaint_id = $1`, complaintID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *ComplaintRepo) UpdateStatus(ctx context.Context, complaintID string, status models.ComplaintStatus, note string) (*models.Complaint, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: status %q", repository.ErrInvalid, status)
	}
	// array_append only when a note was supplied; notes are never rewritten.
	c, err := scanComplaint(r.db.QueryRow(ctx, `
		UPDATE complaints SET
			status = $1,
			notes = CASE WHEN $2::text = '' THEN notes ELSE array_append(notes, $2::text) END,
			updated_at = now()
		WHERE complaint_id = $3
		RETURNING `+complaintCols,
		string(status), strings.TrimSpace(note), complaintID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

// List returns complaints newest first.
func (r *ComplaintRepo) List(ctx context.Context, f repository.ComplaintFilter) ([]models.Complaint, error) {
	f = f.Normalize()
	whereSQL, args := buildComplaintWhere(f)
	args = append(args, f.Limit, f.Offset)

	sql := fmt.Sprintf(`
		SELECT %s
		FROM complaints
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, complaintCols, whereSQL, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Count returns the total for the same filter set (for pagination).
func (r *ComplaintRepo) Count(ctx context.Context, f repository.ComplaintFilter) (int, error) {
	whereSQL, args := buildComplaintWhere(f.Normalize())
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM complaints `+whereSQL, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *ComplaintRepo) Summary(ctx context.Context, resolvedSince time.Time) (repository.ComplaintSummary, error) {
	var s repository.ComplaintSummary
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status IN ('pending','in-progress')),
			COUNT(*) FILTER (WHERE status IN ('resolved','closed') AND updated_at >= $1),
			COUNT(*) FILTER (WHERE status IN ('pending','in-progress') AND priority IN ('high','urgent'))
		FROM complaints
	`, resolvedSince).Scan(&s.Open, &s.Resolved7d, &s.UrgentOpen)
	return s, err
}

// buildComplaintWhere composes the WHERE clause and args for list filters.
func buildComplaintWhere(f repository.ComplaintFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if f.Q != "" {
		p := containsPattern(f.Q)
		args = append(args, p, p)
		clauses = append(clauses, "(phone_number ILIKE $"+itoa(len(args)-1)+" OR description ILIKE $"+itoa(len(args))+")")
	}
	if f.Status != "" {
		args = append(args, f.Status)
		clauses = append(clauses, "status = $"+itoa(len(args)))
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		clauses = append(clauses, "priority = $"+itoa(len(args)))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		clauses = append(clauses, "category = $"+itoa(len(args)))
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}
