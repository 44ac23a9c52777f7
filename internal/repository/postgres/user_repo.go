package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"civic-backend/internal/models"
	"civic-backend/internal/repository"
)

const userCols = `
	id, username, email, password_h, role, is_verified, COALESCE(verification_token, ''),
	name, age, dob, phone, bio, profile_pic, created_at, updated_at`

type UserRepo struct{ db *pgxpool.Pool }

func NewUserRepo(db *pgxpool.Pool) repository.UserRepository { return &UserRepo{db: db} }

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsVerified, &u.VerificationToken,
		&u.Name, &u.Age, &u.DOB, &u.Phone, &u.Bio, &u.ProfilePic, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isBadID(err) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Create stores a new user (bcrypt hash in password_h).
func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	if u.Role == "" {
		u.Role = models.RoleCitizen
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (username, email, password_h, role, is_verified, verification_token)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at, updated_at`,
		u.Username, strings.ToLower(u.Email), u.PasswordHash, u.Role, u.IsVerified, nullIfEmpty(u.VerificationToken),
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return mapWriteErr(err)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE email = $1`, strings.ToLower(strings.TrimSpace(email))))
}

func (r *UserRepo) GetByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE verification_token = $1`, token))
}

func (r *UserRepo) MarkVerified(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `
		UPDATE users SET is_verified = true, verification_token = NULL, updated_at = now()
		WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id string, p models.ProfileUpdate) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		UPDATE users SET
			name = $1, age = $2, dob = $3, phone = $4, bio = $5,
			profile_pic = COALESCE($6, profile_pic),
			updated_at = now()
		WHERE id = $7
		RETURNING `+userCols,
		p.Name, p.Age, p.DOB, p.Phone, p.Bio, p.ProfilePic, id,
	))
}

func (r *UserRepo) UpdateRole(ctx context.Context, id, role string) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		UPDATE users SET role = $1, updated_at = now()
		WHERE id = $2
		RETURNING `+userCols, role, id))
}
