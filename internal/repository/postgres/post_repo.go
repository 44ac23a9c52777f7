package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"civic-backend/internal/models"
	"civic-backend/internal/repository"
)

const postSelect = `
	SELECT
		p.id, p.user_id, p.description, p.voice_msg, p.media, p.longitude, p.latitude,
		p.created_at, p.updated_at,
		u.username, u.email,
		COALESCE((SELECT array_agg(l.user_id::text ORDER BY l.created_at) FROM post_likes l WHERE l.post_id = p.id), '{}')
	FROM posts p
	JOIN users u ON u.id = p.user_id`

type PostRepo struct{ db *pgxpool.Pool }

func NewPostRepo(db *pgxpool.Pool) repository.PostRepository { return &PostRepo{db: db} }

func scanPost(row pgx.Row) (*models.Post, error) {
	var (
		p        models.Post
		a        models.Author
		lng, lat float64
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.Description, &p.VoiceMsg, &p.Media, &lng, &lat,
		&p.CreatedAt, &p.UpdatedAt, &a.Username, &a.Email, &p.Likes,
	)
	if err != nil {
		return nil, err
	}
	a.ID = p.UserID
	p.Author = &a
	p.Location = models.NewGeoPoint(lat, lng)
	if p.Media == nil {
		p.Media = []string{}
	}
	if p.Likes == nil {
		p.Likes = []string{}
	}
	p.Comments = []models.PostComment{}
	return &p, nil
}

func (r *PostRepo) Create(ctx context.Context, p *models.Post) error {
	if p.Media == nil {
		p.Media = []string{}
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO posts (user_id, description, voice_msg, media, longitude, latitude)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at, updated_at`,
		p.UserID, p.Description, p.VoiceMsg, p.Media, p.Location.Lng(), p.Location.Lat(),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return mapWriteErr(err)
	}
	p.Likes = []string{}
	p.Comments = []models.PostComment{}
	return nil
}

// Get loads a post with its author, likes and comments.
func (r *PostRepo) Get(ctx context.Context, id string) (*models.Post, error) {
	p, err := scanPost(r.db.QueryRow(ctx, postSelect+` WHERE p.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) || isBadID(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.post_id, c.user_id, u.username, c.text, c.created_at
		FROM post_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c models.PostComment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Username, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		p.Comments = append(p.Comments, c)
	}
	return p, rows.Err()
}

// List returns posts newest first with authors populated; comments are only
// loaded by Get.
func (r *PostRepo) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	rows, err := r.db.Query(ctx, postSelect+`
		ORDER BY p.created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PostRepo) ToggleLike(ctx context.Context, postID, userID string) (bool, int, error) {
	var (
		liked bool
		count int
	)
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			if _, err := tx.Exec(ctx, `INSERT INTO post_likes (post_id, user_id) VALUES ($1,$2)`, postID, userID); err != nil {
				return err
			}
			liked = true
		}
		return tx.QueryRow(ctx, `SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID).Scan(&count)
	})
	if err != nil {
		return false, 0, mapWriteErr(err)
	}
	return liked, count, nil
}

func (r *PostRepo) AddComment(ctx context.Context, postID, userID, text string) (*models.PostComment, error) {
	var c models.PostComment
	err := r.db.QueryRow(ctx, `
		WITH c AS (
			INSERT INTO post_comments (post_id, user_id, text)
			VALUES ($1,$2,$3)
			RETURNING id, post_id, user_id, text, created_at
		)
		SELECT c.id, c.post_id, c.user_id, u.username, c.text, c.created_at
		FROM c JOIN users u ON u.id = c.user_id
	`, postID, userID, text).Scan(&c.ID, &c.PostID, &c.UserID, &c.Username, &c.Text, &c.CreatedAt)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	return &c, nil
}
