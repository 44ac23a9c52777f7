package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"civic-backend/internal/repository"
)

func TestMapWriteErr(t *testing.T) {
	other := errors.New("connection reset")
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"unique violation", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "complaints_complaint_id_key"}, repository.ErrDuplicate},
		{"wrapped unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), repository.ErrDuplicate},
		{"foreign key", &pgconn.PgError{Code: "23503"}, repository.ErrNotFound},
		{"bad uuid", &pgconn.PgError{Code: "22P02"}, repository.ErrNotFound},
		{"other pg error", &pgconn.PgError{Code: "40001"}, nil},
		{"not a pg error", other, other},
		{"no rows", pgx.ErrNoRows, pgx.ErrNoRows},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapWriteErr(tt.in)
			if tt.want == nil {
				assert.Equal(t, tt.in, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestIsBadID(t *testing.T) {
	assert.True(t, isBadID(&pgconn.PgError{Code: pgInvalidText}))
	assert.False(t, isBadID(&pgconn.PgError{Code: pgUniqueViolation}))
	assert.False(t, isBadID(errors.New("boom")))
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty("  "))
	assert.Equal(t, "tok", nullIfEmpty("tok"))
}
