package postgres

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"civic-backend/internal/repository"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidText         = "22P02"
)

// mapWriteErr turns constraint violations into repository sentinels.
func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return repository.ErrDuplicate
		case pgForeignKeyViolation, pgInvalidText:
			return repository.ErrNotFound
		}
	}
	return err
}

// isBadID reports whether postgres rejected an id that is not a uuid.
func isBadID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidText
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s literally anywhere in
// the value; backslash is the default LIKE escape.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// small helper to avoid fmt for performance-sensitive path.
func itoa(i int) string { return strconv.Itoa(i) }
