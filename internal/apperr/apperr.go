// Package apperr holds the error kinds shared by every layer. Packages wrap
// these with their own sentinels so callers can test the kind with errors.Is.
package apperr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation error")
)

// Postgres SQLSTATE codes we translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidText         = "22P02"
)

// FromPG translates unique and foreign-key violations into Conflict and
// NotFound, and malformed input such as a bad UUID into Validation. Any other
// error is returned unchanged.
func FromPG(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return errors.Join(ErrConflict, err)
	case pgForeignKeyViolation:
		return errors.Join(ErrNotFound, err)
	case pgInvalidText:
		return errors.Join(ErrValidation, err)
	}
	return err
}
