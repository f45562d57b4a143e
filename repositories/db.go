package repositories

import (
	"context"
	"errors"

	"farmconnect/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool the repositories use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgInvalidText         = "22P02"
)

// translate maps driver errors onto the model error kinds. what names the
// record for the error message.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return models.NotFoundf("%s not found", what)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return errors.Join(models.ErrDuplicate, err)
		case pgForeignKeyViolation:
			return models.NotFoundf("%s references a missing record", what)
		case pgCheckViolation:
			return models.Validationf("%s violates %s", what, pgErr.ConstraintName)
		case pgInvalidText:
			// malformed uuid in a lookup
			return models.NotFoundf("%s not found", what)
		}
	}
	return err
}
