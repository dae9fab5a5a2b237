package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mla/planning-backend/internal/domain"
)

// SQLSTATE codes the repositories translate.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeNotNullViolation     = "23502"
	codeExclusionViolation   = "23P01"
	codeInvalidText          = "22P02"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

var sqlStateSentinels = map[string]error{
	codeUniqueViolation:      domain.ErrAlreadyExists,
	codeForeignKeyViolation:  domain.ErrNotFound,
	codeCheckViolation:       domain.ErrValidation,
	codeNotNullViolation:     domain.ErrValidation,
	codeInvalidText:          domain.ErrValidation,
	codeExclusionViolation:   domain.ErrConflict,
	codeSerializationFailure: domain.ErrConflict,
	codeDeadlockDetected:     domain.ErrConflict,
}

// MapError labels err with the entity and translates driver errors into
// domain sentinels. A missing row and a dangling foreign key both become
// domain.ErrNotFound. Context errors and unknown failures keep their chain.
// uuid.Nil is left out of the message.
func MapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	label := entity
	if id != uuid.Nil {
		label = fmt.Sprintf("%s %s", entity, id)
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", label, err)
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%s: %w", label, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if sentinel, ok := sqlStateSentinels[pgErr.Code]; ok {
			if pgErr.ConstraintName != "" {
				return fmt.Errorf("%s (%s): %w", label, pgErr.ConstraintName, sentinel)
			}
			return fmt.Errorf("%s: %w", label, sentinel)
		}
	}
	return fmt.Errorf("%s: %w", label, err)
}
