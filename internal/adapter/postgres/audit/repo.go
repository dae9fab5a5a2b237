// Package audit stores the append-only audit_log table.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/mla/planning-backend/internal/adapter/postgres"
	"github.com/mla/planning-backend/internal/domain"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

var columns = []string{"id", "user_id", "entity_type", "entity_id", "action", "changes", "created_at"}

type Repo struct {
	pool *pgxpool.Pool
	psql sq.StatementBuilderType
}

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{
		pool: pool,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Log appends a record. ID and CreatedAt are generated when zero and a nil
// Changes map is stored as {}.
func (r *Repo) Log(ctx context.Context, rec domain.AuditRecord) error {
	_, err := r.Create(ctx, rec)
	return err
}

// Create is Log returning the stored row.
func (r *Repo) Create(ctx context.Context, rec domain.AuditRecord) (domain.AuditRecord, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.Changes == nil {
		rec.Changes = map[string]any{}
	}
	payload, err := json.Marshal(rec.Changes)
	if err != nil {
		return domain.AuditRecord{}, fmt.Errorf("audit %s %s: encode changes: %w", rec.EntityType, rec.Action, err)
	}

	query, args, err := r.psql.Insert("audit_log").
		Columns(columns...).
		Values(rec.ID, optionalUUID(rec.UserID), string(rec.EntityType), optionalUUID(rec.EntityID),
			string(rec.Action), payload, rec.CreatedAt).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return domain.AuditRecord{}, fmt.Errorf("build audit insert: %w", err)
	}

	stored, err := scanRecord(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return domain.AuditRecord{}, postgres.MapError(err, "audit_record", rec.ID)
	}
	return stored, nil
}

// GetByEntity returns the records of one entity, newest first. limit is
// clamped to [1, 500] with 50 as the default.
func (r *Repo) GetByEntity(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID, limit int) ([]domain.AuditRecord, error) {
	switch {
	case limit <= 0:
		limit = defaultLimit
	case limit > maxLimit:
		limit = maxLimit
	}

	b := r.psql.Select(columns...).
		From("audit_log").
		Where(sq.Eq{"entity_type": string(entityType), "entity_id": entityID}).
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit))

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build audit query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AuditRecord, error) {
		return scanRecord(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	if records == nil {
		records = []domain.AuditRecord{}
	}
	return records, nil
}

func scanRecord(row pgx.Row) (domain.AuditRecord, error) {
	var (
		rec              domain.AuditRecord
		user, entity     pgtype.UUID
		entityType, verb string
		payload          []byte
	)
	if err := row.Scan(&rec.ID, &user, &entityType, &entity, &verb, &payload, &rec.CreatedAt); err != nil {
		return domain.AuditRecord{}, err
	}
	rec.EntityType = domain.EntityType(entityType)
	rec.Action = domain.AuditAction(verb)
	rec.UserID = uuidOrNil(user)
	rec.EntityID = uuidOrNil(entity)
	rec.CreatedAt = rec.CreatedAt.UTC()

	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &rec.Changes); err != nil {
			return domain.AuditRecord{}, fmt.Errorf("audit %s: decode changes: %w", rec.ID, err)
		}
	}
	return rec, nil
}

func optionalUUID(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: *id, Valid: true}
}

func uuidOrNil(v pgtype.UUID) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	id := uuid.UUID(v.Bytes)
	return &id
}
