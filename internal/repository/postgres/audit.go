package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/arklim/social-platform-auth/internal/core/domain"
)

// AuditRepository implements port.AuditRepository using PostgreSQL.
// Entries are append-only; there is deliberately no update or delete.
type AuditRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAuditRepository wires a PostgreSQL-backed audit repository.
func NewAuditRepository(exec pgExecutor) *AuditRepository {
	return &AuditRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Append inserts an audit entry.
func (r *AuditRepository) Append(ctx context.Context, entry domain.AuditEntry) error {
	var actorValue any
	if entry.ActorID != nil && *entry.ActorID != "" {
		actorValue = *entry.ActorID
	}

	var detailValue any
	if len(entry.Detail) > 0 {
		raw, err := json.Marshal(entry.Detail)
		if err != nil {
			return fmt.Errorf("marshal audit detail: %w", err)
		}
		detailValue = raw
	}

	stmt, args, err := r.builder.Insert("auth.audit_log").
		Columns("id", "actor_id", "action", "detail", "created_at").
		Values(entry.ID, actorValue, entry.Action, detailValue, entry.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert audit entry sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	return nil
}

// List returns the most recent entries, newest first, joined with the actor's
// email when the actor still exists.
func (r *AuditRepository) List(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	stmt, args, err := r.builder.
		Select(
			"a.id",
			"a.actor_id",
			"u.email",
			"a.action",
			"a.detail",
			"a.created_at",
		).
		From("auth.audit_log a").
		LeftJoin("auth.users u ON u.id = a.actor_id").
		OrderBy("a.created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list audit entries sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var (
			entry      domain.AuditEntry
			actorID    sql.NullString
			actorEmail sql.NullString
			detail     []byte
		)

		if err := rows.Scan(
			&entry.ID,
			&actorID,
			&actorEmail,
			&entry.Action,
			&detail,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}

		if actorID.Valid {
			val := actorID.String
			entry.ActorID = &val
		}
		if actorEmail.Valid {
			val := actorEmail.String
			entry.ActorEmail = &val
		}
		if len(detail) > 0 {
			if err := json.Unmarshal(detail, &entry.Detail); err != nil {
				return nil, fmt.Errorf("unmarshal audit detail: %w", err)
			}
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit rows: %w", err)
	}

	return entries, nil
}
