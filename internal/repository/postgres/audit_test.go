package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/arklim/social-platform-auth/internal/core/domain"
)

func TestAuditRepository_Append(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAuditRepository(mock)

	actor := "user-1"
	createdAt := time.Now().UTC()
	entry := domain.AuditEntry{
		ID:        "audit-1",
		ActorID:   &actor,
		Action:    domain.AuditLoginSuccess,
		Detail:    map[string]any{"ip": "203.0.113.7"},
		CreatedAt: createdAt,
	}

	detailJSON, err := json.Marshal(entry.Detail)
	if err != nil {
		t.Fatalf("marshal detail: %v", err)
	}

	mock.ExpectExec(`INSERT INTO auth\.audit_log`).
		WithArgs(entry.ID, actor, entry.Action, detailJSON, entry.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Append(context.Background(), entry); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuditRepository_AppendWithoutActor(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAuditRepository(mock)

	entry := domain.AuditEntry{
		ID:        "audit-2",
		Action:    domain.AuditLoginFail,
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec(`INSERT INTO auth\.audit_log`).
		WithArgs(entry.ID, nil, entry.Action, nil, entry.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Append(context.Background(), entry); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuditRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAuditRepository(mock)

	now := time.Now().UTC()
	detail := []byte(`{"ip":"203.0.113.7"}`)

	rows := pgxmock.NewRows([]string{"id", "actor_id", "email", "action", "detail", "created_at"}).
		AddRow("audit-2", "user-1", "alice@example.com", domain.AuditAction("LOGIN_SUCCESS"), detail, now).
		AddRow("audit-1", nil, nil, domain.AuditAction("LOGIN_FAIL"), nil, now.Add(-time.Minute))

	mock.ExpectQuery(`SELECT .*FROM auth\.audit_log a LEFT JOIN auth\.users u`).
		WillReturnRows(rows)

	entries, err := repo.List(context.Background(), 50)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected two entries, got %d", len(entries))
	}

	first := entries[0]
	if first.ActorID == nil || *first.ActorID != "user-1" {
		t.Fatalf("expected actor user-1")
	}
	if first.ActorEmail == nil || *first.ActorEmail != "alice@example.com" {
		t.Fatalf("expected joined actor email")
	}
	if first.Detail["ip"] != "203.0.113.7" {
		t.Fatalf("expected decoded detail, got %v", first.Detail)
	}

	second := entries[1]
	if second.ActorID != nil || second.ActorEmail != nil {
		t.Fatalf("expected anonymous entry for audit-1")
	}
	if second.Detail != nil {
		t.Fatalf("expected nil detail for audit-1, got %v", second.Detail)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
