package review

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"accredia/internal/auth"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn, PreferSimpleProtocol: true}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return db, mock
}

func linkOrgRows(pairs ...any) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "org_id"})
	for i := 0; i < len(pairs); i += 2 {
		rows.AddRow(pairs[i], pairs[i+1])
	}
	return rows
}

func expectContributor(mock sqlmock.Sqlmock, userID, orgID string) {
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = .+`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(userID, "reviewer@example.com"))
	mock.ExpectQuery(`SELECT \* FROM "memberships" WHERE user_id = .+ AND org_id = .+`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "org_id", "role"}).
			AddRow(1, userID, orgID, "CONTRIBUTOR"))
}

// Empty batches must return an empty result without any database access:
// the nil db proves no query is issued.
func TestReviewEmptyBatches(t *testing.T) {
	updated, err := Review(nil, "anyone@example.com", nil, nil)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if len(updated) != 0 {
		t.Fatalf("expected empty result, got %v", updated)
	}
	if updated == nil {
		t.Fatal("expected non-nil empty slice")
	}
}

// Links spanning two organizations must be rejected before any authorization
// check or mutation.
func TestReviewMixedOrgsRejected(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT evidence_links\.id, documents\.org_id FROM "evidence_links" JOIN documents`).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(linkOrgRows(int64(1), "org-a", int64(2), "org-b"))

	_, err := Review(db, "reviewer@example.com", []int64{1}, []int64{2})
	if !errors.Is(err, auth.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected database activity: %v", err)
	}
}

func TestReviewMissingLinks(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT evidence_links\.id, documents\.org_id FROM "evidence_links" JOIN documents`).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(linkOrgRows(int64(1), "org-a"))

	_, err := Review(db, "reviewer@example.com", []int64{1, 2}, nil)
	if !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// Confirming N links writes exactly one audit entry whose meta.count is N:
// the commit expectation fails if a second entry is inserted.
func TestReviewConfirmAuditCount(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT evidence_links\.id, documents\.org_id FROM "evidence_links" JOIN documents`).
		WithArgs(int64(10), int64(20), int64(30)).
		WillReturnRows(linkOrgRows(int64(10), "org-1", int64(20), "org-1", int64(30), "org-1"))
	expectContributor(mock, "u-1", "org-1")
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "evidence_links" SET`).
		WithArgs("CONFIRMED", sqlmock.AnyArg(), int64(10), int64(20), int64(30)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery(`INSERT INTO "audit_logs"`).
		WithArgs("org-1", "u-1", "EVIDENCE_CONFIRM", "evidence_links",
			sqlmock.AnyArg(), datatypes.JSON(`{"count":3}`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	updated, err := Review(db, "reviewer@example.com", []int64{10, 20, 30}, nil)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if len(updated) != 3 {
		t.Fatalf("updated = %d links, want 3", len(updated))
	}
	for _, u := range updated {
		if u.Status != "CONFIRMED" {
			t.Fatalf("unexpected status: %+v", u)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// Duplicate ids within a batch count once: confirm [5,5] updates one row and
// audits count 1. The WithArgs assertions fail if the duplicate survives.
func TestReviewDuplicateIDsCountOnce(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT evidence_links\.id, documents\.org_id FROM "evidence_links" JOIN documents`).
		WithArgs(int64(5)).
		WillReturnRows(linkOrgRows(int64(5), "org-1"))
	expectContributor(mock, "u-1", "org-1")
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "evidence_links" SET`).
		WithArgs("CONFIRMED", sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "audit_logs"`).
		WithArgs("org-1", "u-1", "EVIDENCE_CONFIRM", "evidence_links",
			sqlmock.AnyArg(), datatypes.JSON(`{"count":1}`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	updated, err := Review(db, "reviewer@example.com", []int64{5, 5}, nil)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if len(updated) != 1 {
		t.Fatalf("updated = %d links, want 1", len(updated))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDedupe(t *testing.T) {
	got := dedupe([]int64{3, 1, 3, 2, 1})
	want := []int64{3, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("dedupe = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dedupe = %v, want %v", got, want)
		}
	}
}
