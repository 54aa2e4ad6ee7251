package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestHashLinkToken(t *testing.T) {
	a := HashLinkToken("token-one")
	b := HashLinkToken("token-one")
	if a != b {
		t.Fatalf("hash not deterministic: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if a == HashLinkToken("token-two") {
		t.Fatal("distinct tokens must not collide")
	}
}

func TestMagicLinkTTLWindow(t *testing.T) {
	t.Setenv("MAGIC_LINK_TTL", "")
	if got := magicLinkTTL(); got != 30*time.Minute {
		t.Fatalf("default ttl = %v, want 30m", got)
	}
	t.Setenv("MAGIC_LINK_TTL", "10m")
	if got := magicLinkTTL(); got != 10*time.Minute {
		t.Fatalf("ttl = %v, want 10m", got)
	}
	t.Setenv("MAGIC_LINK_TTL", "bogus")
	if got := magicLinkTTL(); got != 30*time.Minute {
		t.Fatalf("ttl with invalid env = %v, want 30m fallback", got)
	}
}

func linkRow(email string, expiresAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"token_hash", "email", "expires_at", "consumed_at", "created_at"}).
		AddRow(HashLinkToken("raw-token"), email, expiresAt, nil, time.Now())
}

func TestConsumeMagicLink(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "magic_links" WHERE token_hash = .+`).
		WillReturnRows(linkRow("user@example.com", time.Now().Add(10*time.Minute)))
	mock.ExpectExec(`UPDATE "magic_links" SET "consumed_at"=.+ WHERE token_hash = .+ AND consumed_at IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	email, err := ConsumeMagicLink(db, "raw-token")
	if err != nil {
		t.Fatalf("ConsumeMagicLink: %v", err)
	}
	if email != "user@example.com" {
		t.Fatalf("email = %s, want user@example.com", email)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// Two verifications racing on one link: the loser's conditional update
// matches zero rows and the link stays consumed exactly once.
func TestConsumeMagicLinkLosesRace(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "magic_links" WHERE token_hash = .+`).
		WillReturnRows(linkRow("user@example.com", time.Now().Add(10*time.Minute)))
	mock.ExpectExec(`UPDATE "magic_links" SET "consumed_at"=.+ WHERE token_hash = .+ AND consumed_at IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if _, err := ConsumeMagicLink(db, "raw-token"); !errors.Is(err, ErrLinkInvalid) {
		t.Fatalf("expected ErrLinkInvalid, got %v", err)
	}
}

// An expired link is rejected before the consume update is attempted.
func TestConsumeMagicLinkExpired(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "magic_links" WHERE token_hash = .+`).
		WillReturnRows(linkRow("user@example.com", time.Now().Add(-time.Minute)))

	if _, err := ConsumeMagicLink(db, "raw-token"); !errors.Is(err, ErrLinkInvalid) {
		t.Fatalf("expected ErrLinkInvalid, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected database activity: %v", err)
	}
}

func TestConsumeMagicLinkUnknownToken(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "magic_links" WHERE token_hash = .+`).
		WillReturnRows(sqlmock.NewRows([]string{"token_hash", "email", "expires_at", "consumed_at", "created_at"}))

	if _, err := ConsumeMagicLink(db, "no-such-token"); !errors.Is(err, ErrLinkInvalid) {
		t.Fatalf("expected ErrLinkInvalid, got %v", err)
	}
}
