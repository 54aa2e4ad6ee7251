package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"accredia/internal/models"
)

var ErrLinkInvalid = errors.New("magic link invalid or expired")

// magicLinkTTL is the validity window of an emailed link. Defaults to 30m.
func magicLinkTTL() time.Duration {
	if s := os.Getenv("MAGIC_LINK_TTL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return 30 * time.Minute
}

// HashLinkToken is the at-rest form of a link token. Only the hash is
// stored, so a database leak does not leak live login links.
func HashLinkToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// IssueMagicLink creates a single-use login token for the email and returns
// the raw token to embed in the emailed URL.
func IssueMagicLink(db *gorm.DB, email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", ErrInvalidInput
	}
	token := uuid.NewString() + uuid.NewString()
	link := models.MagicLink{
		TokenHash: HashLinkToken(token),
		Email:     email,
		ExpiresAt: time.Now().Add(magicLinkTTL()),
		CreatedAt: time.Now(),
	}
	if err := db.Create(&link).Error; err != nil {
		return "", err
	}
	return token, nil
}

// ConsumeMagicLink validates a raw token and marks it used. A link can be
// consumed exactly once and only before its expiry. The conditional update
// keeps the one-shot invariant when two verifications race: only the one
// that flips consumed_at from NULL wins.
func ConsumeMagicLink(db *gorm.DB, token string) (string, error) {
	var link models.MagicLink
	if err := db.First(&link, "token_hash = ?", HashLinkToken(token)).Error; err != nil {
		return "", ErrLinkInvalid
	}
	if time.Now().After(link.ExpiresAt) {
		return "", ErrLinkInvalid
	}
	now := time.Now()
	res := db.Model(&models.MagicLink{}).
		Where("token_hash = ? AND consumed_at IS NULL", link.TokenHash).
		Update("consumed_at", &now)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return "", ErrLinkInvalid
	}
	return link.Email, nil
}
