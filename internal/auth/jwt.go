package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// sessionTTL is how long a minted session stays valid. Defaults to 30 days.
func sessionTTL() time.Duration {
	if s := os.Getenv("SESSION_TTL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return 30 * 24 * time.Hour
}

// Sign mints an HS256 session token for the user. The returned jti must be
// persisted as a Session row so tokens can be revoked server-side.
func Sign(userID, email string) (token, jti string, expiresAt time.Time, err error) {
	key := []byte(os.Getenv("JWT_SECRET"))
	jti = uuid.NewString()
	expiresAt = time.Now().Add(sessionTTL())
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"jti":   jti,
		"exp":   expiresAt.Unix(),
		"iat":   time.Now().Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = tok.SignedString(key)
	return token, jti, expiresAt, err
}

func Verify(tokenStr string) (Claims, error) {
	key := []byte(os.Getenv("JWT_SECRET"))
	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid {
		return Claims{}, errors.New("invalid token")
	}
	mapc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("invalid claims")
	}
	sub, _ := mapc["sub"].(string)
	email, _ := mapc["email"].(string)
	jti, _ := mapc["jti"].(string)
	return Claims{Subject: sub, Email: email, JWTID: jti}, nil
}
