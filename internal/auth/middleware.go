package auth

import (
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"accredia/internal/models"
)

// SessionAuth validates the bearer token and checks its jti against a live
// session row. Revoked and expired sessions are rejected even when the JWT
// itself is still within its validity window.
func SessionAuth(db *gorm.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				unauthorized(w, "missing bearer token")
				return
			}
			claims, err := Verify(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}
			var sess models.Session
			if claims.JWTID == "" || db.First(&sess, "jti = ?", claims.JWTID).Error != nil {
				unauthorized(w, "session not found")
				return
			}
			if sess.RevokedAt != nil || time.Now().After(sess.ExpiresAt) {
				unauthorized(w, "session expired or revoked")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
