package handlers

import (
	"encoding/json"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"accredia/internal/auth"
	"accredia/internal/mailer"
	"accredia/internal/models"
)

// ipLimiter throttles magic-link requests per client IP.
type ipLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newIPLimiter() *ipLimiter {
	return &ipLimiter{limiters: map[string]*rate.Limiter{}}
}

func (l *ipLimiter) allow(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[host]
	if !ok {
		// 1 request per 10s with a burst of 3 per IP
		lim = rate.NewLimiter(rate.Every(10*time.Second), 3)
		l.limiters[host] = lim
	}
	return lim.Allow()
}

// RequestLink issues a magic link for the email and sends it. The response
// is 200 regardless of whether the account existed, so the endpoint cannot
// be used for account enumeration.
func RequestLink(db *gorm.DB, mail *mailer.Mailer, lg *zap.SugaredLogger) http.HandlerFunc {
	limiter := newIPLimiter()
	return func(w http.ResponseWriter, r *http.Request) {
		if !limiter.allow(r.RemoteAddr) {
			respondError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		var req struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		email := strings.TrimSpace(strings.ToLower(req.Email))
		if email == "" || !strings.Contains(email, "@") {
			respondError(w, http.StatusBadRequest, "valid email required")
			return
		}
		var u models.User
		if err := db.First(&u, "email = ?", email).Error; err != nil {
			u = models.User{Email: email, IsActive: true}
			if err := db.Create(&u).Error; err != nil {
				respondError(w, http.StatusInternalServerError, "internal error")
				return
			}
		}
		token, err := auth.IssueMagicLink(db, email)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		base := os.Getenv("APP_BASE_URL")
		if base == "" {
			base = "http://localhost:8080"
		}
		url := base + "/api/auth/verify?token=" + token
		if err := mail.SendLoginLink(email, url); err != nil {
			lg.Errorw("magic link send failed", "email", email, "error", err)
		}
		respondData(w, map[string]any{"sent": true})
	}
}

// VerifyLink exchanges a one-shot magic-link token for a session token.
func VerifyLink(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			respondError(w, http.StatusBadRequest, "token required")
			return
		}
		email, err := auth.ConsumeMagicLink(db, token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "magic link invalid or expired")
			return
		}
		var u models.User
		if err := db.First(&u, "email = ?", email).Error; err != nil {
			respondError(w, http.StatusUnauthorized, "unknown user")
			return
		}
		issueSession(w, db, lg, u)
	}
}

// Login is the password path kept for the seeded ops admin.
func Login(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		var u models.User
		if err := db.First(&u, "email = ?", strings.ToLower(strings.TrimSpace(req.Email))).Error; err != nil {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if u.PasswordHash == nil || auth.CheckPassword(*u.PasswordHash, req.Password) != nil {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		issueSession(w, db, lg, u)
	}
}

func issueSession(w http.ResponseWriter, db *gorm.DB, lg *zap.SugaredLogger, u models.User) {
	if !u.IsActive {
		respondError(w, http.StatusForbidden, "account disabled")
		return
	}
	token, jti, expiresAt, err := auth.Sign(u.ID, u.Email)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "token error")
		return
	}
	sess := models.Session{JTI: jti, UserID: u.ID, ExpiresAt: expiresAt}
	if err := db.Create(&sess).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	lg.Infow("session issued", "user", u.Email)
	respondData(w, map[string]any{"token": token, "expires_at": expiresAt})
}

// Logout revokes the current session row.
func Logout(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jti := auth.FromContext(r.Context()).JWTID
		now := time.Now()
		if err := db.Model(&models.Session{}).Where("jti = ?", jti).Update("revoked_at", &now).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		respondData(w, map[string]any{"revoked": true})
	}
}

// Me returns the caller's profile and memberships.
func Me(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.Subject(r.Context())
		var u models.User
		if err := db.First(&u, "id = ?", sub).Error; err != nil {
			respondError(w, http.StatusNotFound, "not found")
			return
		}
		var memberships []models.Membership
		_ = db.Where("user_id = ?", u.ID).Find(&memberships).Error
		respondData(w, map[string]any{
			"id": u.ID, "email": u.Email, "is_active": u.IsActive, "memberships": memberships,
		})
	}
}
