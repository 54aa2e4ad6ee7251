package auth

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"accredia/internal/models"
)

var (
	// ErrForbidden covers both "no membership" and "insufficient role";
	// clients see a uniform 403 either way.
	ErrForbidden = errors.New("forbidden")

	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

func roleRank(role string) int {
	switch role {
	case models.RoleViewer:
		return 0
	case models.RoleContributor:
		return 1
	case models.RoleOwner:
		return 2
	}
	return -1
}

// RoleSatisfies reports whether actual is at least as privileged as required
// under VIEWER < CONTRIBUTOR < OWNER. Unknown roles satisfy nothing.
func RoleSatisfies(actual, required string) bool {
	a, r := roleRank(actual), roleRank(required)
	if a < 0 || r < 0 {
		return false
	}
	return a >= r
}

// RequireOrgRole resolves the membership the given email holds in orgID and
// fails with ErrForbidden unless its role satisfies minRole.
func RequireOrgRole(db *gorm.DB, email, orgID, minRole string) (models.Membership, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || orgID == "" {
		return models.Membership{}, fmt.Errorf("%w: email and org id are required", ErrInvalidInput)
	}
	var u models.User
	if err := db.First(&u, "email = ?", email).Error; err != nil {
		return models.Membership{}, ErrForbidden
	}
	var m models.Membership
	if err := db.First(&m, "user_id = ? AND org_id = ?", u.ID, orgID).Error; err != nil {
		return models.Membership{}, ErrForbidden
	}
	if !RoleSatisfies(m.Role, minRole) {
		return models.Membership{}, ErrForbidden
	}
	return m, nil
}

// OrgIDsForEmail lists the organizations the user belongs to, used to scope
// search and listing queries.
func OrgIDsForEmail(db *gorm.DB, email string) ([]string, error) {
	var ids []string
	err := db.Model(&models.Membership{}).
		Joins("JOIN users ON users.id = memberships.user_id").
		Where("users.email = ?", strings.ToLower(strings.TrimSpace(email))).
		Pluck("memberships.org_id", &ids).Error
	return ids, err
}
