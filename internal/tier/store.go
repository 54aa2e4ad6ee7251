package tier

import (
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"accredia/internal/models"
)

// Store maps a user email to their billing tier. The interface exists so
// handlers never touch a package-level singleton: production wires the gorm
// implementation, tests wire the in-memory one.
type Store interface {
	Upsert(email, tier string) error
	Get(email string) (string, bool)
	List() ([]models.UserTier, error)
}

// Memory is the map-backed Store used in tests.
type Memory struct {
	mu    sync.Mutex
	tiers map[string]string
}

func NewMemory() *Memory {
	return &Memory{tiers: map[string]string{}}
}

func (s *Memory) Upsert(email, tier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiers[email] = tier
	return nil
}

func (s *Memory) Get(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tiers[email]
	return t, ok
}

func (s *Memory) List() ([]models.UserTier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.UserTier, 0, len(s.tiers))
	for email, t := range s.tiers {
		out = append(out, models.UserTier{Email: email, Tier: t})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

// Clear empties the store between tests.
func (s *Memory) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiers = map[string]string{}
}

type gormStore struct {
	db *gorm.DB
}

// NewGorm returns the database-backed Store used in production.
func NewGorm(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Upsert(email, tier string) error {
	row := models.UserTier{Email: email, Tier: tier, UpdatedAt: time.Now()}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"tier", "updated_at"}),
	}).Create(&row).Error
}

func (s *gormStore) Get(email string) (string, bool) {
	var row models.UserTier
	if err := s.db.First(&row, "email = ?", email).Error; err != nil {
		return "", false
	}
	return row.Tier, true
}

func (s *gormStore) List() ([]models.UserTier, error) {
	var rows []models.UserTier
	err := s.db.Order("email asc").Find(&rows).Error
	return rows, err
}
