package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"accredia/internal/auth"
	"accredia/internal/httpserver"
	"accredia/internal/logger"
	"accredia/internal/mailer"
	"accredia/internal/models"
	"accredia/internal/objstore"
	"accredia/internal/tier"
)

func main() {
	_ = godotenv.Load()
	lg := logger.New()
	defer lg.Sync()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		lg.Fatalw("DATABASE_URL is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	if err := db.AutoMigrate(
		&models.Organization{}, &models.User{}, &models.Membership{},
		&models.Document{}, &models.DocumentVersion{}, &models.DocumentText{},
		&models.Standard{}, &models.StandardItem{}, &models.EvidenceLink{},
		&models.GapRun{}, &models.NarrativeRun{}, &models.AuditLog{},
		&models.Session{}, &models.MagicLink{}, &models.UserTier{},
	); err != nil {
		lg.Fatalw("automigrate failed", "error", err)
	}
	migrateSearchVector(db, lg)
	seedAdmin(db, lg)

	store, err := objstore.NewFromEnv()
	if err != nil {
		lg.Fatalw("object storage connect failed", "error", err)
	}
	tiers := tier.NewGorm(db)
	mail := mailer.NewFromEnv(lg)

	router := httpserver.NewRouter(db, store, tiers, mail, lg)
	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}
	lg.Infow("listening", "port", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatal(err)
	}
}

// migrateSearchVector adds the tsvector column and GIN index that
// AutoMigrate cannot express.
func migrateSearchVector(db *gorm.DB, lg *zap.SugaredLogger) {
	stmts := []string{
		"ALTER TABLE document_texts ADD COLUMN IF NOT EXISTS search_vector tsvector",
		"CREATE INDEX IF NOT EXISTS idx_document_texts_search ON document_texts USING GIN (search_vector)",
	}
	for _, s := range stmts {
		if err := db.Exec(s).Error; err != nil {
			lg.Fatalw("search vector migration failed", "error", err)
		}
	}
}

// seedAdmin creates the ops admin with an OWNER membership in a demo
// organization so a fresh deployment is usable immediately.
func seedAdmin(db *gorm.DB, lg *zap.SugaredLogger) {
	email := strings.ToLower("admin@accredia.local")
	var count int64
	db.Model(&models.User{}).Where("LOWER(email) = ?", email).Count(&count)
	if count > 0 {
		return
	}
	pw := os.Getenv("ADMIN_PASSWORD")
	if pw == "" {
		pw = "1234"
	}
	hash, _ := auth.HashPassword(pw)
	u := models.User{Email: email, PasswordHash: &hash, IsActive: true, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := db.Create(&u).Error; err != nil {
		lg.Errorw("seed admin failed", "error", err)
		return
	}
	org := models.Organization{Name: "Demo Organization"}
	if err := db.Create(&org).Error; err == nil {
		_ = db.Create(&models.Membership{UserID: u.ID, OrgID: org.ID, Role: models.RoleOwner}).Error
	}
	lg.Infow("seeded default admin", "email", email)
}
