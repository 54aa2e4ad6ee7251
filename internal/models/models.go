package models

import (
	"time"

	"gorm.io/datatypes"
)

// Membership roles, ordered VIEWER < CONTRIBUTOR < OWNER.
const (
	RoleViewer      = "VIEWER"
	RoleContributor = "CONTRIBUTOR"
	RoleOwner       = "OWNER"
)

// Evidence link review statuses.
const (
	EvidenceAuto      = "AUTO"
	EvidenceConfirmed = "CONFIRMED"
	EvidenceRejected  = "REJECTED"
)

// Narrative run statuses.
const (
	NarrativeGenerating = "GENERATING"
	NarrativeComplete   = "COMPLETE"
)

type Organization struct {
	ID        string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type User struct {
	ID           string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash *string   `json:"-"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Membership holds a user's role within one organization.
// Exactly one row per (user, org) pair.
type Membership struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_member_user_org" json:"user_id"`
	OrgID     string    `gorm:"type:uuid;not null;uniqueIndex:idx_member_user_org;index" json:"org_id"`
	Role      string    `gorm:"size:20;not null;default:VIEWER" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type Document struct {
	ID        string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrgID     string    `gorm:"type:uuid;not null;index" json:"org_id"`
	Title     string    `gorm:"not null" json:"title"`
	Mime      string    `gorm:"size:100" json:"mime"`
	Size      int64     `json:"size"`
	IsDeleted bool      `gorm:"not null;default:false;index" json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentVersion is an immutable upload record. Version starts at 1 and
// increases by one per upload against the same document.
type DocumentVersion struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	DocumentID  string    `gorm:"type:uuid;not null;uniqueIndex:idx_doc_version" json:"document_id"`
	Version     int       `gorm:"not null;uniqueIndex:idx_doc_version" json:"version"`
	StorageKey  string    `gorm:"not null" json:"storage_key"`
	Checksum    string    `gorm:"size:80;not null" json:"checksum"`
	CreatedByID string    `gorm:"type:uuid" json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// DocumentText holds extracted text for one (document, version). The
// search_vector column is refreshed with to_tsvector after each insert.
type DocumentText struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	DocumentID string    `gorm:"type:uuid;not null;index" json:"document_id"`
	Version    int       `gorm:"not null" json:"version"`
	Content    string    `gorm:"type:text" json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type Standard struct {
	ID        string         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrgID     string         `gorm:"type:uuid;index" json:"org_id"`
	Name      string         `gorm:"not null" json:"name"`
	Version   string         `gorm:"size:30" json:"version"`
	Items     []StandardItem `gorm:"foreignKey:StandardID" json:"items,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// StandardItem is one sub-requirement of a standard. Path is a sortable
// materialized ordering key such as "01.02.003".
type StandardItem struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	StandardID string `gorm:"type:uuid;not null;index" json:"standard_id"`
	Code       string `gorm:"size:50;not null" json:"code"`
	Title      string `gorm:"not null" json:"title"`
	Path       string `gorm:"size:100;not null;index" json:"path"`
	ParentID   *int64 `json:"parent_id,omitempty"`
}

// EvidenceLink maps a span of extracted document text to a standard item.
// An item counts as covered while it has at least one AUTO or CONFIRMED link.
type EvidenceLink struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StandardItemID int64     `gorm:"not null;index" json:"standard_item_id"`
	DocumentID     string    `gorm:"type:uuid;not null;index" json:"document_id"`
	Version        int       `gorm:"not null" json:"version"`
	StartOffset    int       `gorm:"not null" json:"start"`
	EndOffset      int       `gorm:"not null" json:"end"`
	Confidence     float64   `gorm:"not null" json:"confidence"`
	Status         string    `gorm:"size:20;not null;default:AUTO;index" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// GapRun is an append-only coverage snapshot. Rows are never updated.
type GapRun struct {
	ID           string         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StandardID   string         `gorm:"type:uuid;not null;index" json:"standard_id"`
	OrgID        *string        `gorm:"type:uuid;index" json:"org_id,omitempty"`
	CoveragePct  float64        `gorm:"not null" json:"coverage_pct"`
	MissingCount int            `gorm:"not null" json:"missing_count"`
	TotalCount   int            `gorm:"not null" json:"total_count"`
	Result       datatypes.JSON `gorm:"type:jsonb" json:"result"`
	CreatedAt    time.Time      `json:"created_at"`
}

type NarrativeRun struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	StandardID  string    `gorm:"type:uuid;not null;index" json:"standard_id"`
	Status      string    `gorm:"size:20;not null;default:GENERATING" json:"status"`
	Progress    int       `gorm:"not null;default:0" json:"progress"`
	MarkdownKey string    `json:"markdown_key"`
	PDFKey      string    `json:"pdf_key"`
	DocxKey     string    `json:"docx_key"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AuditLog is append-only; nothing in the application mutates or deletes rows.
type AuditLog struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	OrgID       string         `gorm:"type:uuid;not null;index" json:"org_id"`
	ActorUserID *string        `gorm:"type:uuid" json:"actor_user_id,omitempty"`
	Action      string         `gorm:"size:60;not null" json:"action"`
	Target      string         `gorm:"size:120" json:"target"`
	Meta        datatypes.JSON `gorm:"type:jsonb;default:'{}'::jsonb" json:"meta"`
	CreatedAt   time.Time      `json:"created_at"`
}

type Session struct {
	JTI       string     `gorm:"primaryKey;size:64" json:"jti"`
	UserID    string     `gorm:"type:uuid;index;not null" json:"user_id"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// MagicLink stores only the SHA-256 of the emailed token. Links are
// single-use: ConsumedAt is set on first successful verification.
type MagicLink struct {
	TokenHash  string     `gorm:"primaryKey;size:64" json:"-"`
	Email      string     `gorm:"not null;index" json:"email"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// UserTier backs the gorm implementation of the billing tier store.
type UserTier struct {
	Email     string    `gorm:"primaryKey" json:"email"`
	Tier      string    `gorm:"size:30;not null" json:"tier"`
	UpdatedAt time.Time `json:"updated_at"`
}
