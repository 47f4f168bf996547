package model

import (
	"time"

	"github.com/google/uuid"
)

// Part categories. "unknown" is the onboarding default until the user or the
// agent settles on one.
const (
	CategoryManager     = "manager"
	CategoryFirefighter = "firefighter"
	CategoryExile       = "exile"
	CategoryUnknown     = "unknown"
)

// ValidCategory reports whether c is a recognized part category.
func ValidCategory(c string) bool {
	switch c {
	case CategoryManager, CategoryFirefighter, CategoryExile, CategoryUnknown:
		return true
	}
	return false
}

// PartsTable and RelationshipsTable are the record-store table names for the
// structured records behind the narrative documents.
const (
	PartsTable         = "parts"
	RelationshipsTable = "relationships"
)

// Part is a structured record for one identified part. The narrative profile
// document is stored separately in the document store; this row holds the
// queryable fields.
type Part struct {
	ID uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`

	UserID string `json:"userId" gorm:"not null;index;column:user_id"`

	// Name is the display name, e.g. "Inner Critic".
	Name string `json:"name" gorm:"not null"`

	// Category is one of the Category* constants.
	Category string `json:"category" gorm:"not null;default:unknown"`

	// Confidence is how certain the system is that this part is real,
	// in [0, 1]. Adjusted incrementally as evidence accumulates.
	Confidence float64 `json:"confidence" gorm:"not null;default:0"`

	Notes string `json:"notes" gorm:"column:notes"`

	CreatedAt time.Time `json:"createdAt" gorm:"not null;column:created_at"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null;column:updated_at"`
}

// TableName implements gorm.Tabler.
func (Part) TableName() string { return PartsTable }

// Relationship is a structured record for a relationship between two parts
// (e.g. polarized, allied, protector-exile).
type Relationship struct {
	ID uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`

	UserID string `json:"userId" gorm:"not null;index;column:user_id"`

	FromPartID uuid.UUID `json:"fromPartId" gorm:"not null;column:from_part_id"`
	ToPartID   uuid.UUID `json:"toPartId" gorm:"not null;column:to_part_id"`

	// Type describes the relationship dynamic, free-form but typically one
	// of "polarized", "allied", "protects".
	Type string `json:"type" gorm:"not null"`

	Notes string `json:"notes" gorm:"column:notes"`

	CreatedAt time.Time `json:"createdAt" gorm:"not null;column:created_at"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null;column:updated_at"`
}

// TableName implements gorm.Tabler.
func (Relationship) TableName() string { return RelationshipsTable }
