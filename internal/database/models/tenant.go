package models

import (
	"time"

	"github.com/google/uuid"
)

type Tenant struct {
	Base
	Name string `gorm:"not null" json:"name"`
	Slug string `gorm:"uniqueIndex;not null" json:"slug"`

	// Denormalized convenience field. Authorization decisions always go
	// through the membership row, never through OwnerID.
	OwnerID uuid.UUID `gorm:"type:uuid;index" json:"owner_id"`

	// Relationships
	Memberships []Membership `gorm:"foreignKey:TenantID" json:"-"`
	Profiles    []Profile    `gorm:"foreignKey:TenantID" json:"-"`
}

func (Tenant) TableName() string {
	return "tenants"
}

// Membership maps a user to a tenant with a tenant-scoped role.
// Unique per (user, tenant); the tenant owner always has an OWNER row.
type Membership struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"tenant_id"`
	Role      string    `gorm:"not null;default:'VIEWER'" json:"role"` // OWNER, ADMIN, EDITOR, VIEWER
	CreatedAt time.Time `json:"created_at"`

	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Tenant *Tenant `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
}

func (Membership) TableName() string {
	return "memberships"
}
