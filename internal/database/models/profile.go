package models

import "github.com/google/uuid"

type Profile struct {
	Base
	TenantID    uuid.UUID `gorm:"type:uuid;index;not null" json:"tenant_id"`
	Handle      string    `gorm:"uniqueIndex;not null" json:"handle"`
	DisplayName string    `json:"display_name"`
	Tagline1    string    `json:"tagline1"`
	Tagline2    string    `json:"tagline2"`
	Bio         string    `json:"bio"`
	AvatarURL   string    `json:"avatar_url"`
	ThemeJSON   string    `json:"theme_json"`
	Published   bool      `gorm:"default:false" json:"published"`

	// Relationships
	Tenant   *Tenant   `gorm:"foreignKey:TenantID" json:"-"`
	Sections []Section `gorm:"foreignKey:ProfileID" json:"sections,omitempty"`
}

func (Profile) TableName() string {
	return "profiles"
}

type Section struct {
	Base
	ProfileID uuid.UUID `gorm:"type:uuid;index;not null" json:"profile_id"`
	Title     string    `json:"title"`
	// Display order. Not unique; ties are broken by creation order.
	Order int `gorm:"column:display_order;default:0" json:"order"`

	Blocks []Block `gorm:"foreignKey:SectionID" json:"blocks,omitempty"`
}

func (Section) TableName() string {
	return "sections"
}

type BlockType string

const (
	BlockTypeLink   BlockType = "LINK"
	BlockTypeSocial BlockType = "SOCIAL"
	BlockTypeEmbed  BlockType = "EMBED"
	BlockTypeList   BlockType = "LIST"
	BlockTypeText   BlockType = "TEXT"
)

type Block struct {
	Base
	SectionID uuid.UUID `gorm:"type:uuid;index;not null" json:"section_id"`
	Type      BlockType `gorm:"not null" json:"type"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	URL       string    `json:"url"`
	Order     int       `gorm:"column:display_order;default:0" json:"order"`
}

func (Block) TableName() string {
	return "blocks"
}

// Destination is the effective redirect target: the URL when set,
// otherwise the free-text content.
func (b *Block) Destination() string {
	if b.URL != "" {
		return b.URL
	}
	return b.Content
}
