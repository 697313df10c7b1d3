package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommunityPost struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Category  string    `gorm:"type:varchar(50);index" json:"category,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Author   *Profile           `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Comments []CommunityComment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}

func (CommunityPost) TableName() string {
	return "community_posts"
}

func (p *CommunityPost) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type CommunityComment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;index" json:"post_id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Author *Profile `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (CommunityComment) TableName() string {
	return "community_comments"
}

func (c *CommunityComment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// PostFilter narrows community post listings.
type PostFilter struct {
	Category string
	Search   string // matched against title and content, case-insensitive
	Limit    int
	Offset   int
}
