package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxPostContentLength is the upper bound enforced on a post body.
const MaxPostContentLength = 255

type Post struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	AuthorID  string    `json:"author_id" gorm:"index"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (Post) TableName() string {
	return "posts"
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if len(p.ID) == 0 {
		p.ID = uuid.NewString()
	}
	return nil
}

// EnrichedPost is the display-ready composite of a post and its author.
// Never persisted, it only exists on the way out of a read API.
type EnrichedPost struct {
	Post   Post   `json:"post"`
	Author Author `json:"author"`
}
