package domain

import "time"

const MaxCommentLen = 500

type Comment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	RecipeID  string    `gorm:"size:36;not null;index" json:"recipe"`
	UserID    string    `gorm:"size:36;not null;index" json:"userId"`
	Text      string    `gorm:"size:500;not null" json:"text" validate:"required,max=500"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Author *PublicUser `gorm:"-" json:"user,omitempty"`
}
