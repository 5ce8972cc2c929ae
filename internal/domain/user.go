package domain

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	DefaultBio = "Hey there! I love sharing recipes!🍳"
)

type User struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:30;not null" json:"username" validate:"required,min=3,max=30"`
	Email        string         `gorm:"uniqueIndex;size:191;not null" json:"email" validate:"required,email,max=191"`
	PasswordHash string         `gorm:"size:191;not null" json:"-"`
	Bio          string         `gorm:"size:150" json:"bio" validate:"max=150"`
	ProfilePic   string         `gorm:"size:1024" json:"profilePic"`
	Role         string         `gorm:"size:16;not null;default:user" json:"role"`
	LastLoginAt  *time.Time     `json:"lastLogin,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// PublicUser 对其他用户可见的投影（不含凭据和私有列表）
type PublicUser struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Bio        string `json:"bio"`
	ProfilePic string `json:"profilePic,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Bio: u.Bio, ProfilePic: u.ProfilePic}
}

// LikedRecipe 是 User.likedRecipes 的一行；与 RecipeLike 互为镜像
type LikedRecipe struct {
	UserID    string    `gorm:"primaryKey;size:36"`
	RecipeID  string    `gorm:"primaryKey;size:36;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (LikedRecipe) TableName() string { return "user_liked_recipes" }

// SavedRecipe 是 User.savedRecipes 的一行（单边，没有镜像）
type SavedRecipe struct {
	UserID    string    `gorm:"primaryKey;size:36"`
	RecipeID  string    `gorm:"primaryKey;size:36;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (SavedRecipe) TableName() string { return "user_saved_recipes" }

// UserPatch 个人资料部分更新；nil 表示不改
type UserPatch struct {
	Username   *string
	Bio        *string
	ProfilePic *string
}

func (p UserPatch) Empty() bool {
	return p.Username == nil && p.Bio == nil && p.ProfilePic == nil
}

type UserListQuery struct {
	Offset      int
	Limit       int
	Q           string
	WithDeleted bool
}
