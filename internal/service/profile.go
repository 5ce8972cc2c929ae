package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"recipe-share-api/internal/domain"
	"recipe-share-api/internal/storage/image"
)

type Profile struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	Bio               string     `json:"bio"`
	ProfilePic        string     `json:"profilePic"`
	Role              string     `json:"role"`
	RecipesCount      int64      `json:"recipesCount"`
	LikedRecipesCount int64      `json:"likedRecipesCount"`
	SavedRecipesCount int64      `json:"savedRecipesCount"`
	LastLogin         *time.Time `json:"lastLogin,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

type PublicProfile struct {
	domain.PublicUser
	RecipesCount int64     `json:"recipesCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ProfileService struct {
	base
	images *image.Service
}

func NewProfileService(d Deps) *ProfileService {
	return &ProfileService{base: newBase(d, "profile"), images: d.Images}
}

func (s *ProfileService) Me(ctx context.Context, userID string) (*Profile, error) {
	ctx, cancel := s.op(ctx)
	defer cancel()

	u, err := mustUser(ctx, s.store.Users(), userID)
	if err != nil {
		return nil, s.fail("my profile", err)
	}
	p := &Profile{
		ID: u.ID, Username: u.Username, Email: u.Email, Bio: u.Bio, ProfilePic: u.ProfilePic,
		Role: u.Role, LastLogin: u.LastLoginAt, CreatedAt: u.CreatedAt,
	}
	if p.RecipesCount, err = s.store.Recipes().CountByOwner(ctx, u.ID); err != nil {
		return nil, s.fail("my profile", err)
	}
	if p.LikedRecipesCount, err = s.store.Users().CountLikedRecipes(ctx, u.ID); err != nil {
		return nil, s.fail("my profile", err)
	}
	if p.SavedRecipesCount, err = s.store.Users().CountSavedRecipes(ctx, u.ID); err != nil {
		return nil, s.fail("my profile", err)
	}
	return p, nil
}

// UpdateMe 头像换成新的托管图片后，旧图尽力释放
func (s *ProfileService) UpdateMe(ctx context.Context, userID string, patch domain.UserPatch) (*Profile, error) {
	ctx, cancel := s.op(ctx)
	defer cancel()

	u, err := mustUser(ctx, s.store.Users(), userID)
	if err != nil {
		return nil, s.fail("update profile", err)
	}

	fields := map[string]any{}
	if patch.Username != nil {
		name := strings.TrimSpace(*patch.Username)
		switch n := utf8.RuneCountInString(name); {
		case n < 3:
			return nil, domain.Validation("Username must be at least 3 characters long")
		case n > 30:
			return nil, domain.Validation("Username cannot exceed 30 characters")
		}
		if name != u.Username {
			other, err := s.store.Users().FindByUsername(ctx, name)
			if err != nil {
				return nil, s.fail("update profile", err)
			}
			if other != nil {
				return nil, domain.Validation("Username is already taken")
			}
		}
		fields["username"] = name
	}
	if patch.Bio != nil {
		if utf8.RuneCountInString(*patch.Bio) > 150 {
			return nil, domain.Validation("Bio cannot exceed 150 characters")
		}
		fields["bio"] = *patch.Bio
	}

	var uploaded string
	if patch.ProfilePic != nil && strings.TrimSpace(*patch.ProfilePic) != "" {
		url, err := s.images.Resolve(ctx, *patch.ProfilePic, image.FolderProfiles)
		if err != nil {
			return nil, s.fail("update profile upload", err)
		}
		if image.IsDataURI(*patch.ProfilePic) {
			uploaded = url
		}
		fields["profile_pic"] = url
	}
	if len(fields) == 0 {
		return nil, domain.Validation("No fields to update")
	}

	if err := s.store.Users().Update(ctx, u.ID, fields); err != nil {
		if uploaded != "" {
			s.images.Release(context.WithoutCancel(ctx), uploaded)
		}
		return nil, s.fail("update profile", err)
	}
	if pic, ok := fields["profile_pic"]; ok && pic != u.ProfilePic {
		s.images.Release(ctx, u.ProfilePic)
	}
	return s.Me(ctx, u.ID)
}

func (s *ProfileService) Public(ctx context.Context, rawUserID string) (*PublicProfile, error) {
	uid, err := domain.ParseID(rawUserID, "user")
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.op(ctx)
	defer cancel()

	u, err := mustUser(ctx, s.store.Users(), uid)
	if err != nil {
		return nil, s.fail("public profile", err)
	}
	n, err := s.store.Recipes().CountByOwner(ctx, uid)
	if err != nil {
		return nil, s.fail("public profile", err)
	}
	return &PublicProfile{PublicUser: u.Public(), RecipesCount: n, CreatedAt: u.CreatedAt}, nil
}
