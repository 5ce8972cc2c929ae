package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-share-api/internal/domain"
	"recipe-share-api/pkg/utils"
)

func ptr[T any](v T) *T { return &v }

func TestMe(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.signup(t, "alice")
	r := e.recipe(t, u, "soup")
	_, err := e.interaction.ToggleLike(ctx, u.ID, r.ID)
	require.NoError(t, err)
	_, err = e.interaction.ToggleSave(ctx, u.ID, r.ID)
	require.NoError(t, err)

	p, err := e.profiles.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", p.Email)
	assert.EqualValues(t, 1, p.RecipesCount)
	assert.EqualValues(t, 1, p.LikedRecipesCount)
	assert.EqualValues(t, 1, p.SavedRecipesCount)
}

func TestUpdateMe(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.signup(t, "alice")
	e.signup(t, "bobby")

	cases := []struct {
		name  string
		patch domain.UserPatch
		msg   string
	}{
		{"empty", domain.UserPatch{}, "No fields to update"},
		{"short username", domain.UserPatch{Username: ptr("ab")}, "Username must be at least 3 characters long"},
		{"long username", domain.UserPatch{Username: ptr(strings.Repeat("a", 31))}, "Username cannot exceed 30 characters"},
		{"taken username", domain.UserPatch{Username: ptr("bobby")}, "Username is already taken"},
		{"long bio", domain.UserPatch{Bio: ptr(strings.Repeat("é", 151))}, "Bio cannot exceed 150 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.profiles.UpdateMe(ctx, u.ID, tc.patch)
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.KindValidation))
			assert.Equal(t, tc.msg, err.Error())
		})
	}

	p, err := e.profiles.UpdateMe(ctx, u.ID, domain.UserPatch{
		Username:   ptr("alice2"),
		Bio:        ptr(strings.Repeat("é", 150)),
		ProfilePic: ptr(pngURI),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice2", p.Username)
	assert.True(t, strings.HasPrefix(p.ProfilePic, cdnBase+"profiles/"))
	first, _ := e.images.KeyOf(p.ProfilePic)

	// 换头像后旧图被释放
	p, err = e.profiles.UpdateMe(ctx, u.ID, domain.UserPatch{ProfilePic: ptr(pngURI)})
	require.NoError(t, err)
	assert.Contains(t, e.images.deletedKeys(), first)

	// 保持原名不算冲突
	_, err = e.profiles.UpdateMe(ctx, u.ID, domain.UserPatch{Username: ptr("alice2")})
	require.NoError(t, err)
}

func TestPublicProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.signup(t, "alice")
	e.recipe(t, u, "soup")

	p, err := e.profiles.Public(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.EqualValues(t, 1, p.RecipesCount)

	_, err = e.profiles.Public(ctx, utils.NewID())
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestUserAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.signup(t, "alice")
	e.signup(t, "bobby")

	list, err := e.users.List(ctx, domain.UserListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)

	id, err := e.users.Ban(ctx, strings.ToUpper(a.ID))
	require.NoError(t, err)
	assert.Equal(t, a.ID, id)

	list, err = e.users.List(ctx, domain.UserListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)
	list, err = e.users.List(ctx, domain.UserListQuery{WithDeleted: true, Q: "ali"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)

	_, err = e.users.Ban(ctx, a.ID)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestBanWithdrawsLikes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.signup(t, "alice")
	fan := e.signup(t, "bobby")
	other := e.signup(t, "carol")
	soup := e.recipe(t, owner, "soup")
	stew := e.recipe(t, owner, "stew")
	for _, r := range []*domain.Recipe{soup, stew} {
		_, err := e.interaction.ToggleLike(ctx, fan.ID, r.ID)
		require.NoError(t, err)
	}
	_, err := e.interaction.ToggleLike(ctx, other.ID, soup.ID)
	require.NoError(t, err)

	_, err = e.users.Ban(ctx, fan.ID)
	require.NoError(t, err)

	likers, err := e.interaction.LikesOf(ctx, soup.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, likers.LikesCount)
	assert.Len(t, likers.Likes, int(likers.LikesCount))
	assert.Equal(t, other.ID, likers.Likes[0].ID)

	likers, err = e.interaction.LikesOf(ctx, stew.ID)
	require.NoError(t, err)
	assert.Zero(t, likers.LikesCount)
	assert.Empty(t, likers.Likes)

	assertLikeInvariant(t, e, soup.ID)
	assertLikeInvariant(t, e, stew.ID)
}
