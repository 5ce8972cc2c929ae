package repo_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-share-api/internal/domain"
	"recipe-share-api/internal/repo"
	"recipe-share-api/internal/testhelpers"
	"recipe-share-api/pkg/utils"
)

func newUser(t *testing.T, s *repo.Store, name string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:           utils.NewID(),
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Bio:          domain.DefaultBio,
		Role:         domain.RoleUser,
	}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func newRecipe(t *testing.T, s *repo.Store, owner, title string) *domain.Recipe {
	t.Helper()
	r := &domain.Recipe{
		ID:           utils.NewID(),
		Title:        title,
		Description:  "tasty",
		Ingredients:  domain.StringList{"salt", "pepper"},
		Instructions: domain.StringList{"mix"},
		DietType:     domain.DietVeg,
		MealType:     domain.MealDinner,
		ImageURL:     "https://img.example.com/" + title + ".jpg",
		CreatedBy:    owner,
	}
	require.NoError(t, s.Recipes().Create(context.Background(), r))
	return r
}

func TestUserRepo_CreateAndFind(t *testing.T) {
	s, _ := testhelpers.SetupTestStore(t)
	ctx := context.Background()
	u := newUser(t, s, "alice")

	got, err := s.Users().FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	missing, err := s.Users().FindByID(ctx, utils.NewID())
	require.NoError(t, err)
	assert.Nil(t, missing)

	dup := &domain.User{ID: utils.NewID(), Username: "alice", Email: "other@example.com", PasswordHash: "x"}
	err = s.Users().Create(ctx, dup)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestUserRepo_StorageValidation(t *testing.T) {
	s, _ := testhelpers.SetupTestStore(t)
	err := s.Users().Create(context.Background(), &domain.User{
		ID: utils.NewID(), Username: "ab", Email: "nope", PasswordHash: "x",
	})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Contains(t, err.Error(), "username must be at least 3 characters")
	assert.Contains(t, err.Error(), "provide a valid email")
}

func TestUserRepo_UpdateAndSoftDelete(t *testing.T) {
	s, _ := testhelpers.SetupTestStore(t)
	ctx := context.Background()
	a := newUser(t, s, "alice")
	newUser(t, s, "bobby")

	require.NoError(t, s.Users().Update(ctx, a.ID, map[string]any{"bio": "new bio"}))
	err := s.Users().Update(ctx, a.ID, map[string]any{"username": "bobby"})
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	now := time.Now()
	require.NoError(t, s.Users().TouchLastLogin(ctx, a.ID, now))
	got, err := s.Users().FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "new bio", got.Bio)
	require.NotNil(t, got.LastLoginAt)

	ok, err := s.Users().SoftDelete(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	got, err = s.Users().FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	users, total, err := s.Users().List(ctx, domain.UserListQuery{Limit: 10, WithDeleted: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, users, 2)

	users, total, err = s.Users().List(ctx, domain.UserListQuery{Limit: 10, Q: "bob"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "bobby", users[0].Username)
}

func TestUserRepo_PublicByIDs(t *testing.T) {
	s, _ := testhelpers.SetupTestStore(t)
	a := newUser(t, s, "alice")
	b := newUser(t, s, "bobby")

	m, err := s.Users().PublicByIDs(context.Background(), []string{a.ID, b.ID, a.ID, utils.NewID()})
	require.NoError(t, err)
	assert.Len(t, m, 2)
	assert.Equal(t, "alice", m[a.ID].Username)
	assert.Equal(t, domain.DefaultBio, m[b.ID].Bio)
}

func TestSetPrimitivesAreIdempotent(t *testing.T) {
	s, _ := testhelpers.SetupTestStore(t)
	ctx := context.Background()
	u := newUser(t, s, "alice")
	r := newRecipe(t, s, u.ID, "soup")

	added, err := s.Recipes().AddLike(ctx, r.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, added)

	// 重复加入：不报错、不重复计数
	added, err = s.Recipes().AddLike(ctx, r.ID, u.ID)
	require.NoError(t, err)
	assert.False(t, added)
	n, err := s.Recipes().LikesCount(ctx, r.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	removed, err := s.Recipes().RemoveLike(ctx, r.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = s.Recipes().RemoveLike(ctx, r.ID, u.ID)
	require.NoError(t, err)
	assert.False(t, removed)
	n, err = s.Recipes().LikesCount(ctx, r.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	saved, err := s.Users().AddSavedRecipe(ctx, u.ID, r.ID)
	require.NoError(t, err)
	assert.True(t, saved)
	saved, err = s.Users().AddSavedRecipe(ctx, u.ID, r.ID)
	require.NoError(t, err)
	assert.False(t, saved)
	c, err := s.Users().CountSavedRecipes(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, c)
}

func TestCommentsCountNeverNegative(t *testing.T) {
	s, _ := testhelpers.SetupTestStore(t)
	ctx := context.Background()
	u := newUser(t, s, "alice")
	r := newRecipe(t, s, u.ID, "soup")

	ok, err := s.Recipes().AddCommentsCount(ctx, r.ID, -1)
	require.NoError(t, err)
	assert.True(t, ok)
	got, err := s.Recipes().FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, got.CommentsCount)

	ok, err = s.Recipes().AddCommentsCount(ctx, utils.NewID(), 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecipeRepo_UpdateContentKeepsCounters(t *testing.T) {
	s, _ := testhelpers.SetupTestStore(t)
	ctx := context.Background()
	u := newUser(t, s, "alice")
	r := newRecipe(t, s, u.ID, "soup")

	stale := *r
	_, err := s.Recipes().AddLike(ctx, r.ID, u.ID)
	require.NoError(t, err)

	stale.Title = "better soup"
	stale.Ingredients = domain.StringList{"water", "salt & pepper"}
	require.NoError(t, s.Recipes().UpdateContent(ctx, &stale))

	got, err := s.Recipes().FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "better soup", got.Title)
	assert.Equal(t, []string{"water", "salt & pepper"}, []string(got.Ingredients))
	assert.EqualValues(t, 1, got.LikesCount)

	stale.Title = strings.Repeat("x", 101)
	err = s.Recipes().UpdateContent(ctx, &stale)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestRecipeRepo_ListFilterSearchSort(t *testing.T) {
	s, _ := testhelpers.SetupTestStore(t)
	ctx := context.Background()
	u := newUser(t, s, "alice")

	soup := newRecipe(t, s, u.ID, "Tomato Soup")
	time.Sleep(5 * time.Millisecond)
	curry := newRecipe(t, s, u.ID, "Chicken Curry")
	curry.DietType = domain.DietNonVeg
	curry.Ingredients = domain.StringList{"Chicken", "100% butter"}
	require.NoError(t, s.Recipes().UpdateContent(ctx, curry))
	_, err := s.Recipes().AddLike(ctx, soup.ID, u.ID)
	require.NoError(t, err)

	page := domain.PageRequest{Page: 1, Size: 10}

	items, total, err := s.Recipes().List(ctx, domain.RecipeQuery{
		Filter: domain.RecipeFilter{DietType: domain.DietNonVeg}, Page: page,
		Sort: []domain.SortField{{Field: "createdAt", Desc: true}},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, curry.ID, items[0].ID)

	// 大小写不敏感，命中配料
	items, _, err = s.Recipes().List(ctx, domain.RecipeQuery{Filter: domain.RecipeFilter{Search: "CHICK"}, Page: page})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, curry.ID, items[0].ID)

	// % 按字面匹配
	items, _, err = s.Recipes().List(ctx, domain.RecipeQuery{Filter: domain.RecipeFilter{Search: "100%"}, Page: page})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, _, err = s.Recipes().List(ctx, domain.RecipeQuery{
		Sort: []domain.SortField{{Field: "likesCount", Desc: true}}, Page: page,
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, soup.ID, items[0].ID)

	_, _, err = s.Recipes().List(ctx, domain.RecipeQuery{Sort: []domain.SortField{{Field: "password"}}, Page: page})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestRecipeRepo_SavedPagination(t *testing.T) {
	s, _ := testhelpers.SetupTestStore(t)
	ctx := context.Background()
	u := newUser(t, s, "alice")
	for i := 0; i < 23; i++ {
		r := newRecipe(t, s, u.ID, fmt.Sprintf("r%02d", i))
		_, err := s.Users().AddSavedRecipe(ctx, u.ID, r.ID)
		require.NoError(t, err)
	}
	newRecipe(t, s, u.ID, "not-saved")

	q := domain.RecipeQuery{Filter: domain.RecipeFilter{SavedBy: u.ID}, Page: domain.PageRequest{Page: 1, Size: 10}}
	items, total, err := s.Recipes().List(ctx, q)
	require.NoError(t, err)
	assert.EqualValues(t, 23, total)
	assert.Len(t, items, 10)

	q.Page.Page = 3
	items, _, err = s.Recipes().List(ctx, q)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestRecipeRepo_DeleteCascade(t *testing.T) {
	s, db := testhelpers.SetupTestStore(t)
	ctx := context.Background()
	u := newUser(t, s, "alice")
	r := newRecipe(t, s, u.ID, "soup")

	_, err := s.Recipes().AddLike(ctx, r.ID, u.ID)
	require.NoError(t, err)
	_, err = s.Users().AddLikedRecipe(ctx, u.ID, r.ID)
	require.NoError(t, err)
	_, err = s.Users().AddSavedRecipe(ctx, u.ID, r.ID)
	require.NoError(t, err)
	require.NoError(t, s.Comments().Create(ctx, &domain.Comment{ID: utils.NewID(), RecipeID: r.ID, UserID: u.ID, Text: "yum"}))

	var ok bool
	require.NoError(t, s.WithTx(ctx, func(tx domain.Store) error {
		ok, err = tx.Recipes().DeleteCascade(ctx, r.ID)
		return err
	}))
	assert.True(t, ok)

	for _, m := range []any{&domain.RecipeLike{}, &domain.LikedRecipe{}, &domain.SavedRecipe{}, &domain.Comment{}, &domain.Recipe{}} {
		var n int64
		require.NoError(t, db.Model(m).Count(&n).Error)
		assert.Zero(t, n, "%T", m)
	}
}

func TestWithTx_RollsBack(t *testing.T) {
	s, _ := testhelpers.SetupTestStore(t)
	ctx := context.Background()
	u := newUser(t, s, "alice")
	r := newRecipe(t, s, u.ID, "soup")

	boom := fmt.Errorf("boom")
	err := s.WithTx(ctx, func(tx domain.Store) error {
		if _, err := tx.Recipes().AddLike(ctx, r.ID, u.ID); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	has, err := s.Recipes().HasLike(ctx, r.ID, u.ID)
	require.NoError(t, err)
	assert.False(t, has)
	n, err := s.Recipes().LikesCount(ctx, r.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestComments_NewestFirst(t *testing.T) {
	s, _ := testhelpers.SetupTestStore(t)
	ctx := context.Background()
	u := newUser(t, s, "alice")
	r := newRecipe(t, s, u.ID, "soup")

	first := &domain.Comment{ID: utils.NewID(), RecipeID: r.ID, UserID: u.ID, Text: "first"}
	require.NoError(t, s.Comments().Create(ctx, first))
	time.Sleep(5 * time.Millisecond)
	second := &domain.Comment{ID: utils.NewID(), RecipeID: r.ID, UserID: u.ID, Text: "second"}
	require.NoError(t, s.Comments().Create(ctx, second))

	list, err := s.Comments().ListByRecipe(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Text)

	err = s.Comments().Create(ctx, &domain.Comment{ID: utils.NewID(), RecipeID: r.ID, UserID: u.ID, Text: strings.Repeat("a", 501)})
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	ok, err := s.Comments().Delete(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	got, err := s.Comments().FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRecipeRepo_SearchMatchesIngredientText(t *testing.T) {
	s, _ := testhelpers.SetupTestStore(t)
	ctx := context.Background()
	u := newUser(t, s, "alice")
	newRecipe(t, s, u.ID, "Plain Rice")
	newRecipe(t, s, u.ID, "Salted Rice")
	tacos := newRecipe(t, s, u.ID, "Crème Brûlée Tacos")
	tacos.Ingredients = domain.StringList{`6" tortilla`, `back\slash`}
	require.NoError(t, s.Recipes().UpdateContent(ctx, tacos))

	page := domain.PageRequest{Page: 1, Size: 10}
	count := func(term string) int64 {
		t.Helper()
		_, total, err := s.Recipes().List(ctx, domain.RecipeQuery{Filter: domain.RecipeFilter{Search: term}, Page: page})
		require.NoError(t, err)
		return total
	}

	// 列表的 JSON 分隔符不参与匹配
	for _, term := range []string{",", "[", `","`, "]"} {
		assert.Zero(t, count(term), "search %q", term)
	}
	// 只有真正含引号的配料命中
	assert.EqualValues(t, 1, count(`"`))
	assert.EqualValues(t, 1, count(`6"`))
	assert.EqualValues(t, 1, count(`back\slash`))
	assert.EqualValues(t, 2, count("PEPPER"))
	assert.EqualValues(t, 1, count("BRÛLÉE"))
	// 不跨配料拼接
	assert.Zero(t, count("saltpepper"))
}

func TestMaintenance_RepairsDrift(t *testing.T) {
	s, db := testhelpers.SetupTestStore(t)
	ctx := context.Background()
	u := newUser(t, s, "alice")
	v := newUser(t, s, "bobby")
	r := newRecipe(t, s, u.ID, "soup")

	// 只写了权威集合，镜像缺失且计数错误
	require.NoError(t, db.Create(&domain.RecipeLike{RecipeID: r.ID, UserID: u.ID}).Error)
	// 镜像多出一行
	require.NoError(t, db.Create(&domain.LikedRecipe{UserID: v.ID, RecipeID: r.ID}).Error)
	require.NoError(t, db.Create(&domain.Comment{ID: utils.NewID(), RecipeID: r.ID, UserID: u.ID, Text: "x"}).Error)
	require.NoError(t, db.Model(&domain.Recipe{}).Where("id = ?", r.ID).Update("comments_count", 7).Error)

	m := s.Maintenance()
	n, err := m.RecountLikes(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = m.RecountComments(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = m.RestoreLikeMirror(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = m.PruneLikeMirror(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := s.Recipes().FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.LikesCount)
	assert.EqualValues(t, 1, got.CommentsCount)

	ids, err := s.Users().LikedRecipeIDs(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{r.ID}, ids)
	c, err := s.Users().CountLikedRecipes(ctx, v.ID)
	require.NoError(t, err)
	assert.Zero(t, c)

	// 第二遍无事可做
	n, err = m.RecountLikes(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
