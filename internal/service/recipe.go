package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"recipe-share-api/internal/core/auth"
	"recipe-share-api/internal/domain"
	"recipe-share-api/internal/storage/image"
	"recipe-share-api/pkg/utils"
)

type RecipeInput struct {
	Title        string
	Description  string
	Ingredients  []string
	Instructions []string
	DietType     domain.DietType
	MealType     domain.MealType
	// url 或 data:image/...;base64,...
	Image string
}

type ListInput struct {
	DietType string
	MealType string
	Search   string
	Sort     string
	Page     domain.PageRequest
}

type RecipeService struct {
	base
	images *image.Service
}

func NewRecipeService(d Deps) *RecipeService {
	return &RecipeService{base: newBase(d, "recipe"), images: d.Images}
}

func (s *RecipeService) Create(ctx context.Context, userID string, in RecipeInput) (*domain.Recipe, error) {
	if strings.TrimSpace(in.Image) == "" {
		return nil, domain.Validation("Recipe image required")
	}
	ctx, cancel := s.op(ctx)
	defer cancel()

	owner, err := mustUser(ctx, s.store.Users(), userID)
	if err != nil {
		return nil, s.fail("create recipe", err)
	}

	url, err := s.images.Resolve(ctx, in.Image, image.FolderRecipes)
	if err != nil {
		return nil, s.fail("create recipe upload", err)
	}
	r := &domain.Recipe{
		ID:           utils.NewID(),
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Ingredients:  trimList(in.Ingredients),
		Instructions: trimList(in.Instructions),
		DietType:     in.DietType,
		MealType:     in.MealType,
		ImageURL:     url,
		CreatedBy:    owner.ID,
	}
	if err := s.store.Recipes().Create(ctx, r); err != nil {
		// 不留下孤儿图片
		if url != in.Image {
			s.images.Release(context.WithoutCancel(ctx), url)
		}
		return nil, s.fail("create recipe", err)
	}
	p := owner.Public()
	r.Author = &p
	return r, nil
}

func (s *RecipeService) Get(ctx context.Context, rawID string) (*domain.Recipe, error) {
	id, err := domain.ParseID(rawID, "recipe")
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.op(ctx)
	defer cancel()

	r, err := mustRecipe(ctx, s.store.Recipes(), id)
	if err != nil {
		return nil, s.fail("get recipe", err)
	}
	one := []domain.Recipe{*r}
	if err := withAuthors(ctx, s.store.Users(), one); err != nil {
		return nil, s.fail("get recipe", err)
	}
	return &one[0], nil
}

func (s *RecipeService) Update(ctx context.Context, userID, rawID string, patch domain.RecipePatch) (*domain.Recipe, error) {
	id, err := domain.ParseID(rawID, "recipe")
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, domain.Validation("No fields to update")
	}
	ctx, cancel := s.op(ctx)
	defer cancel()

	r, err := mustRecipe(ctx, s.store.Recipes(), id)
	if err != nil {
		return nil, s.fail("update recipe", err)
	}
	if err := auth.AssertOwner(userID, r.CreatedBy, "Not authorized to update this recipe"); err != nil {
		return nil, err
	}

	oldImage := r.ImageURL
	if patch.ImageURL != nil {
		if strings.TrimSpace(*patch.ImageURL) == "" {
			return nil, domain.Validation("Recipe image required")
		}
		url, err := s.images.Resolve(ctx, *patch.ImageURL, image.FolderRecipes)
		if err != nil {
			return nil, s.fail("update recipe upload", err)
		}
		patch.ImageURL = &url
	}
	if patch.Ingredients != nil {
		patch.Ingredients = trimList(patch.Ingredients)
	}
	if patch.Instructions != nil {
		patch.Instructions = trimList(patch.Instructions)
	}
	patch.Apply(r)

	if err := s.store.Recipes().UpdateContent(ctx, r); err != nil {
		if r.ImageURL != oldImage {
			s.images.Release(context.WithoutCancel(ctx), r.ImageURL)
		}
		return nil, s.fail("update recipe", err)
	}
	if r.ImageURL != oldImage {
		s.images.Release(ctx, oldImage)
	}

	fresh, err := mustRecipe(ctx, s.store.Recipes(), id)
	if err != nil {
		return nil, s.fail("update recipe", err)
	}
	one := []domain.Recipe{*fresh}
	if err := withAuthors(ctx, s.store.Users(), one); err != nil {
		return nil, s.fail("update recipe", err)
	}
	return &one[0], nil
}

// Delete 级联删除点赞、收藏、评论；图片释放失败只记日志
func (s *RecipeService) Delete(ctx context.Context, userID, rawID string) error {
	id, err := domain.ParseID(rawID, "recipe")
	if err != nil {
		return err
	}
	ctx, cancel := s.op(ctx)
	defer cancel()

	r, err := mustRecipe(ctx, s.store.Recipes(), id)
	if err != nil {
		return s.fail("delete recipe", err)
	}
	if err := auth.AssertOwner(userID, r.CreatedBy, "Not authorized to delete this recipe"); err != nil {
		return err
	}
	err = s.store.WithTx(ctx, func(tx domain.Store) error {
		ok, err := tx.Recipes().DeleteCascade(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFound("Recipe not found")
		}
		return nil
	})
	if err != nil {
		return s.fail("delete recipe", err)
	}
	s.images.Release(ctx, r.ImageURL)
	s.log.Info("recipe deleted", zap.String("recipe", id), zap.String("by", userID))
	return nil
}

func (s *RecipeService) List(ctx context.Context, in ListInput) (domain.Page[domain.Recipe], error) {
	q := domain.RecipeQuery{Page: in.Page}
	if in.DietType != "" {
		q.Filter.DietType = domain.DietType(in.DietType)
		if !q.Filter.DietType.Valid() {
			return domain.Page[domain.Recipe]{}, domain.Validation("type must be one of [Veg Non-Veg]")
		}
	}
	if in.MealType != "" {
		q.Filter.MealType = domain.MealType(in.MealType)
		if !q.Filter.MealType.Valid() {
			return domain.Page[domain.Recipe]{}, domain.Validation("mealType must be one of [Breakfast Lunch Dinner Snack Dessert Brunch]")
		}
	}
	q.Filter.Search = in.Search
	sort, err := domain.ParseRecipeSort(in.Sort)
	if err != nil {
		return domain.Page[domain.Recipe]{}, err
	}
	q.Sort = sort
	return s.list(ctx, "list recipes", q)
}

// ListByOwner 某个用户发布的菜谱，新的在前；mustExist 时用户不存在返回 NotFound
func (s *RecipeService) ListByOwner(ctx context.Context, rawUserID string, page domain.PageRequest, mustExist bool) (domain.Page[domain.Recipe], error) {
	uid, err := domain.ParseID(rawUserID, "user")
	if err != nil {
		return domain.Page[domain.Recipe]{}, err
	}
	if mustExist {
		cctx, cancel := s.op(ctx)
		_, err := mustUser(cctx, s.store.Users(), uid)
		cancel()
		if err != nil {
			return domain.Page[domain.Recipe]{}, s.fail("list user recipes", err)
		}
	}
	q := domain.RecipeQuery{
		Filter: domain.RecipeFilter{CreatedBy: uid},
		Sort:   []domain.SortField{{Field: "createdAt", Desc: true}},
		Page:   page,
	}
	return s.list(ctx, "list user recipes", q)
}

func (s *RecipeService) list(ctx context.Context, op string, q domain.RecipeQuery) (domain.Page[domain.Recipe], error) {
	ctx, cancel := s.op(ctx)
	defer cancel()

	items, total, err := s.store.Recipes().List(ctx, q)
	if err != nil {
		return domain.Page[domain.Recipe]{}, s.fail(op, err)
	}
	if err := withAuthors(ctx, s.store.Users(), items); err != nil {
		return domain.Page[domain.Recipe]{}, s.fail(op, err)
	}
	return domain.NewPage(items, total, q.Page), nil
}

// trimList 去掉空白项
func trimList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
