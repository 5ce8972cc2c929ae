package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"recipe-share-api/internal/core/auth"
	"recipe-share-api/internal/domain"
	"recipe-share-api/pkg/utils"
)

type LikeState struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likesCount"`
}

type SaveState struct {
	Saved bool `json:"saved"`
}

type Likers struct {
	LikesCount int64               `json:"likesCount"`
	Likes      []domain.PublicUser `json:"likes"`
}

type RecipeComments struct {
	CommentsCount int64            `json:"commentsCount"`
	Comments      []domain.Comment `json:"comments"`
}

// InteractionService 点赞、收藏、评论。
// 点赞同时写 recipe_likes 与 user_liked_recipes，两边在同一事务里。
type InteractionService struct{ base }

func NewInteractionService(d Deps) *InteractionService {
	return &InteractionService{base: newBase(d, "interaction")}
}

func (s *InteractionService) ToggleLike(ctx context.Context, userID, rawRecipeID string) (LikeState, error) {
	rid, err := domain.ParseID(rawRecipeID, "recipe")
	if err != nil {
		return LikeState{}, err
	}
	ctx, cancel := s.op(ctx)
	defer cancel()

	var st LikeState
	err = s.store.WithTx(ctx, func(tx domain.Store) error {
		if _, err := mustRecipe(ctx, tx.Recipes(), rid); err != nil {
			return err
		}
		if _, err := mustUser(ctx, tx.Users(), userID); err != nil {
			return err
		}
		liked, err := tx.Recipes().HasLike(ctx, rid, userID)
		if err != nil {
			return err
		}
		if liked {
			if _, err := tx.Recipes().RemoveLike(ctx, rid, userID); err != nil {
				return err
			}
			if _, err := tx.Users().RemoveLikedRecipe(ctx, userID, rid); err != nil {
				return err
			}
		} else {
			if _, err := tx.Recipes().AddLike(ctx, rid, userID); err != nil {
				return err
			}
			if _, err := tx.Users().AddLikedRecipe(ctx, userID, rid); err != nil {
				return err
			}
		}
		st.Liked = !liked
		st.LikesCount, err = tx.Recipes().LikesCount(ctx, rid)
		return err
	})
	if err != nil {
		return LikeState{}, s.fail("toggle like", err)
	}
	if st.Liked {
		countInteraction("like")
	} else {
		countInteraction("unlike")
	}
	return st, nil
}

// ToggleSave 只改 user_saved_recipes
func (s *InteractionService) ToggleSave(ctx context.Context, userID, rawRecipeID string) (SaveState, error) {
	rid, err := domain.ParseID(rawRecipeID, "recipe")
	if err != nil {
		return SaveState{}, err
	}
	ctx, cancel := s.op(ctx)
	defer cancel()

	var st SaveState
	err = s.store.WithTx(ctx, func(tx domain.Store) error {
		if _, err := mustRecipe(ctx, tx.Recipes(), rid); err != nil {
			return err
		}
		if _, err := mustUser(ctx, tx.Users(), userID); err != nil {
			return err
		}
		saved, err := tx.Users().HasSavedRecipe(ctx, userID, rid)
		if err != nil {
			return err
		}
		if saved {
			_, err = tx.Users().RemoveSavedRecipe(ctx, userID, rid)
		} else {
			_, err = tx.Users().AddSavedRecipe(ctx, userID, rid)
		}
		st.Saved = !saved
		return err
	})
	if err != nil {
		return SaveState{}, s.fail("toggle save", err)
	}
	if st.Saved {
		countInteraction("save")
	} else {
		countInteraction("unsave")
	}
	return st, nil
}

func (s *InteractionService) AddComment(ctx context.Context, userID, rawRecipeID, text string) (*domain.Comment, error) {
	rid, err := domain.ParseID(rawRecipeID, "recipe")
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.Validation("text required")
	}
	ctx, cancel := s.op(ctx)
	defer cancel()

	c := &domain.Comment{ID: utils.NewID(), RecipeID: rid, UserID: userID, Text: text}
	var author *domain.User
	err = s.store.WithTx(ctx, func(tx domain.Store) error {
		if _, err := mustRecipe(ctx, tx.Recipes(), rid); err != nil {
			return err
		}
		u, err := mustUser(ctx, tx.Users(), userID)
		if err != nil {
			return err
		}
		author = u
		// 长度上限由存储层校验
		if err := tx.Comments().Create(ctx, c); err != nil {
			return err
		}
		_, err = tx.Recipes().AddCommentsCount(ctx, rid, 1)
		return err
	})
	if err != nil {
		return nil, s.fail("add comment", err)
	}
	p := author.Public()
	c.Author = &p
	countInteraction("comment")
	return c, nil
}

func (s *InteractionService) DeleteComment(ctx context.Context, userID, rawCommentID string) error {
	cid, err := domain.ParseID(rawCommentID, "comment")
	if err != nil {
		return err
	}
	ctx, cancel := s.op(ctx)
	defer cancel()

	err = s.store.WithTx(ctx, func(tx domain.Store) error {
		c, err := tx.Comments().FindByID(ctx, cid)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.NotFound("Comment not found")
		}
		if err := auth.AssertOwner(userID, c.UserID, "Not authorized to delete this comment"); err != nil {
			return err
		}
		deleted, err := tx.Comments().Delete(ctx, cid)
		if err != nil {
			return err
		}
		// 并发删除时只有真正删掉行的一方减计数
		if !deleted {
			return domain.NotFound("Comment not found")
		}
		existed, err := tx.Recipes().AddCommentsCount(ctx, c.RecipeID, -1)
		if err != nil {
			return err
		}
		if !existed {
			s.log.Warn("comment deleted but its recipe is gone",
				zap.String("comment", cid), zap.String("recipe", c.RecipeID))
		}
		return nil
	})
	if err != nil {
		return s.fail("delete comment", err)
	}
	countInteraction("uncomment")
	return nil
}

// LikesOf 点赞用户按点赞时间倒序
func (s *InteractionService) LikesOf(ctx context.Context, rawRecipeID string) (Likers, error) {
	rid, err := domain.ParseID(rawRecipeID, "recipe")
	if err != nil {
		return Likers{}, err
	}
	ctx, cancel := s.op(ctx)
	defer cancel()

	r, err := mustRecipe(ctx, s.store.Recipes(), rid)
	if err != nil {
		return Likers{}, s.fail("likes of", err)
	}
	ids, err := s.store.Recipes().LikerIDs(ctx, rid)
	if err != nil {
		return Likers{}, s.fail("likes of", err)
	}
	m, err := s.store.Users().PublicByIDs(ctx, ids)
	if err != nil {
		return Likers{}, s.fail("likes of", err)
	}
	out := Likers{LikesCount: r.LikesCount, Likes: make([]domain.PublicUser, 0, len(ids))}
	for _, id := range ids {
		// 已封禁的用户不展示
		if p, ok := m[id]; ok {
			out.Likes = append(out.Likes, p)
		}
	}
	return out, nil
}

// MyLikedRecipes 按点赞时间倒序
func (s *InteractionService) MyLikedRecipes(ctx context.Context, userID string) ([]domain.Recipe, error) {
	ctx, cancel := s.op(ctx)
	defer cancel()

	if _, err := mustUser(ctx, s.store.Users(), userID); err != nil {
		return nil, s.fail("my likes", err)
	}
	ids, err := s.store.Users().LikedRecipeIDs(ctx, userID)
	if err != nil {
		return nil, s.fail("my likes", err)
	}
	found, err := s.store.Recipes().FindByIDs(ctx, ids)
	if err != nil {
		return nil, s.fail("my likes", err)
	}
	byID := make(map[string]domain.Recipe, len(found))
	for _, r := range found {
		byID[r.ID] = r
	}
	out := make([]domain.Recipe, 0, len(found))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	if err := withAuthors(ctx, s.store.Users(), out); err != nil {
		return nil, s.fail("my likes", err)
	}
	return out, nil
}

// SavedRecipesOf 收藏的菜谱分页，按菜谱创建时间倒序
func (s *InteractionService) SavedRecipesOf(ctx context.Context, userID string, page domain.PageRequest) (domain.Page[domain.Recipe], error) {
	ctx, cancel := s.op(ctx)
	defer cancel()

	if _, err := mustUser(ctx, s.store.Users(), userID); err != nil {
		return domain.Page[domain.Recipe]{}, s.fail("saved recipes", err)
	}
	q := domain.RecipeQuery{
		Filter: domain.RecipeFilter{SavedBy: userID},
		Sort:   []domain.SortField{{Field: "createdAt", Desc: true}},
		Page:   page,
	}
	items, total, err := s.store.Recipes().List(ctx, q)
	if err != nil {
		return domain.Page[domain.Recipe]{}, s.fail("saved recipes", err)
	}
	if err := withAuthors(ctx, s.store.Users(), items); err != nil {
		return domain.Page[domain.Recipe]{}, s.fail("saved recipes", err)
	}
	return domain.NewPage(items, total, page), nil
}

func (s *InteractionService) CommentsOf(ctx context.Context, rawRecipeID string) (RecipeComments, error) {
	rid, err := domain.ParseID(rawRecipeID, "recipe")
	if err != nil {
		return RecipeComments{}, err
	}
	ctx, cancel := s.op(ctx)
	defer cancel()

	r, err := mustRecipe(ctx, s.store.Recipes(), rid)
	if err != nil {
		return RecipeComments{}, s.fail("comments of", err)
	}
	list, err := s.store.Comments().ListByRecipe(ctx, rid)
	if err != nil {
		return RecipeComments{}, s.fail("comments of", err)
	}
	if err := withCommentAuthors(ctx, s.store.Users(), list); err != nil {
		return RecipeComments{}, s.fail("comments of", err)
	}
	if list == nil {
		list = []domain.Comment{}
	}
	return RecipeComments{CommentsCount: r.CommentsCount, Comments: list}, nil
}
