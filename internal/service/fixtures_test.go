package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"recipe-share-api/internal/core/auth"
	"recipe-share-api/internal/domain"
	"recipe-share-api/internal/repo"
	"recipe-share-api/internal/storage/image"
	"recipe-share-api/internal/testhelpers"
	"recipe-share-api/pkg/utils"
)

const (
	adminEmail = "chef@example.com"
	pngURI     = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="
	cdnBase    = "https://cdn.test/bucket/"
)

func init() { utils.BcryptCost = bcrypt.MinCost }

// fakeBackend 记录上传与删除
type fakeBackend struct {
	mu      sync.Mutex
	put     []string
	deleted []string
}

func (f *fakeBackend) Put(_ context.Context, key string, _ []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.put = append(f.put, key)
	return cdnBase + key, nil
}

func (f *fakeBackend) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeBackend) KeyOf(url string) (string, bool) {
	if !strings.HasPrefix(url, cdnBase) {
		return "", false
	}
	return strings.TrimPrefix(url, cdnBase), true
}

func (f *fakeBackend) deletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

type env struct {
	db          *gorm.DB
	store       *repo.Store
	images      *fakeBackend
	deps        Deps
	auth        *AuthService
	recipes     *RecipeService
	interaction *InteractionService
	profiles    *ProfileService
	users       *UserService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store, db := testhelpers.SetupTestStore(t)
	fb := &fakeBackend{}
	d := Deps{
		Store:     store,
		Images:    image.NewService(fb, 1, nil),
		JWT:       auth.NewJWTer("test-secret", "recipe-share", 24*time.Hour),
		IsAdmin:   func(e string) bool { return strings.EqualFold(e, adminEmail) },
		OpTimeout: 5 * time.Second,
	}
	return &env{
		db: db, store: store, images: fb, deps: d,
		auth:        NewAuthService(d),
		recipes:     NewRecipeService(d),
		interaction: NewInteractionService(d),
		profiles:    NewProfileService(d),
		users:       NewUserService(d),
	}
}

func (e *env) signup(t *testing.T, name string) *domain.User {
	t.Helper()
	res, err := e.auth.Signup(context.Background(), SignupInput{
		Username: name, Email: name + "@example.com", Password: "secret1",
	})
	require.NoError(t, err)
	return res.User
}

func (e *env) recipe(t *testing.T, owner *domain.User, title string) *domain.Recipe {
	t.Helper()
	r, err := e.recipes.Create(context.Background(), owner.ID, RecipeInput{
		Title:        title,
		Description:  "a dish",
		Ingredients:  []string{"rice", "salt"},
		Instructions: []string{"cook"},
		DietType:     domain.DietVeg,
		MealType:     domain.MealLunch,
		Image:        "https://img.example.com/" + title + ".jpg",
	})
	require.NoError(t, err)
	return r
}

// poisonStore 任何访问都会让测试失败，用于证明 id 校验发生在访问存储之前
type poisonStore struct{ t *testing.T }

func (p poisonStore) fail() { p.t.Fatalf("store must not be touched") }

func (p poisonStore) Users() domain.UserRepository              { p.fail(); return nil }
func (p poisonStore) Recipes() domain.RecipeRepository          { p.fail(); return nil }
func (p poisonStore) Comments() domain.CommentRepository        { p.fail(); return nil }
func (p poisonStore) Maintenance() domain.MaintenanceRepository { p.fail(); return nil }
func (p poisonStore) WithTx(context.Context, func(domain.Store) error) error {
	p.fail()
	return nil
}

// staleStore 让 FindByID 返回一份旧快照，模拟两个请求同时读到同一条评论
type staleStore struct {
	domain.Store
	snap *domain.Comment
}

func (s staleStore) Comments() domain.CommentRepository {
	return staleComments{CommentRepository: s.Store.Comments(), snap: s.snap}
}

func (s staleStore) WithTx(ctx context.Context, fn func(domain.Store) error) error {
	return s.Store.WithTx(ctx, func(tx domain.Store) error {
		return fn(staleStore{Store: tx, snap: s.snap})
	})
}

type staleComments struct {
	domain.CommentRepository
	snap *domain.Comment
}

func (s staleComments) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	if s.snap != nil && s.snap.ID == id {
		c := *s.snap
		return &c, nil
	}
	return s.CommentRepository.FindByID(ctx, id)
}
