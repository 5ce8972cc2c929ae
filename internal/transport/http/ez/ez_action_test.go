package ez

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-share-api/internal/domain"
	mdw "recipe-share-api/internal/transport/http/middleware"
	resp "recipe-share-api/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

type echoIn struct {
	Name  string `json:"name" binding:"required,max=5"`
	Count int    `json:"count" binding:"min=0"`
}

func newEngine(asUser, role string) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if asUser != "" {
			c.Set(mdw.KeyUserID, asUser)
			c.Set(mdw.KeyRole, role)
		}
	})
	e := New(r.Group(""), nil)
	RegisterAction(e, Action[echoIn, echoIn]{
		Method: http.MethodPost, Path: "/echo", Binder: BindJSON,
		Status: http.StatusCreated, Msg: "created",
		Handler: func(_ *gin.Context, in *echoIn) (echoIn, error) { return *in, nil },
	})
	RegisterAction(e, Action[struct{}, string]{
		Method: http.MethodGet, Path: "/me", Auth: true,
		Handler: func(c *gin.Context, _ *struct{}) (string, error) { return UserID(c), nil },
	})
	RegisterAction(e, Action[struct{}, string]{
		Method: http.MethodDelete, Path: "/admin", Auth: true, Roles: []string{domain.RoleAdmin},
		Handler: func(*gin.Context, *struct{}) (string, error) { return "ok", nil },
	})
	RegisterAction(e, Action[struct{}, any]{
		Method: http.MethodGet, Path: "/fail/:kind",
		Handler: func(c *gin.Context, _ *struct{}) (any, error) {
			switch c.Param("kind") {
			case "notfound":
				return nil, domain.NotFound("Recipe not found")
			case "forbidden":
				return nil, domain.Forbidden("Not authorized to delete this recipe")
			}
			return nil, errors.New("pq: connection refused at 10.0.0.1")
		},
	})
	return r
}

func do(r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, resp.Resp) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out resp.Resp
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestRegisterAction_Success(t *testing.T) {
	w, body := do(newEngine("", ""), http.MethodPost, "/echo", `{"name":"abc","count":2}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, body.Success)
	assert.Equal(t, "created", body.Msg)
	assert.Equal(t, map[string]any{"name": "abc", "count": float64(2)}, body.Data)
}

func TestRegisterAction_BindErrors(t *testing.T) {
	r := newEngine("", "")
	cases := map[string]string{
		`{"name":"toolongname"}`:     "invalid fields: name",
		`{"name":"ok","count":-1}`:   "invalid fields: count",
		`{"name":`:                   "invalid request body",
		``:                           "invalid request body",
		`{"name":"ok","count":"x"}`:  "invalid type for field count",
	}
	for in, want := range cases {
		w, body := do(r, http.MethodPost, "/echo", in)
		assert.Equal(t, http.StatusBadRequest, w.Code, in)
		assert.False(t, body.Success)
		assert.Equal(t, want, body.Msg, in)
	}
}

func TestRegisterAction_AuthAndRoles(t *testing.T) {
	w, _ := do(newEngine("", ""), http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := do(newEngine("u-1", domain.RoleUser), http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-1", body.Data)

	w, _ = do(newEngine("u-1", domain.RoleUser), http.MethodDelete, "/admin", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = do(newEngine("u-1", domain.RoleAdmin), http.MethodDelete, "/admin", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFail_MapsKinds(t *testing.T) {
	r := newEngine("", "")

	w, body := do(r, http.MethodGet, "/fail/notfound", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Recipe not found", body.Msg)

	w, _ = do(r, http.MethodGet, "/fail/forbidden", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body = do(r, http.MethodGet, "/fail/internal", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error", body.Msg)
	assert.NotContains(t, w.Body.String(), "10.0.0.1")
}

func TestPage(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=3&limit=abc", nil)
	p := Page(c)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, domain.DefaultPageSize, p.Size)
}
