// Package ez 一行注册一个接口：绑定入参、鉴权、调用业务、统一信封与错误映射。
package ez

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"recipe-share-api/internal/domain"
	mdw "recipe-share-api/internal/transport/http/middleware"
	resp "recipe-share-api/internal/transport/http/response"
)

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// Action I 入参，O 出参
type Action[I any, O any] struct {
	Method string   // "GET" | "POST" | "PUT" | "PATCH" | "DELETE"
	Path   string   // 例："/auth/login"、"/recipes/:id"
	Binder Binder   // 绑定方式
	Auth   bool     // 是否要求登录（检查 userId）
	Roles  []string // 限定角色（可选）
	Status int      // 成功时的 HTTP 状态，默认 200
	// Msg 成功提示语，默认 "OK"；Message 非空时按结果决定
	Msg     string
	Message func(out O) string
	Handler func(c *gin.Context, in *I) (O, error)
}

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, log *zap.Logger) EZ {
	if log == nil {
		log = zap.NewNop()
	}
	return EZ{g: g, log: log}
}

// Group 在当前分组下再开子分组
func (e EZ) Group(path string, mw ...gin.HandlerFunc) EZ {
	return EZ{g: e.g.Group(path, mw...), log: e.log}
}

func init() {
	// 绑定错误里用 json/form 字段名
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				if name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]; name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	}
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	h := func(c *gin.Context) {
		// 1) 鉴权/角色
		if a.Auth {
			if UserID(c) == "" {
				Fail(c, e.log, domain.Unauthorized("Unauthorized - No Token Provided"))
				return
			}
			if len(a.Roles) > 0 && !hasRole(c.GetString(mdw.KeyRole), a.Roles) {
				Fail(c, e.log, domain.Forbidden("Forbidden"))
				return
			}
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			_ = c.Error(bindErr)
			Fail(c, e.log, bindError(bindErr))
			return
		}

		// 3) 执行
		out, err := a.Handler(c, &in)
		if err != nil {
			Fail(c, e.log, err)
			return
		}
		msg := a.Msg
		if a.Message != nil {
			msg = a.Message(out)
		}
		c.JSON(status, resp.OKMsg(msg, out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

// Fail 业务错误 → HTTP 状态 + 信封；Internal 只回通用文案
func Fail(c *gin.Context, log *zap.Logger, err error) {
	kind := domain.KindOf(err)
	code := kind.HTTPStatus()
	msg := err.Error()
	if kind == domain.KindInternal {
		log.Error("request failed",
			zap.String("rid", mdw.RequestIDOf(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		msg = resp.CodeMsgMap[resp.CodeServerError]
	}
	c.AbortWithStatusJSON(code, resp.Error(code, msg))
}

func bindError(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make([]string, 0, len(ve))
		for _, fe := range ve {
			fields = append(fields, fe.Field())
		}
		return domain.Validation("invalid fields: " + strings.Join(fields, ", "))
	}
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return domain.Validation("request body too large")
	}
	var se *json.SyntaxError
	var te *json.UnmarshalTypeError
	switch {
	case errors.As(err, &te):
		return domain.Validation("invalid type for field " + te.Field)
	case errors.As(err, &se), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return domain.Validation("invalid request body")
	}
	return domain.Validation(err.Error())
}

func hasRole(role string, roles []string) bool {
	for _, r := range roles {
		if role == r {
			return true
		}
	}
	return false
}

// UserID 由 AuthJWT 写入的规范化用户 id
func UserID(c *gin.Context) string { return c.GetString(mdw.KeyUserID) }

// Page 分页参数：page / limit，非法值回退默认
func Page(c *gin.Context) domain.PageRequest {
	return domain.NewPageRequest(c.Query("page"), c.Query("limit"))
}
