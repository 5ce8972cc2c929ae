package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recipe-share-api/internal/domain"
	"recipe-share-api/internal/service"
	"recipe-share-api/internal/transport/http/ez"
)

type AuthModule struct{ d Deps }

func (m *AuthModule) Priority() int { return 10 }

type signupIn struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authOut struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

func (m *AuthModule) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api.Group("/auth"), m.d.logger())

	ez.RegisterAction(e, ez.Action[signupIn, authOut]{
		Method: http.MethodPost,
		Path:   "/signup",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Msg:    "User registered successfully",
		Handler: func(c *gin.Context, in *signupIn) (authOut, error) {
			res, err := m.d.Auth.Signup(c.Request.Context(), service.SignupInput{
				Username: in.Username, Email: in.Email, Password: in.Password,
			})
			if err != nil {
				return authOut{}, err
			}
			return authOut{User: res.User, Token: res.Token}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[loginIn, authOut]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: ez.BindJSON,
		Msg:    "Login successful",
		Handler: func(c *gin.Context, in *loginIn) (authOut, error) {
			res, err := m.d.Auth.Login(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return authOut{}, err
			}
			return authOut{User: res.User, Token: res.Token}, nil
		},
	})

	// 无状态：客户端丢弃 token 即可
	ez.RegisterAction(e, ez.Action[struct{}, any]{
		Method:  http.MethodPost,
		Path:    "/logout",
		Msg:     "Logged out successfully",
		Handler: func(*gin.Context, *struct{}) (any, error) { return nil, nil },
	})
}
