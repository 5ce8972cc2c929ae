package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"recipe-share-api/internal/core/auth"
	"recipe-share-api/internal/domain"
	"recipe-share-api/pkg/utils"
)

const MinPasswordLen = 6

type SignupInput struct {
	Username string
	Email    string
	Password string
}

type AuthResult struct {
	User  *domain.User
	Token string
}

type AuthService struct {
	base
	jwt     *auth.JWTer
	isAdmin func(string) bool
}

func NewAuthService(d Deps) *AuthService {
	isAdmin := d.IsAdmin
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	return &AuthService{base: newBase(d, "auth"), jwt: d.JWT, isAdmin: isAdmin}
}

func (s *AuthService) roleFor(email string) string {
	if s.isAdmin(email) {
		return domain.RoleAdmin
	}
	return domain.RoleUser
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return nil, domain.Validation("All fields are required")
	}
	if len(in.Password) < MinPasswordLen {
		return nil, domain.Validation("password must be at least 6 characters")
	}

	ctx, cancel := s.op(ctx)
	defer cancel()

	users := s.store.Users()
	if u, err := users.FindByEmail(ctx, email); err != nil {
		return nil, s.fail("signup", err)
	} else if u != nil {
		return nil, domain.Validation("User already exists")
	}
	if u, err := users.FindByUsername(ctx, username); err != nil {
		return nil, s.fail("signup", err)
	} else if u != nil {
		return nil, domain.Validation("Username is already taken")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, s.fail("signup hash", err)
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Bio:          domain.DefaultBio,
		Role:         s.roleFor(email),
	}
	// 并发注册时唯一索引兜底
	if err := users.Create(ctx, u); err != nil {
		return nil, s.fail("signup", err)
	}
	return s.issue(u)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.Validation("All fields are required")
	}

	ctx, cancel := s.op(ctx)
	defer cancel()

	users := s.store.Users()
	u, err := users.FindByEmail(ctx, email)
	if err != nil {
		return nil, s.fail("login", err)
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.Unauthorized("Invalid email or password")
	}

	fields := map[string]any{}
	if role := s.roleFor(email); role == domain.RoleAdmin && u.Role != role {
		fields["role"] = role
		u.Role = role
	}
	if len(fields) > 0 {
		if err := users.Update(ctx, u.ID, fields); err != nil {
			return nil, s.fail("login promote", err)
		}
	}
	now := time.Now()
	if err := users.TouchLastLogin(ctx, u.ID, now); err != nil {
		// 不影响登录
		s.log.Warn("stamp last login failed", zap.String("user", u.ID), zap.Error(err))
	} else {
		u.LastLoginAt = &now
	}
	return s.issue(u)
}

func (s *AuthService) issue(u *domain.User) (*AuthResult, error) {
	tok, err := s.jwt.Issue(u.ID, u.Role)
	if err != nil {
		return nil, s.fail("issue token", err)
	}
	return &AuthResult{User: u, Token: tok}, nil
}
