package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"scholchat/backend/config"
	"scholchat/backend/internal/dto"
	"scholchat/backend/internal/model"
	"scholchat/backend/pkg/jwt"
)

func newAuthServiceForTest(tr *testRepos) AuthService {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-at-least-16-chars",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)
	return NewAuthService(cfg, tr.repo, jwtMgr, nil, zap.NewNop())
}

func seedUserWithPassword(tr *testRepos, id, email, password string, role model.Role) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	tr.users.users[id] = &model.User{
		UserID:       id,
		FullName:     "用户 " + id,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
}

func TestAuthService_Register(t *testing.T) {
	tr := newTestRepos()
	svc := newAuthServiceForTest(tr)

	user, err := svc.Register(context.Background(), &dto.RegisterRequest{
		FullName: "Aïcha Ndiaye",
		Email:    "aicha@example.com",
		Password: "motdepasse123",
	})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	if user.Role != string(model.RoleGuardian) {
		t.Errorf("缺省角色应为 guardian，实际=%s", user.Role)
	}

	// 邮箱重复
	if _, err := svc.Register(context.Background(), &dto.RegisterRequest{
		FullName: "重复",
		Email:    "aicha@example.com",
		Password: "motdepasse123",
	}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("期望 ErrEmailTaken，实际=%v", err)
	}

	// 自助注册不开放教师/管理员角色
	for _, role := range []string{"professor", "admin", "teacher"} {
		if _, err := svc.Register(context.Background(), &dto.RegisterRequest{
			FullName: "越权",
			Email:    role + "@example.com",
			Password: "motdepasse123",
			Role:     role,
		}); !errors.Is(err, ErrRoleNotAllowed) {
			t.Errorf("角色 %s：期望 ErrRoleNotAllowed，实际=%v", role, err)
		}
	}
}

func TestAuthService_Login(t *testing.T) {
	tr := newTestRepos()
	seedUserWithPassword(tr, "user-1", "aicha@example.com", "motdepasse123", model.RoleGuardian)
	svc := newAuthServiceForTest(tr)

	tokens, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "aicha@example.com",
		Password: "motdepasse123",
	})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Errorf("未签发 Token 对")
	}
	if tokens.User.ID != "user-1" {
		t.Errorf("Token 响应应携带用户信息")
	}

	// 密码错误与用户不存在返回同一错误，不泄露账号是否存在
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "aicha@example.com",
		Password: "mauvais",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际=%v", err)
	}
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "inconnu@example.com",
		Password: "motdepasse123",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际=%v", err)
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	tr := newTestRepos()
	seedUserWithPassword(tr, "user-1", "aicha@example.com", "motdepasse123", model.RoleGuardian)
	svc := newAuthServiceForTest(tr)

	tokens, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "aicha@example.com",
		Password: "motdepasse123",
	})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}

	refreshed, err := svc.RefreshToken(context.Background(), tokens.RefreshToken)
	if err != nil {
		t.Fatalf("刷新失败: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Errorf("刷新未签发新 AccessToken")
	}

	// Access Token 不能用于刷新
	if _, err := svc.RefreshToken(context.Background(), tokens.AccessToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Errorf("期望 ErrRefreshInvalid，实际=%v", err)
	}
	if _, err := svc.RefreshToken(context.Background(), "garbage"); !errors.Is(err, ErrRefreshInvalid) {
		t.Errorf("期望 ErrRefreshInvalid，实际=%v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	tr := newTestRepos()
	seedUserWithPassword(tr, "user-1", "aicha@example.com", "ancien-mdp-1", model.RoleGuardian)
	svc := newAuthServiceForTest(tr)

	// 旧密码错误
	if err := svc.ChangePassword(context.Background(), "user-1", &dto.ChangePasswordRequest{
		OldPassword: "mauvais",
		NewPassword: "nouveau-mdp-1",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际=%v", err)
	}

	if err := svc.ChangePassword(context.Background(), "user-1", &dto.ChangePasswordRequest{
		OldPassword: "ancien-mdp-1",
		NewPassword: "nouveau-mdp-1",
	}); err != nil {
		t.Fatalf("修改密码失败: %v", err)
	}

	// 新密码立即生效
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "aicha@example.com",
		Password: "nouveau-mdp-1",
	}); err != nil {
		t.Errorf("新密码登录失败: %v", err)
	}
}
