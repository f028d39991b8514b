package config

import (
	"os"
	"strings"
	"testing"
)

func TestLoad_DefaultsWithEnvSecret(t *testing.T) {
	os.Setenv("SCHOLCHAT_AUTH_JWT_SECRET", "test-secret-at-least-16-chars")
	defer os.Unsetenv("SCHOLCHAT_AUTH_JWT_SECRET")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("期望默认端口 8080，实际=%d", cfg.Server.Port)
	}
	if !cfg.Access.StrictCodeFormat {
		t.Errorf("激活码严格格式应默认开启")
	}
	if cfg.Access.SubmitRatePerMin != 10 {
		t.Errorf("期望默认限流 10 次/分钟，实际=%d", cfg.Access.SubmitRatePerMin)
	}
	if cfg.Database.DSN() == "" || !strings.Contains(cfg.Database.DSN(), "dbname=scholchat") {
		t.Errorf("DSN 拼装异常: %q", cfg.Database.DSN())
	}
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 8080},
			Auth:   AuthConfig{JWTSecret: "test-secret-at-least-16-chars"},
			Access: AccessConfig{SubmitRatePerMin: 10},
		}
	}

	if err := base().Validate(); err != nil {
		t.Errorf("合法配置不应报错: %v", err)
	}

	cfg := base()
	cfg.Auth.JWTSecret = ""
	if err := cfg.Validate(); err == nil {
		t.Errorf("空 jwt_secret 应校验失败")
	}

	cfg = base()
	cfg.Auth.JWTSecret = "court"
	if err := cfg.Validate(); err == nil {
		t.Errorf("过短 jwt_secret 应校验失败")
	}

	cfg = base()
	cfg.Server.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Errorf("非法端口应校验失败")
	}

	cfg = base()
	cfg.Access.SubmitRatePerMin = 0
	if err := cfg.Validate(); err == nil {
		t.Errorf("非法限流配置应校验失败")
	}
}
