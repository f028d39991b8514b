package service

import (
	"errors"
	"regexp"
	"testing"

	"scholchat/backend/config"
)

func TestCodeValidator_StrictFormat(t *testing.T) {
	v := NewCodeValidator(&config.AccessConfig{StrictCodeFormat: true})

	cases := []struct {
		name      string
		current   string
		presented string
		wantErr   bool
	}{
		{"精确匹配", "123456", "123456", false},
		{"首尾空白被去除", "123456", "  123456 ", false},
		{"码不匹配", "123456", "654321", true},
		{"非 6 位数字被拒绝", "123456", "12345", true},
		{"含字母被拒绝", "123456", "12a456", true},
		{"空码被拒绝", "123456", "", true},
		{"大小写不做归一化", "ABC123", "abc123", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(tc.current, tc.presented)
			if tc.wantErr && !errors.Is(err, ErrInvalidCode) {
				t.Errorf("期望 ErrInvalidCode，实际=%v", err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("期望校验通过，实际=%v", err)
			}
		})
	}
}

func TestCodeValidator_LooseFormat(t *testing.T) {
	v := NewCodeValidator(&config.AccessConfig{StrictCodeFormat: false})

	// 宽松模式下自由格式激活码允许精确匹配
	if err := v.Validate("OPEN-SESAME", "OPEN-SESAME"); err != nil {
		t.Errorf("期望校验通过，实际=%v", err)
	}
	if err := v.Validate("OPEN-SESAME", "open-sesame"); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("期望 ErrInvalidCode，实际=%v", err)
	}
}

func TestGenerateActivationCode(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}$`)

	for i := 0; i < 20; i++ {
		code, err := GenerateActivationCode()
		if err != nil {
			t.Fatalf("生成激活码失败: %v", err)
		}
		if !pattern.MatchString(code) {
			t.Errorf("激活码格式不符: %q", code)
		}
	}
}
