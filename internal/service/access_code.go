package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"scholchat/backend/config"
)

// ── 激活码校验错误 ──

var ErrInvalidCode = errors.New("激活码不正确")

var strictCodePattern = regexp.MustCompile(`^\d{6}$`)

// CodeValidator 激活码校验器（无状态）
// 比较规则：去除首尾空白后精确匹配，不做其他归一化
type CodeValidator struct {
	strictFormat bool
}

// NewCodeValidator 创建 CodeValidator
func NewCodeValidator(cfg *config.AccessConfig) *CodeValidator {
	return &CodeValidator{strictFormat: cfg.StrictCodeFormat}
}

// Validate 校验提交的激活码是否与班级当前激活码一致
// 严格模式下提交码必须为 6 位数字；格式不符与不匹配同样返回 ErrInvalidCode，
// 避免向暴力尝试方泄露额外信息
func (v *CodeValidator) Validate(currentCode, presentedCode string) error {
	presented := strings.TrimSpace(presentedCode)
	if v.strictFormat && !strictCodePattern.MatchString(presented) {
		return ErrInvalidCode
	}
	if presented != strings.TrimSpace(currentCode) {
		return ErrInvalidCode
	}
	return nil
}

// GenerateActivationCode 生成 6 位数字激活码（加密安全随机源）
func GenerateActivationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("生成激活码失败: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
