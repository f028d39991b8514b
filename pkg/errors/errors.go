package errors

import "errors"

// ErrStateConflict 条件更新未命中：目标记录已被其他操作推进到别的状态
var ErrStateConflict = errors.New("记录状态已被其他操作变更，请刷新后重试")
