package errors

import "errors"

// ErrDuplicateDigest 同一用户同一周期窗口的摘要已存在（并发重试下按无操作处理）
var ErrDuplicateDigest = errors.New("该周期的通知摘要已存在")

// ErrInvalidEnum 枚举取值非法（通知类型/优先级/分层档位等）
var ErrInvalidEnum = errors.New("非法的枚举取值")
