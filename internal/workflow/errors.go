package workflow

import (
	"errors"
	"fmt"
)

// 工作流错误分类
// 调用方通过 errors.Is 判断错误类别,决定是否可以重试:
// ConcurrentModification 和 DependencyUnavailable 可重试,其余不可
var (
	ErrUnauthenticated        = errors.New("unauthenticated")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrNotFound               = errors.New("not found")
	ErrDependencyUnavailable  = errors.New("dependency unavailable")
)

// TransitionError 非法状态转换错误
// Field 指出缺失或非法的字段(如果是载荷完整性失败)
type TransitionError struct {
	Field  string
	Reason string
}

func (e *TransitionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid transition: field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid transition: %s", e.Reason)
}

// Unwrap 支持 errors.Is(err, ErrInvalidTransition)
func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// NewTransitionError 创建状态转换错误
func NewTransitionError(field, reason string) *TransitionError {
	return &TransitionError{Field: field, Reason: reason}
}

// ForbiddenError 角色或指派不匹配错误
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Reason)
}

// Unwrap 支持 errors.Is(err, ErrForbidden)
func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}

// IsForbidden 判断是否为权限错误
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsInvalidTransition 判断是否为非法转换错误
func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

// IsConcurrentModification 判断是否为并发冲突错误
func IsConcurrentModification(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}

// IsNotFound 判断是否为不存在错误
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
