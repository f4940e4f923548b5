package model

import (
	"errors"
	"fmt"
)

// 错误分类：HTTP 边界按类型映射状态码，不把内部报错原文透给调用方。
var (
	// ErrNotFound 订单不存在。
	ErrNotFound = errors.New("order not found")
	// ErrSignatureInvalid 回调验签失败。不对外抛错，按 webhook 协议回拒绝令牌。
	ErrSignatureInvalid = errors.New("notification signature invalid")
)

// ValidationError 入参缺失或非法。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CollaboratorError 外部协作方（支付网关 / 图像服务）调用失败。
// Err 保留原始错误用于日志，Error() 只暴露协作方名称。
type CollaboratorError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s collaborator failed", e.Collaborator)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }
