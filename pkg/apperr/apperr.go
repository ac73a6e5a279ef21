// Package apperr 定义了跨层使用的统一业务错误类型。
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code 表示错误的分类。
type Code string

const (
	// CodeInvalidArgument 请求缺少必填字段或字段格式非法。
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	// CodeNotFound 引用的实体不存在。
	CodeNotFound Code = "NOT_FOUND"
	// CodeUpstream 外部依赖（LLM、视觉、TTS、渠道发送）调用失败。
	// 该类错误按约定在到达 HTTP 边界之前被吸收为占位文案。
	CodeUpstream Code = "UPSTREAM"
	// CodeInternal 数据库或其他未预期的内部错误。
	CodeInternal Code = "INTERNAL"
)

// Error 是统一的业务错误载体。
type Error struct {
	Code    Code
	Message string // 可对外展示的安全文案
	Err     error  // 被包装的底层错误
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New 创建一个不包装底层错误的业务错误。
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap 创建一个包装底层错误的业务错误。
func Wrap(code Code, message string, err error) error {
	return &Error{Code: code, Message: message, Err: err}
}

// IsCode 判断 err（或其包装链）是否属于指定分类。
func IsCode(err error, code Code) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// Message 提取可对外展示的文案；非业务错误统一返回通用文案，避免泄漏内部细节。
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		switch ae.Code {
		case CodeInvalidArgument, CodeNotFound:
			return ae.Message
		}
	}
	return "internal server error"
}

// HTTPStatus 将业务错误映射为 HTTP 状态码。
func HTTPStatus(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		switch ae.Code {
		case CodeInvalidArgument:
			return http.StatusBadRequest
		case CodeNotFound:
			return http.StatusNotFound
		}
	}
	// Upstream 错误不应该走到这里（按策略已被吸收），兜底按 500 处理
	return http.StatusInternalServerError
}
