package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCode(t *testing.T) {
	err := New(CodeNotFound, "session 7 not found")
	assert.True(t, IsCode(err, CodeNotFound))
	assert.False(t, IsCode(err, CodeInternal))
	assert.False(t, IsCode(errors.New("plain"), CodeNotFound))
	assert.False(t, IsCode(nil, CodeNotFound))
}

func TestIsCodeSeesThroughWrapping(t *testing.T) {
	inner := Wrap(CodeUpstream, "send rejected", errors.New("status 502"))
	outer := fmt.Errorf("failed to send reply via zalo: %w", inner)

	assert.True(t, IsCode(outer, CodeUpstream))
	assert.False(t, IsCode(outer, CodeInternal))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(CodeInternal, "failed to store message", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "INTERNAL")
	assert.Contains(t, err.Error(), "failed to store message")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid argument", err: New(CodeInvalidArgument, "sender must be user or bot"), want: http.StatusBadRequest},
		{name: "not found", err: New(CodeNotFound, "user 9 not found"), want: http.StatusNotFound},
		{name: "internal", err: New(CodeInternal, "db down"), want: http.StatusInternalServerError},
		{name: "upstream falls back to 500", err: New(CodeUpstream, "llm down"), want: http.StatusInternalServerError},
		{name: "plain error", err: errors.New("plain"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

// 只有参数类和未找到类的文案可以直接外显，其余一律换成通用文案。
func TestMessageHidesInternalDetail(t *testing.T) {
	assert.Equal(t, "sender must be user or bot", Message(New(CodeInvalidArgument, "sender must be user or bot")))
	assert.Equal(t, "session 7 not found", Message(New(CodeNotFound, "session 7 not found")))
	assert.Equal(t, "internal server error", Message(New(CodeInternal, "dsn user:pass@tcp(10.0.0.1)/db")))
	assert.Equal(t, "internal server error", Message(New(CodeUpstream, "llm key invalid")))
	assert.Equal(t, "internal server error", Message(errors.New("raw gorm error")))
}
