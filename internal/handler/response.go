package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"bebo-bot-go/pkg/apperr"
)

// respondError 按业务错误码映射 HTTP 状态并返回统一的失败响应体
func respondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{
		"success": false,
		"error":   apperr.Message(err),
	})
}

// parseUintParam 解析路径参数为无符号整数，失败时返回参数错误
func parseUintParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperr.New(apperr.CodeInvalidArgument, name+" must be a positive integer")
	}
	return uint(v), nil
}
