package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"bebo-bot-go/internal/service"
	"bebo-bot-go/pkg/apperr"
	"bebo-bot-go/pkg/log"
)

// MenuHandler 负责菜单文档的读写接口
type MenuHandler struct {
	menuService service.MenuService
}

func NewMenuHandler(menuService service.MenuService) *MenuHandler {
	return &MenuHandler{menuService: menuService}
}

// GetMenu 原样返回当前菜单 JSON 文档
func (h *MenuHandler) GetMenu(c *gin.Context) {
	raw, err := h.menuService.Get()
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
		return
	}

	c.Data(http.StatusOK, "application/json", raw)
}

type updateMenuRequest struct {
	Menu string `json:"menu" binding:"required"`
}

// UpdateMenu 校验并整体替换菜单文档，成功后回传保存的内容
func (h *MenuHandler) UpdateMenu(c *gin.Context) {
	var req updateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("更新菜单请求参数错误: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "menu is required"})
		return
	}

	if err := h.menuService.Save(json.RawMessage(req.Menu)); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
		return
	}

	c.Data(http.StatusOK, "application/json", []byte(req.Menu))
}
