package service

import (
	"encoding/json"
	"errors"
	"io/fs"

	"bebo-bot-go/internal/repository"
	"bebo-bot-go/pkg/apperr"
)

// MenuService 定义了菜单文档的业务接口。
type MenuService interface {
	Get() (json.RawMessage, error)
	Save(raw json.RawMessage) error
}

type menuService struct {
	menuRepo repository.MenuRepository
}

// NewMenuService 创建一个新的 MenuService 实例。
func NewMenuService(menuRepo repository.MenuRepository) MenuService {
	return &menuService{menuRepo: menuRepo}
}

// Get 返回整份菜单文档。
func (s *menuService) Get() (json.RawMessage, error) {
	raw, err := s.menuRepo.Get()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.New(apperr.CodeNotFound, "menu not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to read menu", err)
	}
	return raw, nil
}

// Save 整体覆盖保存菜单文档。
func (s *menuService) Save(raw json.RawMessage) error {
	err := s.menuRepo.Save(raw)
	if errors.Is(err, repository.ErrInvalidJSON) {
		return apperr.New(apperr.CodeInvalidArgument, "menu must be valid JSON")
	}
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "failed to save menu", err)
	}
	return nil
}
