package repository

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// ErrInvalidJSON 表示要保存的菜单内容不是合法 JSON。
var ErrInvalidJSON = errors.New("menu content is not valid JSON")

// MenuRepository 定义了菜单文档的操作接口。
// 菜单是一个整体覆盖写入的 JSON 文件，读写过同一把锁。
type MenuRepository interface {
	Get() (json.RawMessage, error)
	Save(raw json.RawMessage) error
}

type fileMenuRepository struct {
	path string
	mu   sync.Mutex
}

// NewMenuRepository 创建菜单仓库。
func NewMenuRepository(path string) (MenuRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &fileMenuRepository{path: path}, nil
}

// Get 读取整份菜单文档。文件不存在时返回 os.ErrNotExist。
func (r *fileMenuRepository) Get() (json.RawMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// Save 整体覆盖写入菜单文档。仅要求内容是合法 JSON，不做结构校验。
func (r *fileMenuRepository) Save(raw json.RawMessage) error {
	if !json.Valid(raw) {
		return ErrInvalidJSON
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return os.WriteFile(r.path, raw, 0o644)
}
