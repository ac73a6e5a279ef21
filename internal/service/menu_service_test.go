package service

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bebo-bot-go/internal/repository"
	"bebo-bot-go/pkg/apperr"
)

func newMenuService(t *testing.T) MenuService {
	t.Helper()
	repo, err := repository.NewMenuRepository(filepath.Join(t.TempDir(), "menu.json"))
	require.NoError(t, err)
	return NewMenuService(repo)
}

func TestMenuService_GetMissingMenuIsNotFound(t *testing.T) {
	svc := newMenuService(t)

	_, err := svc.Get()
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestMenuService_SaveRejectsInvalidJSON(t *testing.T) {
	svc := newMenuService(t)

	err := svc.Save(json.RawMessage(`{"items": [`))
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidArgument))
}

func TestMenuService_SaveAndGetRoundTrip(t *testing.T) {
	svc := newMenuService(t)

	doc := `{"items":[{"name":"cơm gà","price":35000},{"name":"trà đào","price":20000}]}`
	require.NoError(t, svc.Save(json.RawMessage(doc)))

	raw, err := svc.Get()
	require.NoError(t, err)
	assert.JSONEq(t, doc, string(raw))

	// 保存是整体覆盖，不做合并
	require.NoError(t, svc.Save(json.RawMessage(`{"items":[]}`)))
	raw, err = svc.Get()
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[]}`, string(raw))
}
