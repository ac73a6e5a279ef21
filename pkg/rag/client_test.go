package rag

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bebo-bot-go/internal/config"
)

func TestClient_Query(t *testing.T) {
	var gotPath string
	var gotBody queryRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_ = json.NewEncoder(w).Encode(QueryResult{
			Answer:         "Dạ có mấy quán bún bò ngon nè",
			TopRestaurants: []string{"Quán Bún Bò Huế O Hoa - 123 Nguyễn Trung Trực"},
			TopMenuItems:   []string{"Bún bò đặc biệt - 45.000 VND"},
		})
	}))
	defer server.Close()

	client := NewClient(config.RAGConfig{BaseURL: server.URL})

	result, err := client.Query(context.Background(), "chỗ nào bán bún bò?")
	require.NoError(t, err)
	assert.Equal(t, "/api/restaurant-query", gotPath)
	assert.Equal(t, "chỗ nào bán bún bò?", gotBody.Question)
	assert.Equal(t, "Dạ có mấy quán bún bò ngon nè", result.Answer)
	require.Len(t, result.TopRestaurants, 1)
	require.Len(t, result.TopMenuItems, 1)
}

func TestClient_QueryUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index not ready", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(config.RAGConfig{BaseURL: server.URL})

	_, err := client.Query(context.Background(), "quán nào ngon?")
	assert.Error(t, err)
}

func TestQueryResult_FormatContext(t *testing.T) {
	t.Run("full result", func(t *testing.T) {
		result := &QueryResult{
			Answer:         "Dạ có nè",
			TopRestaurants: []string{"Quán A", "Quán B"},
			TopMenuItems:   []string{"Món X"},
		}

		want := "Dạ có nè\n\nQuán gợi ý:\n- Quán A\n- Quán B\n\nMón gợi ý:\n- Món X"
		assert.Equal(t, want, result.FormatContext())
	})

	t.Run("answer only", func(t *testing.T) {
		result := &QueryResult{Answer: "Dạ em chưa có thông tin ạ"}
		assert.Equal(t, "Dạ em chưa có thông tin ạ", result.FormatContext())
	})
}
