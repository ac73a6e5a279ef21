package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"bebo-bot-go/internal/config"
	"bebo-bot-go/pkg/rag"
)

func TestEnrichmentService_ShouldEnrich(t *testing.T) {
	resetConfig(t)
	svc := NewEnrichmentService(rag.NewClient(config.RAGConfig{BaseURL: "http://unused"}))

	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "keyword in the middle", text: "cho em hỏi quán nào ngon", want: true},
		{name: "keyword with different case", text: "MENU hôm nay có gì", want: true},
		{name: "hungry phrasing", text: "em đói quá", want: true},
		{name: "unrelated question", text: "mấy giờ giao hàng tới", want: false},
		{name: "empty text", text: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.ShouldEnrich(tt.text))
		})
	}
}

func TestEnrichmentService_ShouldEnrichConfiguredKeywords(t *testing.T) {
	resetConfig(t)
	config.Conf.RAG.Keywords = []string{"giao hàng"}

	svc := NewEnrichmentService(rag.NewClient(config.RAGConfig{BaseURL: "http://unused"}))

	assert.True(t, svc.ShouldEnrich("phí giao hàng bao nhiêu"))
	// 配置覆盖后缺省关键词不再生效
	assert.False(t, svc.ShouldEnrich("quán nào ngon"))
}

func TestEnrichmentService_NilClientNeverEnriches(t *testing.T) {
	resetConfig(t)
	svc := NewEnrichmentService(nil)

	assert.False(t, svc.ShouldEnrich("món nào ngon"))
	assert.Empty(t, svc.Enrich(context.Background(), "món nào ngon"))
}

func TestEnrichmentService_Enrich(t *testing.T) {
	resetConfig(t)

	t.Run("formats retrieval result", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(rag.QueryResult{
				Answer:         "Dạ có quán ngon nè",
				TopRestaurants: []string{"Quán A"},
			})
		}))
		defer server.Close()

		svc := NewEnrichmentService(rag.NewClient(config.RAGConfig{BaseURL: server.URL}))

		got := svc.Enrich(context.Background(), "quán nào ngon")
		assert.Equal(t, "Dạ có quán ngon nè\n\nQuán gợi ý:\n- Quán A", got)
	})

	t.Run("non-food text skips retrieval", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer server.Close()

		svc := NewEnrichmentService(rag.NewClient(config.RAGConfig{BaseURL: server.URL}))

		assert.Empty(t, svc.Enrich(context.Background(), "shop mở cửa mấy giờ"))
		assert.False(t, called)
	})

	t.Run("retrieval failure is absorbed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusInternalServerError)
		}))
		defer server.Close()

		svc := NewEnrichmentService(rag.NewClient(config.RAGConfig{BaseURL: server.URL}))

		assert.Empty(t, svc.Enrich(context.Background(), "quán nào ngon"))
	})
}
