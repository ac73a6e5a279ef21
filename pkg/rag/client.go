// Package rag provides a client for the restaurant retrieval companion service.
package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"bebo-bot-go/internal/config"
)

// Client defines the interface for the retrieval service client.
type Client interface {
	// Query 调用检索服务，返回答案与匹配的餐厅/菜品列表。
	Query(ctx context.Context, question string) (*QueryResult, error)
}

// QueryResult 是检索服务的应答。两个列表里的元素
// 已经是格式化好的展示字符串。
type QueryResult struct {
	Answer         string   `json:"answer"`
	TopRestaurants []string `json:"top_restaurants"`
	TopMenuItems   []string `json:"top_menu_items"`
}

// FormatContext 把检索结果拼成喂给语言模型的上下文文本。
func (r *QueryResult) FormatContext() string {
	var b strings.Builder
	b.WriteString(r.Answer)
	if len(r.TopRestaurants) > 0 {
		b.WriteString("\n\nQuán gợi ý:")
		for _, rest := range r.TopRestaurants {
			b.WriteString("\n- ")
			b.WriteString(rest)
		}
	}
	if len(r.TopMenuItems) > 0 {
		b.WriteString("\n\nMón gợi ý:")
		for _, item := range r.TopMenuItems {
			b.WriteString("\n- ")
			b.WriteString(item)
		}
	}
	return b.String()
}

type queryRequest struct {
	Question string `json:"question"`
}

type httpClient struct {
	cfg    config.RAGConfig
	client *http.Client
}

// NewClient creates a new retrieval service client.
func NewClient(cfg config.RAGConfig) Client {
	return &httpClient{
		cfg:    cfg,
		client: &http.Client{},
	}
}

func (c *httpClient) Query(ctx context.Context, question string) (*QueryResult, error) {
	reqBytes, err := json.Marshal(queryRequest{Question: question})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/api/restaurant-query", bytes.NewReader(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call retrieval api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("retrieval api returned non-200 status: %s, body: %s", resp.Status, string(bodyBytes))
	}

	var result QueryResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse retrieval response: %w", err)
	}
	return &result, nil
}
