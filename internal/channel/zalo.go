package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"bebo-bot-go/internal/config"
	"bebo-bot-go/pkg/apperr"
)

// ZaloAdapter 对接 Zalo OA（官方账号）平台。
// OA 的 webhook 没有订阅握手，平台侧也没有签名校验。
type ZaloAdapter struct {
	cfg    config.ZaloConfig
	client *http.Client
}

// NewZaloAdapter 创建 Zalo OA 适配器。
func NewZaloAdapter(cfg config.ZaloConfig) *ZaloAdapter {
	return &ZaloAdapter{
		cfg:    cfg,
		client: &http.Client{},
	}
}

// Name 返回渠道名。
func (a *ZaloAdapter) Name() string { return NameZalo }

type zaloWebhookPayload struct {
	Sender struct {
		ID string `json:"id"`
	} `json:"sender"`
	Message struct {
		Text string `json:"text"`
	} `json:"message"`
}

// Receive 解析 OA 事件载荷，要求 sender.id 与 message.text 同时存在。
func (a *ZaloAdapter) Receive(payload []byte) ([]InboundMessage, error) {
	var body zaloWebhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "malformed zalo event", err)
	}
	if body.Sender.ID == "" || body.Message.Text == "" {
		return nil, apperr.New(apperr.CodeInternal, "zalo event missing sender or text")
	}
	return []InboundMessage{{
		SenderID: body.Sender.ID,
		Text:     body.Message.Text,
	}}, nil
}

type zaloSendRequest struct {
	Recipient struct {
		UserID string `json:"user_id"`
	} `json:"recipient"`
	Message struct {
		Text string `json:"text"`
	} `json:"message"`
}

// Send 调用 OA 客服消息接口，access_token 放请求头。
func (a *ZaloAdapter) Send(ctx context.Context, recipientID, text string) error {
	var reqBody zaloSendRequest
	reqBody.Recipient.UserID = recipientID
	reqBody.Message.Text = text

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return apperr.Wrap(apperr.CodeUpstream, "failed to marshal zalo send request", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.cfg.APIBase+"/message/cs", bytes.NewReader(reqBytes))
	if err != nil {
		return apperr.Wrap(apperr.CodeUpstream, "failed to create zalo send request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("access_token", a.cfg.AccessToken)

	resp, err := a.client.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.CodeUpstream, "failed to call zalo send api", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return apperr.Wrap(apperr.CodeUpstream, "zalo send api rejected message",
			fmt.Errorf("status %s, body: %s", resp.Status, string(bodyBytes)))
	}
	return nil
}
