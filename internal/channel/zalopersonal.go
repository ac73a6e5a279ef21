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

// ZaloPersonalAdapter 对接自建的 Zalo 个人号网关。
// 鉴权完全托付给网关本身，这里不带任何凭证头。
type ZaloPersonalAdapter struct {
	cfg    config.ZaloPersonalConfig
	client *http.Client
}

// NewZaloPersonalAdapter 创建 Zalo 个人号适配器。
func NewZaloPersonalAdapter(cfg config.ZaloPersonalConfig) *ZaloPersonalAdapter {
	return &ZaloPersonalAdapter{
		cfg:    cfg,
		client: &http.Client{},
	}
}

// Name 返回渠道名。
func (a *ZaloPersonalAdapter) Name() string { return NameZaloPersonal }

type zaloPersonalPayload struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

// Receive 解析网关转发的扁平载荷，from 和 message 缺一不可。
func (a *ZaloPersonalAdapter) Receive(payload []byte) ([]InboundMessage, error) {
	var body zaloPersonalPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidArgument, "malformed gateway payload", err)
	}
	if body.From == "" || body.Message == "" {
		return nil, apperr.New(apperr.CodeInvalidArgument, "missing from or message")
	}
	return []InboundMessage{{
		SenderID: body.From,
		Text:     body.Message,
	}}, nil
}

type zaloPersonalSendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// Send 把文本转发给网关的 send-text 接口。
func (a *ZaloPersonalAdapter) Send(ctx context.Context, recipientID, text string) error {
	reqBytes, err := json.Marshal(zaloPersonalSendRequest{To: recipientID, Message: text})
	if err != nil {
		return apperr.Wrap(apperr.CodeUpstream, "failed to marshal gateway send request", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.cfg.GatewayBase+"/send-text", bytes.NewReader(reqBytes))
	if err != nil {
		return apperr.Wrap(apperr.CodeUpstream, "failed to create gateway send request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.CodeUpstream, "failed to call gateway send api", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return apperr.Wrap(apperr.CodeUpstream, "gateway rejected message",
			fmt.Errorf("status %s, body: %s", resp.Status, string(bodyBytes)))
	}
	return nil
}
