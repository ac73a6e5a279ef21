package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"bebo-bot-go/internal/config"
	"bebo-bot-go/pkg/apperr"
)

// FacebookAdapter 对接 Facebook Messenger 平台。
type FacebookAdapter struct {
	cfg    config.FacebookConfig
	client *http.Client
}

// NewFacebookAdapter 创建 Facebook 适配器。
func NewFacebookAdapter(cfg config.FacebookConfig) *FacebookAdapter {
	return &FacebookAdapter{
		cfg:    cfg,
		client: &http.Client{},
	}
}

// Name 返回渠道名。
func (a *FacebookAdapter) Name() string { return NameFacebook }

// Verify 处理平台的订阅握手：mode 必须是 subscribe 且校验令牌匹配时
// 原样返回 challenge，其余一律拒绝。
func (a *FacebookAdapter) Verify(mode, token, challenge string) (string, error) {
	if mode == "subscribe" && token == a.cfg.VerifyToken {
		return challenge, nil
	}
	return "", ErrVerificationFailed
}

type fbWebhookPayload struct {
	Object string    `json:"object"`
	Entry  []fbEntry `json:"entry"`
}

type fbEntry struct {
	Messaging []fbMessaging `json:"messaging"`
}

type fbMessaging struct {
	Sender struct {
		ID string `json:"id"`
	} `json:"sender"`
	Message struct {
		Text string `json:"text"`
	} `json:"message"`
}

// Receive 解析页面事件载荷。object 不是 page 按未知资源处理；
// 每个 entry 只取第一条 messaging 事件，没有文本的事件跳过。
func (a *FacebookAdapter) Receive(payload []byte) ([]InboundMessage, error) {
	var body fbWebhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidArgument, "malformed webhook payload", err)
	}
	if body.Object != "page" {
		return nil, apperr.New(apperr.CodeNotFound, "not a page event")
	}

	var messages []InboundMessage
	for _, entry := range body.Entry {
		if len(entry.Messaging) == 0 {
			continue
		}
		event := entry.Messaging[0]
		if event.Message.Text == "" {
			continue
		}
		messages = append(messages, InboundMessage{
			SenderID: event.Sender.ID,
			Text:     event.Message.Text,
		})
	}
	return messages, nil
}

type fbSendRequest struct {
	Recipient struct {
		ID string `json:"id"`
	} `json:"recipient"`
	Message struct {
		Text string `json:"text"`
	} `json:"message"`
}

// Send 通过 Graph API 的 /me/messages 把文本回给用户。
func (a *FacebookAdapter) Send(ctx context.Context, recipientID, text string) error {
	var reqBody fbSendRequest
	reqBody.Recipient.ID = recipientID
	reqBody.Message.Text = text

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return apperr.Wrap(apperr.CodeUpstream, "failed to marshal facebook send request", err)
	}

	endpoint := fmt.Sprintf("%s/me/messages?access_token=%s", a.cfg.APIBase, url.QueryEscape(a.cfg.PageToken))
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(reqBytes))
	if err != nil {
		return apperr.Wrap(apperr.CodeUpstream, "failed to create facebook send request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.CodeUpstream, "failed to call facebook send api", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return apperr.Wrap(apperr.CodeUpstream, "facebook send api rejected message",
			fmt.Errorf("status %s, body: %s", resp.Status, string(bodyBytes)))
	}
	return nil
}
