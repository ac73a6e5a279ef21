// Package channel 把各消息平台异构的 webhook 形态统一到一个适配器接口后面。
package channel

import (
	"context"
	"errors"
)

// 渠道名称，同时用作任务与记忆的维度标识。
const (
	NameFacebook     = "facebook"
	NameZalo         = "zalo"
	NameZaloPersonal = "zalo-personal"
)

// ErrVerificationFailed 表示平台订阅握手校验未通过。
var ErrVerificationFailed = errors.New("webhook verification failed")

// InboundMessage 是从渠道载荷中提取出的归一化消息。
type InboundMessage struct {
	SenderID string
	Text     string
}

// Adapter is the base interface every channel adapter must implement.
// Receive 解析渠道特有的 webhook 载荷；Send 把回复推回该渠道的发送 API。
type Adapter interface {
	Name() string
	Receive(payload []byte) ([]InboundMessage, error)
	Send(ctx context.Context, recipientID, text string) error
}

// Verifier 是可选能力：平台要求订阅握手时由适配器实现。
// 目前只有 Facebook 有这一步。
type Verifier interface {
	Verify(mode, token, challenge string) (string, error)
}
