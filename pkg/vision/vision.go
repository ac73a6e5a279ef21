// Package vision 封装 Google Cloud Vision 的标签识别能力。
package vision

import (
	"context"
	"fmt"

	vision "cloud.google.com/go/vision/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"bebo-bot-go/internal/config"
)

// Labeler 对一张图片做标签识别。
type Labeler struct {
	c          *vision.ImageAnnotatorClient
	maxResults int
}

// NewLabeler 创建标签识别客户端。凭证文件未配置时走默认凭证链。
func NewLabeler(ctx context.Context, cfg config.VisionConfig) (*Labeler, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	c, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &Labeler{c: c, maxResults: 5}, nil
}

// Close 释放底层连接。
func (l *Labeler) Close() error { return l.c.Close() }

// DetectLabels 识别图片内容，返回按置信度排序的标签描述（最多 5 个）。
func (l *Labeler) DetectLabels(ctx context.Context, imageData []byte) ([]string, error) {
	annotations, err := l.c.DetectLabels(ctx, &visionpb.Image{Content: imageData}, nil, l.maxResults)
	if err != nil {
		return nil, fmt.Errorf("label detection failed: %w", err)
	}

	labels := make([]string, 0, len(annotations))
	for _, a := range annotations {
		if a.Description != "" {
			labels = append(labels, a.Description)
		}
	}
	return labels, nil
}
