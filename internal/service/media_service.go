package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"bebo-bot-go/internal/config"
	"bebo-bot-go/pkg/log"
	"bebo-bot-go/pkg/storage"
)

// 图像识别路径的固定文案，按约定绝不向调用方抛错。
const (
	visionUnavailableText = "Bé Bơ chưa xem được ảnh ạ, anh/chị mô tả giúp em nhé!"
	visionFailedText      = "Bé Bơ gặp trục trặc khi xem ảnh, anh/chị thử gửi lại sau nhé!"
	visionNoLabelText     = "Bé Bơ nhìn mãi mà chưa nhận ra gì trong ảnh ạ."
)

// ErrTTSUnavailable 表示语音合成能力未配置。
var ErrTTSUnavailable = errors.New("text-to-speech is not configured")

// ImageLabeler 是图像标签识别能力的最小接口。
type ImageLabeler interface {
	DetectLabels(ctx context.Context, imageData []byte) ([]string, error)
}

// SpeechSynthesizer 是语音合成能力的最小接口。
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// MediaService 聚合两个可选的媒体能力。能力在进程启动时解析一次，
// 之后按在场/缺席处理，而不是在调用点到处判空。
type MediaService interface {
	HasVision() bool
	HasTTS() bool
	// AnalyzeImage 识别 data-URI 图片并返回一句描述，任何失败都退化为固定文案。
	AnalyzeImage(ctx context.Context, imageDataURI string) string
	// SynthesizeSpeech 合成语音并返回可访问的 URL。允许失败：
	// 调用方必须把失败当作"没有语音"继续，而不是中断回复。
	SynthesizeSpeech(ctx context.Context, text, fileNameHint string) (string, error)
}

type mediaService struct {
	labeler    ImageLabeler      // nil 表示能力缺席
	synth      SpeechSynthesizer // nil 表示能力缺席
	minioCfg   config.MinIOConfig
	outputDir  string
	publicBase string
}

// NewMediaService 创建媒体服务。labeler 和 synth 允许为 nil。
func NewMediaService(labeler ImageLabeler, synth SpeechSynthesizer, minioCfg config.MinIOConfig, ttsCfg config.TTSConfig) MediaService {
	outputDir := ttsCfg.OutputDir
	if outputDir == "" {
		outputDir = "data"
	}
	publicBase := ttsCfg.PublicBase
	if publicBase == "" {
		publicBase = "/data"
	}
	return &mediaService{
		labeler:    labeler,
		synth:      synth,
		minioCfg:   minioCfg,
		outputDir:  outputDir,
		publicBase: publicBase,
	}
}

func (s *mediaService) HasVision() bool { return s.labeler != nil }

func (s *mediaService) HasTTS() bool { return s.synth != nil }

// AnalyzeImage 去掉 data-URI 前缀、解码图片、识别标签并拼成一句话。
func (s *mediaService) AnalyzeImage(ctx context.Context, imageDataURI string) string {
	if s.labeler == nil {
		return visionUnavailableText
	}

	data, err := decodeImageDataURI(imageDataURI)
	if err != nil {
		log.Warnf("failed to decode image data uri: %v", err)
		return visionFailedText
	}

	labels, err := s.labeler.DetectLabels(ctx, data)
	if err != nil {
		log.Errorf("image label detection failed: %v", err)
		return visionFailedText
	}
	if len(labels) == 0 {
		return visionNoLabelText
	}
	if len(labels) > 5 {
		labels = labels[:5]
	}
	return fmt.Sprintf("Trong ảnh có thể có: %s.", strings.Join(labels, ", "))
}

// SynthesizeSpeech 合成 MP3 并按配置存到对象存储或本地目录。
func (s *mediaService) SynthesizeSpeech(ctx context.Context, text, fileNameHint string) (string, error) {
	if s.synth == nil {
		return "", ErrTTSUnavailable
	}

	audio, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		return "", err
	}

	// 文件名 = 提示词 + 当前时间，避免撞名
	fileName := fmt.Sprintf("%s-%d.mp3", sanitizeFileHint(fileNameHint), time.Now().UnixMilli())

	if s.minioCfg.Enabled && storage.MinioClient != nil {
		return storage.UploadVoiceClip(ctx, s.minioCfg, fileName, audio)
	}

	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.outputDir, fileName), audio, 0o644); err != nil {
		return "", err
	}
	return s.publicBase + "/" + fileName, nil
}

// decodeImageDataURI 去掉 "data:image/...;base64," 前缀并解码。
// 没有前缀时按裸 base64 处理。
func decodeImageDataURI(uri string) ([]byte, error) {
	encoded := uri
	if strings.HasPrefix(uri, "data:") {
		parts := strings.SplitN(uri, ",", 2)
		if len(parts) != 2 {
			return nil, errors.New("data uri has no payload")
		}
		encoded = parts[1]
	}
	return base64.StdEncoding.DecodeString(encoded)
}

// sanitizeFileHint 把提示词收敛成安全的文件名片段。
func sanitizeFileHint(hint string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(hint)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('-')
		}
	}
	out := b.String()
	if out == "" {
		return "voice"
	}
	if runes := []rune(out); len(runes) > 40 {
		out = string(runes[:40])
	}
	return out
}
