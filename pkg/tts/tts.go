// Package tts 封装 Google Cloud Text-to-Speech 的语音合成能力。
package tts

import (
	"context"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"

	"bebo-bot-go/internal/config"
)

// Synthesizer 把文本合成为 MP3 音频。
type Synthesizer struct {
	c            *texttospeech.Client
	languageCode string
	voice        string
}

// NewSynthesizer 创建语音合成客户端。凭证文件未配置时走默认凭证链。
func NewSynthesizer(ctx context.Context, cfg config.TTSConfig) (*Synthesizer, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	c, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tts client: %w", err)
	}
	languageCode := cfg.LanguageCode
	if languageCode == "" {
		languageCode = "vi-VN"
	}
	return &Synthesizer{c: c, languageCode: languageCode, voice: cfg.Voice}, nil
}

// Close 释放底层连接。
func (s *Synthesizer) Close() error { return s.c.Close() }

// Synthesize 用固定的音色和语言合成文本，返回 MP3 字节。
func (s *Synthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := s.c.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: s.languageCode,
			Name:         s.voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}
	return resp.AudioContent, nil
}
