package generator

import (
	"context"

	"go.uber.org/zap"
)

// TextModel 抽象文本生成客户端，便于替换/Mock。
type TextModel interface {
	GenerateText(ctx context.Context, req TextRequest) (TextResponse, error)
}

// ImageModel 抽象图片生成客户端。
type ImageModel interface {
	GenerateImage(ctx context.Context, req ImageRequest) (ImageResponse, error)
}

// TextRequest is one grounded text-generation call.
type TextRequest struct {
	Prompt         string
	WebSearch      bool
	ThinkingBudget int
}

// WebReference is the provider-neutral shape of a grounding chunk.
type WebReference struct {
	Title string
	URI   string
}

type TextResponse struct {
	Text       string
	References []WebReference
}

type ImageRequest struct {
	Prompt string
}

// ImagePart is one content part; Data is empty for non-image parts.
type ImagePart struct {
	Data     []byte
	MIMEType string
}

type ImageResponse struct {
	Parts []ImagePart
}

// LLMSettings 提供给具体实现的基础配置。
type LLMSettings struct {
	Provider   string
	TextModel  string
	ImageModel string
	APIKey     string
	BaseURL    string
	// Logger 可选，nil 时不输出。
	Logger *zap.Logger
}
