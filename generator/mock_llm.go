package generator

import (
	"context"
	"encoding/base64"
	"strings"
)

// 1x1 PNG，用于本地调试时的示意图占位。
const mockPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// MockLLM 一个简单的占位实现，便于本地调试，不调用外部模型。
type MockLLM struct{}

func (m MockLLM) GenerateText(_ context.Context, req TextRequest) (TextResponse, error) {
	// 故意包一层代码块，和真实模型偶尔的输出一致。
	var sb strings.Builder
	sb.WriteString("```html\n")
	sb.WriteString("<h2>教材分析</h2><p>本地调试内容，未调用外部模型。</p>\n")
	sb.WriteString("<h2>教学重点</h2><ul><li>示例重点</li></ul>\n")
	sb.WriteString("<h2>教学难点</h2><p>示例难点</p>\n")
	sb.WriteString("<h2>难点成因分析</h2><p>示例成因</p>\n")
	sb.WriteString("<h2>突破难点的教学策略/方法</h2><p>示例策略</p>\n")
	sb.WriteString("```")
	return TextResponse{
		Text: sb.String(),
		References: []WebReference{
			{Title: "鲁科版高中物理教材", URI: "https://example.com/lk-physics"},
		},
	}, nil
}

func (m MockLLM) GenerateImage(_ context.Context, _ ImageRequest) (ImageResponse, error) {
	raw, err := base64.StdEncoding.DecodeString(mockPNG)
	if err != nil {
		return ImageResponse{}, err
	}
	return ImageResponse{Parts: []ImagePart{{Data: raw, MIMEType: "image/png"}}}, nil
}
