package generator

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

// OpenAILLM implements TextModel and ImageModel using the official openai-go SDK
// (chat completions + images). DeepSeek reuses it through an OpenAI-compatible base_url.
type OpenAILLM struct {
	Model      string
	ImageModel string
	Opts       []option.RequestOption
	// WebSearch 表示该端点支持 web_search_options；DeepSeek 不支持。
	WebSearch bool

	hasKey   bool
	logger   *zap.Logger
	warnOnce sync.Once
}

func NewOpenAILLMFromConfig(cfg *LLMSettings) (*OpenAILLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.TextModel == "" {
		return nil, errors.New("llm model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAILLM{
		Model:      cfg.TextModel,
		ImageModel: cfg.ImageModel,
		Opts:       opts,
		WebSearch:  !strings.EqualFold(cfg.Provider, "deepseek"),
		hasKey:     cfg.APIKey != "",
		logger:     logger,
	}, nil
}

func (o *OpenAILLM) GenerateText(ctx context.Context, req TextRequest) (TextResponse, error) {
	if !o.hasKey {
		return TextResponse{}, ErrMissingCredential
	}
	client := openai.NewClient(o.Opts...)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
	}
	if req.WebSearch {
		if o.WebSearch {
			// 空结构体会被 omitzero 省略，需显式给出 search_context_size。
			params.WebSearchOptions = openai.ChatCompletionNewParamsWebSearchOptions{
				SearchContextSize: "medium",
			}
		} else {
			o.warnOnce.Do(func() {
				o.logger.Warn("web search grounding is not available on this endpoint; answers will have no citations",
					zap.String("model", o.Model))
			})
		}
	}
	if effort := reasoningEffort(o.Model, req.ThinkingBudget); effort != "" {
		params.ReasoningEffort = effort
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return TextResponse{}, err
	}
	if len(resp.Choices) == 0 {
		return TextResponse{}, errors.New("openai: empty choices")
	}
	msg := resp.Choices[0].Message
	out := TextResponse{Text: msg.Content}
	for _, a := range msg.Annotations {
		if a.URLCitation.URL == "" {
			continue
		}
		out.References = append(out.References, WebReference{Title: a.URLCitation.Title, URI: a.URLCitation.URL})
	}
	return out, nil
}

// reasoningEffort 把思考 token 预算折算为 reasoning_effort；非推理模型不设置。
func reasoningEffort(model string, budget int) openai.ReasoningEffort {
	if budget <= 0 || !isReasoningModel(model) {
		return ""
	}
	switch {
	case budget <= 2048:
		return openai.ReasoningEffortLow
	case budget <= 8192:
		return openai.ReasoningEffortMedium
	default:
		return openai.ReasoningEffortHigh
	}
}

func isReasoningModel(model string) bool {
	m := strings.ToLower(model)
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}

func (o *OpenAILLM) GenerateImage(ctx context.Context, req ImageRequest) (ImageResponse, error) {
	if !o.hasKey {
		return ImageResponse{}, ErrMissingCredential
	}
	if o.ImageModel == "" {
		return ImageResponse{}, ErrImageUnsupported
	}
	client := openai.NewClient(o.Opts...)

	resp, err := client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         req.Prompt,
		Model:          openai.ImageModel(o.ImageModel),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	})
	if err != nil {
		return ImageResponse{}, err
	}
	var out ImageResponse
	for _, img := range resp.Data {
		if img.B64JSON == "" {
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(img.B64JSON)
		if err != nil {
			return ImageResponse{}, err
		}
		out.Parts = append(out.Parts, ImagePart{Data: raw, MIMEType: "image/png"})
	}
	return out, nil
}
