package generator

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// DefaultThinkingBudget bounds the model's reasoning allowance on the text call.
const DefaultThinkingBudget = 1024

// Planner 是编排器依赖的两步生成能力。
type Planner interface {
	GeneratePlan(ctx context.Context, topic string) (Article, error)
	GenerateDiagram(ctx context.Context, topic string) (Diagram, bool)
}

// Agent 负责根据主题生成教学文章和示意图。
type Agent struct {
	text      TextModel
	image     ImageModel
	sanitizer Sanitizer
	budget    int
	logger    *zap.Logger
}

type AgentOption func(*Agent)

// WithSanitizer overrides the markup filter; nil disables sanitizing.
func WithSanitizer(s Sanitizer) AgentOption {
	return func(a *Agent) { a.sanitizer = s }
}

func WithThinkingBudget(n int) AgentOption {
	return func(a *Agent) { a.budget = n }
}

func WithLogger(l *zap.Logger) AgentOption {
	return func(a *Agent) {
		if l != nil {
			a.logger = l
		}
	}
}

func NewAgent(text TextModel, image ImageModel, opts ...AgentOption) (*Agent, error) {
	if text == nil {
		return nil, errors.New("text model is required")
	}
	a := &Agent{
		text:      text,
		image:     image,
		sanitizer: NewSanitizer(),
		budget:    DefaultThinkingBudget,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// GeneratePlan 调用检索增强的文本生成，返回规范化后的文章。
func (a *Agent) GeneratePlan(ctx context.Context, topic string) (Article, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Article{}, ErrEmptyTopic
	}

	resp, err := a.text.GenerateText(ctx, TextRequest{
		Prompt:         BuildTeachingPlanPrompt(topic),
		WebSearch:      true,
		ThinkingBudget: a.budget,
	})
	if err != nil {
		a.logger.Error("text generation failed", zap.String("topic", topic), zap.Error(err))
		return Article{}, classify("generate text", err)
	}

	body, err := NormalizeBody(resp.Text, a.sanitizer)
	if err != nil {
		return Article{}, &UpstreamError{Op: "normalize text", Err: err}
	}
	citations := MapCitations(resp.References)
	a.logger.Info("teaching plan generated",
		zap.String("topic", topic),
		zap.Int("body_bytes", len(body)),
		zap.Int("citations", len(citations)))

	return Article{Topic: topic, Body: body, Citations: citations}, nil
}

// GenerateDiagram 尽力生成示意图；任何失败只记录 warn，返回 false。
func (a *Agent) GenerateDiagram(ctx context.Context, topic string) (d Diagram, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("diagram generation panicked", zap.String("topic", topic), zap.Any("panic", r))
			d, ok = Diagram{}, false
		}
	}()
	if a.image == nil {
		a.logger.Warn("diagram skipped", zap.String("topic", topic), zap.Error(ErrImageUnsupported))
		return Diagram{}, false
	}
	resp, err := a.image.GenerateImage(ctx, ImageRequest{Prompt: BuildDiagramPrompt(topic)})
	if err != nil {
		a.logger.Warn("diagram generation failed", zap.String("topic", topic), zap.Error(classify("generate image", err)))
		return Diagram{}, false
	}
	for _, p := range resp.Parts {
		if len(p.Data) == 0 {
			continue
		}
		mime := p.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		return Diagram{Data: base64.StdEncoding.EncodeToString(p.Data), MIMEType: mime}, true
	}
	a.logger.Warn("diagram response had no image part", zap.String("topic", topic))
	return Diagram{}, false
}
