package generator

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"
)

// GeminiLLM implements TextModel and ImageModel using the official genai SDK.
type GeminiLLM struct {
	TextModelName  string
	ImageModelName string
	client         *genai.Client
}

// NewGeminiLLMFromConfig builds the adapter. A missing API key is not an error here:
// calls fail with ErrMissingCredential instead, so the UI can report it.
func NewGeminiLLMFromConfig(cfg *LLMSettings) (*GeminiLLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.TextModel == "" {
		return nil, errors.New("llm text model is required")
	}
	g := &GeminiLLM{TextModelName: cfg.TextModel, ImageModelName: cfg.ImageModel}
	if cfg.APIKey == "" {
		return g, nil
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, err
	}
	g.client = client
	return g, nil
}

func (g *GeminiLLM) GenerateText(ctx context.Context, req TextRequest) (TextResponse, error) {
	if g.client == nil {
		return TextResponse{}, ErrMissingCredential
	}
	cfg := &genai.GenerateContentConfig{}
	if req.WebSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	if req.ThinkingBudget > 0 {
		budget := int32(req.ThinkingBudget)
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: &budget}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.TextModelName, genai.Text(req.Prompt), cfg)
	if err != nil {
		return TextResponse{}, err
	}
	if len(resp.Candidates) == 0 {
		return TextResponse{}, errors.New("gemini: empty candidates")
	}
	cand := resp.Candidates[0]

	var sb strings.Builder
	if cand.Content != nil {
		for _, p := range cand.Content.Parts {
			if p == nil || p.Thought {
				continue
			}
			sb.WriteString(p.Text)
		}
	}

	out := TextResponse{Text: sb.String()}
	if cand.GroundingMetadata != nil {
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil {
				continue
			}
			out.References = append(out.References, WebReference{Title: chunk.Web.Title, URI: chunk.Web.URI})
		}
	}
	return out, nil
}

func (g *GeminiLLM) GenerateImage(ctx context.Context, req ImageRequest) (ImageResponse, error) {
	if g.client == nil {
		return ImageResponse{}, ErrMissingCredential
	}
	if g.ImageModelName == "" {
		return ImageResponse{}, ErrImageUnsupported
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.ImageModelName, genai.Text(req.Prompt), nil)
	if err != nil {
		return ImageResponse{}, err
	}
	var out ImageResponse
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out, nil
	}
	for _, p := range resp.Candidates[0].Content.Parts {
		if p == nil || p.InlineData == nil {
			continue
		}
		out.Parts = append(out.Parts, ImagePart{Data: p.InlineData.Data, MIMEType: p.InlineData.MIMEType})
	}
	return out, nil
}
