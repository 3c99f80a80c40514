package generator

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// EmptyResponseText 模型未返回文本时的兜底内容。
const EmptyResponseText = "无法生成内容，请重试。"

var (
	fenceRe = regexp.MustCompile("```[A-Za-z0-9_+-]*")
	tagRe   = regexp.MustCompile(`<[A-Za-z][^>]*>`)
)

// Sanitizer filters model markup before it is stored or exported.
type Sanitizer interface {
	Sanitize(string) string
}

// NewSanitizer returns the UGC policy: structural tags and links are kept, scripts and handlers dropped.
func NewSanitizer() Sanitizer {
	return bluemonday.UGCPolicy()
}

// StripCodeFences removes every markdown fence marker (with or without a language tag).
func StripCodeFences(text string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))
}

// NormalizeBody turns raw model output into the stored HTML fragment.
func NormalizeBody(raw string, sanitizer Sanitizer) (string, error) {
	text := raw
	if strings.TrimSpace(text) == "" {
		text = EmptyResponseText
	}
	body := StripCodeFences(text)

	// 模型偶尔无视格式要求直接给 Markdown，这里兜底转换。
	if !tagRe.MatchString(body) {
		html, err := mdToHTML(body)
		if err != nil {
			return "", err
		}
		body = strings.TrimSpace(html)
	}

	if sanitizer != nil {
		body = sanitizer.Sanitize(body)
	}
	// 再剥一次，确保不残留 ```。
	return StripCodeFences(body), nil
}

// MapCitations drops references without a usable URI and keeps upstream order.
func MapCitations(refs []WebReference) []Citation {
	out := make([]Citation, 0, len(refs))
	for _, r := range refs {
		uri := strings.TrimSpace(r.URI)
		if uri == "" {
			continue
		}
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = uri
		}
		out = append(out, Citation{Title: title, URI: uri})
	}
	return out
}

func mdToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
