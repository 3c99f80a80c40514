// Package exporter turns a generated article into a self-contained Word-compatible document.
package exporter

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"strings"

	"lesson_prep_assistant/generator"
)

const (
	// ContentType makes browsers hand the file to Word.
	ContentType    = "application/msword"
	FilenamePrefix = "鲁科版物理"
	FilenameSuffix = "备课资料"
	Byline         = "来源：福建省高中物理备课助手 (基于鲁科版教材)"
)

// utf8BOM forces Word to detect UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var ErrNoArticle = errors.New("no article to export")

// Document is the exported artifact.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ContentDisposition returns an attachment header; non-ASCII names use RFC 2231 encoding.
func (d Document) ContentDisposition() string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": d.Filename})
}

type docData struct {
	Topic     string
	Byline    string
	Image     *docImage
	Body      template.HTML
	Citations []generator.Citation
}

type docImage struct {
	Src template.URL
}

var docTmpl = template.Must(template.New("doc").Parse(`<html xmlns:o='urn:schemas-microsoft-com:office:office' xmlns:w='urn:schemas-microsoft-com:office:word' xmlns='http://www.w3.org/TR/REC-html40'>
<head>
<meta charset='utf-8'>
<title>{{.Topic}} - 教学难点分析</title>
<style>
body { font-family: 'SimSun', 'Songti SC', serif; line-height: 1.5; }
h1 { font-size: 24pt; color: #000; text-align: center; }
h2 { font-size: 18pt; color: #333; margin-top: 15pt; border-bottom: 1px solid #ccc; padding-bottom: 5pt; }
p { font-size: 12pt; text-align: justify; }
ul, ol { margin-bottom: 10pt; }
li { font-size: 12pt; margin-bottom: 5pt; }
</style>
</head>
<body>
<h1>{{.Topic}} - 教学重难点及突破策略</h1>
<p style="text-align: center; color: #666; font-size: 10pt;">{{.Byline}}</p>
<hr/>
{{- with .Image}}
<div style="text-align:center; margin: 20px 0;"><img src="{{.Src}}" alt="{{$.Topic}} 示意图" style="max-width: 100%; height: auto; border: 1px solid #ddd;" /><br/><small>图：{{$.Topic}} 教学示意图 (AI生成)</small></div>
{{- end}}
<div class="content">
{{.Body}}
</div>
<hr/>
<h3>参考来源</h3>
<ul>
{{- range .Citations}}
<li><a href="{{.URI}}">{{.Title}}</a></li>
{{- end}}
</ul>
</body>
</html>
`))

// Export renders the article and optional diagram. Output is deterministic for equal inputs.
func Export(article generator.Article, diagram *generator.Diagram) (Document, error) {
	if strings.TrimSpace(article.Body) == "" {
		return Document{}, ErrNoArticle
	}

	data := docData{
		Topic:     article.Topic,
		Byline:    Byline,
		Body:      template.HTML(article.Body),
		Citations: article.Citations,
	}
	if diagram != nil && diagram.Data != "" {
		data.Image = &docImage{Src: template.URL(diagram.DataURI())}
	}

	var buf bytes.Buffer
	buf.Write(utf8BOM)
	if err := docTmpl.Execute(&buf, data); err != nil {
		return Document{}, fmt.Errorf("render document: %w", err)
	}

	return Document{
		Filename:    Filename(article.Topic),
		ContentType: ContentType,
		Body:        buf.Bytes(),
	}, nil
}

var filenameReplacer = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_", "\n", "_", "\r", "_",
)

// Filename 固定前缀 + 主题 + 固定后缀；重复导出同名覆盖，不做去重。
func Filename(topic string) string {
	return fmt.Sprintf("%s-%s-%s.doc", FilenamePrefix, filenameReplacer.Replace(strings.TrimSpace(topic)), FilenameSuffix)
}
