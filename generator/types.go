package generator

// Citation 是检索增强返回的一条网络来源，顺序与上游一致。
type Citation struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Article 是一次成功文本生成的结果。Body 为语义化 HTML 片段，不含 html/head/body。
type Article struct {
	Topic     string     `json:"topic"`
	Body      string     `json:"html"`
	Citations []Citation `json:"citations"`
}

// Diagram 是 AI 生成的示意图（base64 编码）。
type Diagram struct {
	Data     string `json:"data"`
	MIMEType string `json:"mime_type"`
}

// DataURI returns the diagram as an inline data URI.
func (d Diagram) DataURI() string {
	return "data:" + d.MIMEType + ";base64," + d.Data
}

// DisplayCitationLimit caps how many sources the article view shows.
const DisplayCitationLimit = 5

// TopCitations returns at most limit citations, keeping upstream order.
func TopCitations(cs []Citation, limit int) []Citation {
	if limit < 0 || len(cs) <= limit {
		return cs
	}
	return cs[:limit]
}

// Presets are the shortcut topics offered on the entry view.
var Presets = []string{"平抛运动", "楞次定律", "动量守恒"}
