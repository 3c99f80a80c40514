package generator

import (
	"fmt"
	"strings"
)

// TeachingSections 是文章必须包含的五个部分，按顺序排列。
var TeachingSections = []string{"教材分析", "教学重点", "教学难点", "难点成因分析", "突破难点的教学策略/方法"}

// BuildTeachingPlanPrompt 生成教学重难点分析的提示词（鲁科版教材语境）。
func BuildTeachingPlanPrompt(topic string) string {
	quoted := make([]string, len(TeachingSections))
	for i, s := range TeachingSections {
		quoted[i] = "“" + s + "”"
	}

	var sb strings.Builder
	sb.WriteString("你是一名福建省的高中物理教师，拥有丰富的教学经验。你正在使用“山东科学技术出版社”（鲁科版）的高中物理教材进行备课。\n\n")
	sb.WriteString(fmt.Sprintf("请针对知识模块：“%s”，利用网络搜索功能，撰写一篇详细的教学重难点分析与解决方案的文章。\n\n", topic))
	sb.WriteString("文章要求：\n")
	sb.WriteString(fmt.Sprintf("1. **结构清晰**：包含%s%s个部分。\n", strings.Join(quoted, "、"), chineseCount(len(TeachingSections))))
	sb.WriteString("2. **针对性强**：内容必须紧扣“鲁科版”教材的特点（例如该教材重视实验探究、重视物理模型构建等特点）。\n")
	sb.WriteString("3. **格式要求**：请直接输出语义化的 HTML 字符串（例如使用 <h2>, <p>, <ul>, <li>, <strong> 等标签），不要包含 <html>, <head>, <body> 标签。不要使用 Markdown 格式。\n")
	sb.WriteString("4. **引用资源**：如果搜索到了具体的网络资源（如教案、论文、优质课），请在文章中提及。\n\n")
	sb.WriteString("请确保输出的内容适合直接复制粘贴到 Word 文档中。\n")
	return sb.String()
}

// BuildDiagramPrompt 生成示意图提示词。
func BuildDiagramPrompt(topic string) string {
	return fmt.Sprintf("Draw a clear, educational physics diagram explaining the concept of %q. High contrast, white background, textbook style.", topic)
}

func chineseCount(n int) string {
	digits := []string{"零", "一", "二", "三", "四", "五", "六", "七", "八", "九"}
	if n >= 0 && n < len(digits) {
		return digits[n]
	}
	return fmt.Sprint(n)
}
