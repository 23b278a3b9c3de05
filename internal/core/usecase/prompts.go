package usecase

import (
	"fmt"
	"strings"
)

const defaultSystemPrompt = `你是一位专业的翻译专家，专门从事心理学和神秘学文献的翻译。请遵循以下要求：

专业术语一致性：
- 荣格心理学：集体无意识、原型、阴影、人格面具、自性化、阿尼玛、阿尼姆斯等
- 塔罗牌：大阿卡纳、小阿卡纳、愚者、魔术师、女祭司、皇后、皇帝等
- 保持学术严谨性，专业术语前后统一

翻译风格：
- 学术性但不过于晦涩
- 保持原文的哲学深度和象征意义
- 文化概念要准确传达，必要时添加简要说明
- 语言流畅自然，符合中文表达习惯

注意事项：
- 保留重要的专业术语英文原文（首次出现时用括号标注）
- 保持段落结构和逻辑连贯性
- 特别注意象征性语言和隐喻的准确传达`

const (
	defaultDomainHint    = "特别注意荣格心理学和塔罗牌专业术语的准确翻译"
	defaultFailurePrefix = "翻译错误"

	continuityHint = "请基于前文内容，保持术语和风格的一致性"
	lookaheadHint  = "请确保本部分结尾自然衔接后续内容"
)

// Prompts holds the wording sent to the chat service. Empty fields fall
// back to the built-in academic psychology persona.
type Prompts struct {
	System        string `yaml:"system"`
	DomainHint    string `yaml:"domain_hint"`
	FailurePrefix string `yaml:"failure_prefix"`
}

func DefaultPrompts() Prompts {
	return Prompts{
		System:        defaultSystemPrompt,
		DomainHint:    defaultDomainHint,
		FailurePrefix: defaultFailurePrefix,
	}
}

func (p Prompts) withDefaults() Prompts {
	d := DefaultPrompts()
	if strings.TrimSpace(p.System) == "" {
		p.System = d.System
	}
	if strings.TrimSpace(p.FailurePrefix) == "" {
		p.FailurePrefix = d.FailurePrefix
	}
	return p
}

// UserTurn builds the request text for chunk index of total.
func (p Prompts) UserTurn(title string, index, total int, chunk string) string {
	var hints []string
	if index > 0 {
		hints = append(hints, continuityHint)
	}
	if index < total-1 {
		hints = append(hints, lookaheadHint)
	}
	if hint := strings.TrimSpace(p.DomainHint); hint != "" {
		hints = append(hints, hint)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "《%s》翻译任务\n\n", title)
	if len(hints) > 0 {
		b.WriteString(strings.Join(hints, "。"))
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "当前翻译片段（第%d/%d部分）：\n%s\n\n", index+1, total, chunk)
	b.WriteString("请提供专业准确的中文翻译，保持学术严谨性和语言流畅性：")
	return b.String()
}

// FailureMarker is the placeholder translation of a chunk whose call failed.
func (p Prompts) FailureMarker(reason string) string {
	return fmt.Sprintf("[%s: %s]", p.FailurePrefix, reason)
}
