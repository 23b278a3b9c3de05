package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kirillkom/paper-translator/internal/core/domain"
	"github.com/kirillkom/paper-translator/internal/core/ports"
)

const metadataHeadRunes = 4000

const metadataPrompt = `你是一个学术文献元数据提取专家。请分析下面这段学术论文开头的文本，并以JSON格式返回其核心元数据。

---
%s
---

要求：
1. 识别文章的完整标题、所有作者的全名以及出版年份。
2. 回答必须是且仅是一个格式正确的JSON对象，包含三个键："title", "author", "year"。
3. 不要包含任何JSON之外的解释或markdown标记。`

// MetadataExtractor asks the chat service for title, author and year of a
// paper using the head of its raw text.
type MetadataExtractor struct {
	chat    ports.ChatCompleter
	timeout time.Duration
}

func NewMetadataExtractor(chat ports.ChatCompleter, timeout time.Duration) *MetadataExtractor {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &MetadataExtractor{chat: chat, timeout: timeout}
}

func (m *MetadataExtractor) ExtractMetadata(ctx context.Context, head string) (domain.Metadata, error) {
	if strings.TrimSpace(head) == "" {
		return domain.Metadata{}, domain.WrapError(domain.ErrInvalidInput, "extract metadata", fmt.Errorf("empty text"))
	}
	head = truncateRunes(head, metadataHeadRunes)

	raw, err := m.chat.Complete(ctx, domain.ChatRequest{
		Turns:       []domain.Turn{{Role: domain.RoleUser, Content: fmt.Sprintf(metadataPrompt, head)}},
		Timeout:     m.timeout,
		Temperature: 0,
	})
	if err != nil {
		return domain.Metadata{}, err
	}
	return ParseMetadata(raw)
}

// ParseMetadata decodes a metadata reply. Year may arrive as a string or a
// number.
func ParseMetadata(raw string) (domain.Metadata, error) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(ExtractJSONObject(raw)), &payload); err != nil {
		return domain.Metadata{}, domain.WrapError(domain.ErrMetadataParse, "parse metadata json", err)
	}
	md := domain.Metadata{
		Title:  stringField(payload["title"]),
		Author: stringField(payload["author"]),
		Year:   stringField(payload["year"]),
	}
	if md.Title == "" && md.Author == "" && md.Year == "" {
		return domain.Metadata{}, domain.WrapError(domain.ErrMetadataParse, "parse metadata json", fmt.Errorf("no known keys"))
	}
	return md, nil
}

func stringField(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return fmt.Sprintf("%.0f", t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := stringField(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
