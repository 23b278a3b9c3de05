package llm

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kirillkom/paper-translator/internal/core/domain"
)

type fakeChat struct {
	reply string
	err   error
	last  domain.ChatRequest
}

func (f *fakeChat) Complete(_ context.Context, req domain.ChatRequest) (string, error) {
	f.last = req
	return f.reply, f.err
}

func TestParseMetadataStripsFences(t *testing.T) {
	raw := "```json\n{\"title\": \"Automating Agroecology\", \"author\": \"Lenora Ditzler and Clemens Driessen\", \"year\": 2022}\n```"
	md, err := ParseMetadata(raw)
	if err != nil {
		t.Fatalf("ParseMetadata() error = %v", err)
	}
	if md.Title != "Automating Agroecology" || md.Year != "2022" || !strings.HasPrefix(md.Author, "Lenora") {
		t.Fatalf("unexpected metadata %+v", md)
	}
}

func TestParseMetadataRejectsGarbage(t *testing.T) {
	_, err := ParseMetadata("I could not find any metadata.")
	if !domain.IsKind(err, domain.ErrMetadataParse) {
		t.Fatalf("expected ErrMetadataParse, got %v", err)
	}
}

func TestExtractMetadataSendsHeadOnly(t *testing.T) {
	chat := &fakeChat{reply: `{"title":"T","author":"A","year":"1999"}`}
	extractor := NewMetadataExtractor(chat, 0)

	head := strings.Repeat("é", 5000)
	if _, err := extractor.ExtractMetadata(context.Background(), head); err != nil {
		t.Fatalf("ExtractMetadata() error = %v", err)
	}
	if len(chat.last.Turns) != 1 {
		t.Fatalf("expected a single user turn, got %d", len(chat.last.Turns))
	}
	if got := strings.Count(chat.last.Turns[0].Content, "é"); got != metadataHeadRunes {
		t.Fatalf("expected %d head runes, got %d", metadataHeadRunes, got)
	}
	if !utf8.ValidString(chat.last.Turns[0].Content) {
		t.Fatalf("prompt is not valid utf-8")
	}
	if chat.last.Timeout <= 0 {
		t.Fatalf("expected a call timeout")
	}
}
