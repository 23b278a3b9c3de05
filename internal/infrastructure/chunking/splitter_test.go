package chunking

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kirillkom/paper-translator/internal/core/domain"
)

func joinSources(chunks []domain.Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Source)
	}
	return b.String()
}

func TestSplitFourThousandCharsIntoThreeChunks(t *testing.T) {
	sentence := strings.Repeat("a", 98) + ". "
	text := strings.Repeat(sentence, 39) + strings.Repeat("a", 99) + "."
	if n := utf8.RuneCountInString(text); n != 4000 {
		t.Fatalf("fixture length = %d", n)
	}

	chunks := NewSplitter(1500).Split(text)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if utf8.RuneCountInString(c.Source) > 1500 {
			t.Fatalf("chunk %d exceeds budget", i)
		}
		if c.Index != i || c.Status != domain.ChunkPending {
			t.Fatalf("unexpected chunk header %+v", c)
		}
		if !strings.HasSuffix(strings.TrimSpace(c.Source), ".") {
			t.Fatalf("chunk %d does not end at a sentence boundary", i)
		}
	}
	if joinSources(chunks) != text {
		t.Fatalf("chunks do not reproduce the input")
	}
}

func TestSplitHardSplitsOversizedSentence(t *testing.T) {
	long := strings.Repeat("b", 3200)
	text := "Hi. " + long
	chunks := NewSplitter(1500).Split(text)

	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	if chunks[0].Source != "Hi. " {
		t.Fatalf("unexpected first chunk %q", chunks[0].Source)
	}
	if utf8.RuneCountInString(chunks[1].Source) != 1500 || utf8.RuneCountInString(chunks[3].Source) != 200 {
		t.Fatalf("unexpected hard split sizes")
	}
	if joinSources(chunks) != text {
		t.Fatalf("hard split dropped content")
	}
}

func TestSplitAttachesTrailingWhitespaceOfHardSplit(t *testing.T) {
	text := "aaaaaaaaa.\n\nbbbbbbbbb."
	chunks := NewSplitter(10).Split(text)

	want := []string{"aaaaaaaaa.\n\n", "bbbbbbbbb."}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %+v", len(want), len(chunks), chunks)
	}
	for i := range want {
		if chunks[i].Source != want[i] || chunks[i].Index != i {
			t.Fatalf("chunk %d = %+v want %q", i, chunks[i], want[i])
		}
	}
	if joinSources(chunks) != text {
		t.Fatalf("chunks do not reproduce the input")
	}
}

func TestSplitKeepsMultibyteRunesIntact(t *testing.T) {
	text := strings.Repeat("荣", 7)
	chunks := NewSplitter(3).Split(text)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if !utf8.ValidString(c.Source) {
			t.Fatalf("chunk split inside a rune: %q", c.Source)
		}
	}
	if joinSources(chunks) != text {
		t.Fatalf("chunks do not reproduce the input")
	}
}

func TestSplitBlankInput(t *testing.T) {
	if chunks := NewSplitter(10).Split(" \n\t "); chunks != nil {
		t.Fatalf("expected no chunks, got %d", len(chunks))
	}
}

func TestSentencesRecognisesCJKTerminators(t *testing.T) {
	got := Sentences("第一句。第二句！ Third one? yes")
	want := []string{"第一句。", "第二句！ ", "Third one? ", "yes"}
	if len(got) != len(want) {
		t.Fatalf("got %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sentence %d = %q want %q", i, got[i], want[i])
		}
	}
}

func TestSentencesIgnoresInnerPunctuation(t *testing.T) {
	got := Sentences("Version 2.5 is out. Next")
	if len(got) != 2 || got[0] != "Version 2.5 is out. " {
		t.Fatalf("got %q", got)
	}
}

func TestSplitIsLosslessAndBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := []rune("abc xyz.!?。\n荣格")
	for round := 0; round < 200; round++ {
		size := 1 + rng.Intn(40)
		length := rng.Intn(400)
		var b strings.Builder
		for i := 0; i < length; i++ {
			b.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		text := b.String()
		chunks := NewSplitter(size).Split(text)
		if isBlank(text) {
			continue
		}
		if joinSources(chunks) != text {
			t.Fatalf("round %d: lossy split", round)
		}
		for _, c := range chunks {
			if isBlank(c.Source) {
				t.Fatalf("round %d: whitespace-only chunk %q", round, c.Source)
			}
			if utf8.RuneCountInString(strings.TrimSpace(c.Source)) > size {
				t.Fatalf("round %d: chunk over budget %d: %q", round, size, c.Source)
			}
		}
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	text := strings.Repeat("One sentence here. Another one! ", 80)
	a := NewSplitter(200).Split(text)
	b := NewSplitter(200).Split(text)
	if len(a) != len(b) {
		t.Fatalf("chunk counts differ")
	}
	for i := range a {
		if a[i].Source != b[i].Source {
			t.Fatalf("chunk %d differs", i)
		}
	}
}
