package domain

import (
	"encoding/json"
	"testing"
)

func TestConversationKeepRecentPreservesSystemTurn(t *testing.T) {
	conv := NewConversation("sys")
	for i := 0; i < 5; i++ {
		conv.Append(RoleUser, "u")
		conv.Append(RoleAssistant, "a")
	}
	conv.KeepRecent(4)

	turns := conv.Turns()
	if len(turns) != 5 {
		t.Fatalf("expected 5 turns, got %d", len(turns))
	}
	if turns[0].Role != RoleSystem || turns[0].Content != "sys" {
		t.Fatalf("system turn evicted: %+v", turns[0])
	}
	if turns[1].Role != RoleUser || turns[4].Role != RoleAssistant {
		t.Fatalf("unexpected window: %+v", turns)
	}
}

func TestConversationDropLastOnlyMatchingRole(t *testing.T) {
	conv := NewConversation("sys")
	conv.DropLast(RoleSystem)
	if conv.Len() != 1 {
		t.Fatalf("system turn must never be dropped")
	}
	conv.Append(RoleUser, "u")
	conv.DropLast(RoleAssistant)
	if conv.Len() != 2 {
		t.Fatalf("expected user turn kept, got len %d", conv.Len())
	}
	conv.DropLast(RoleUser)
	if conv.Len() != 1 {
		t.Fatalf("expected user turn dropped, got len %d", conv.Len())
	}
}

func TestGlossaryFirstOccurrenceWins(t *testing.T) {
	g := NewGlossary()
	if !g.Add("原型", "archetype", 0) {
		t.Fatalf("expected first add to succeed")
	}
	if g.Add("原型", "prototype", 3) {
		t.Fatalf("expected second gloss to be ignored")
	}
	gloss, ok := g.Lookup("原型")
	if !ok || gloss != "archetype" {
		t.Fatalf("unexpected gloss %q", gloss)
	}
}

func TestGlossaryMarshalKeepsInsertionOrder(t *testing.T) {
	g := NewGlossary()
	g.Add("Shadow", "阴影", 0)
	g.Add("Anima", "阿尼玛", 1)

	raw, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"Shadow":"阴影","Anima":"阿尼玛"}`
	if string(raw) != want {
		t.Fatalf("got %s want %s", raw, want)
	}
}
