package interpreter

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/planetbeauty/bella-shopping-assistant/model"
	"google.golang.org/genai"
)

func TestContentsFromHistory_DropsEmptyTurns(t *testing.T) {
	history := []model.ChatTurn{
		{Role: "user", Text: "hi"},
		{Role: "assistant", Text: "   "},
		{Role: "user", Text: ""},
		{Role: "assistant", Text: "hello"},
	}

	contents := contentsFromHistory(history)

	if len(contents) != 2 {
		t.Fatalf("expected 2 contents, got %d", len(contents))
	}
}

func TestContentsFromHistory_KeepsOnlyMostRecentTurns(t *testing.T) {
	var history []model.ChatTurn
	for i := 0; i < 10; i++ {
		history = append(history, model.ChatTurn{Role: "user", Text: fmt.Sprintf("turn %d", i)})
	}

	contents := contentsFromHistory(history)

	if len(contents) != maxHistoryTurns {
		t.Fatalf("expected %d contents, got %d", maxHistoryTurns, len(contents))
	}
	if got := contents[0].Parts[0].Text; got != "turn 4" {
		t.Errorf("expected oldest kept turn to be 'turn 4', got %q", got)
	}
	if got := contents[len(contents)-1].Parts[0].Text; got != "turn 9" {
		t.Errorf("expected newest turn last, got %q", got)
	}
}

func TestContentsFromHistory_RoleMapping(t *testing.T) {
	history := []model.ChatTurn{
		{Role: "user", Text: "a"},
		{Role: "assistant", Text: "b"},
		{Role: "bot", Text: "c"},
		{Role: "model", Text: "d"},
		{Role: "something-else", Text: "e"},
	}

	contents := contentsFromHistory(history)

	wantRoles := []genai.Role{genai.RoleUser, genai.RoleModel, genai.RoleModel, genai.RoleModel, genai.RoleUser}
	for i, want := range wantRoles {
		if contents[i].Role != string(want) {
			t.Errorf("turn %d: role = %q, want %q", i, contents[i].Role, want)
		}
	}
}

func TestParseInterpretation_Valid(t *testing.T) {
	raw := `{"ai_understanding": "U", "advice": "A", "search_keywords": "K"}`

	got, err := parseInterpretation(raw)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AIUnderstanding != "U" || got.Advice != "A" || got.SearchKeywords != "K" {
		t.Errorf("unexpected interpretation: %+v", got)
	}
}

func TestParseInterpretation_EmptyKeywordsAllowed(t *testing.T) {
	raw := `{"ai_understanding": "U", "advice": "A", "search_keywords": ""}`

	got, err := parseInterpretation(raw)

	if err != nil {
		t.Fatalf("empty keyword string is a valid interpretation: %v", err)
	}
	if got.SearchKeywords != "" {
		t.Errorf("expected empty keywords, got %q", got.SearchKeywords)
	}
}

func TestTruncate_KeepsRuneBoundaries(t *testing.T) {
	s := strings.Repeat("é", 100) // 2 bytes per rune

	got := truncate(s, 101)

	if !utf8.ValidString(got) {
		t.Errorf("truncate must not split a rune, got %q", got)
	}
	if len(got) != 100 {
		t.Errorf("expected 100 bytes after backing off, got %d", len(got))
	}
	if short := truncate("abc", 10); short != "abc" {
		t.Errorf("short input must pass through, got %q", short)
	}
}

func TestParseInterpretation_MissingKeyRejected(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no understanding", `{"advice": "A", "search_keywords": "K"}`},
		{"no advice", `{"ai_understanding": "U", "search_keywords": "K"}`},
		{"no keywords", `{"ai_understanding": "U", "advice": "A"}`},
		{"not json", `understanding: yes`},
		{"json array", `["U", "A", "K"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseInterpretation(tt.raw); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
