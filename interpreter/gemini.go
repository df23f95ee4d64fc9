// Package interpreter turns a raw user query plus conversation history
// into a typed understanding/advice/keywords triple using Gemini.
package interpreter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/planetbeauty/bella-shopping-assistant/model"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultModel = "gemini-1.5-flash-latest"

	// maxHistoryTurns caps how much conversation context is replayed to
	// the model; older turns are dropped.
	maxHistoryTurns = 6

	interpretTimeout = 30 * time.Second
)

// GeminiInterpreter calls Gemini in JSON mode and validates the response
// against the Interpretation contract.
type GeminiInterpreter struct {
	client *genai.Client
	model  string
}

// NewGeminiInterpreter builds the client from GEMINI_API_KEY and
// GEMINI_MODEL_NAME.
func NewGeminiInterpreter(ctx context.Context) (*GeminiInterpreter, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	modelName := os.Getenv("GEMINI_MODEL_NAME")
	if modelName == "" {
		modelName = defaultModel
	}

	return &GeminiInterpreter{client: client, model: modelName}, nil
}

// Interpret asks the model for an understanding summary, advice text and
// a keyword phrase for the product search. Any malformed response is an
// error; callers treat interpreter failure as fatal for the request.
func (g *GeminiInterpreter) Interpret(ctx context.Context, query string, history []model.ChatTurn) (*model.Interpretation, error) {
	ctx, cancel := context.WithTimeout(ctx, interpretTimeout)
	defer cancel()

	contents := contentsFromHistory(history)
	contents = append(contents, genai.NewContentFromText(query, genai.RoleUser))

	temperature := float32(0.5)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction(query)}}},
		ResponseMIMEType:  "application/json",
		Temperature:       &temperature,
		MaxOutputTokens:   500,
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("gemini returned no text")
	}

	interpretation, err := parseInterpretation(text)
	if err != nil {
		logger.Error("Invalid interpretation payload", zap.Error(err), zap.String("raw", truncate(text, 200)))
		return nil, err
	}
	return interpretation, nil
}

// contentsFromHistory drops empty turns, keeps only the most recent
// maxHistoryTurns and maps widget roles onto the Gemini roles.
func contentsFromHistory(history []model.ChatTurn) []*genai.Content {
	kept := make([]model.ChatTurn, 0, len(history))
	for _, turn := range history {
		if strings.TrimSpace(turn.Text) == "" {
			continue
		}
		kept = append(kept, turn)
	}
	if len(kept) > maxHistoryTurns {
		kept = kept[len(kept)-maxHistoryTurns:]
	}

	contents := make([]*genai.Content, 0, len(kept))
	for _, turn := range kept {
		role := genai.Role(genai.RoleUser)
		if turn.Role == "assistant" || turn.Role == "bot" || turn.Role == "model" {
			role = genai.Role(genai.RoleModel)
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	return contents
}

// parseInterpretation enforces the three-string-field contract; anything
// else is a failure.
func parseInterpretation(raw string) (*model.Interpretation, error) {
	var payload struct {
		AIUnderstanding *string `json:"ai_understanding"`
		Advice          *string `json:"advice"`
		SearchKeywords  *string `json:"search_keywords"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("parse interpretation JSON: %w", err)
	}
	if payload.AIUnderstanding == nil || payload.Advice == nil || payload.SearchKeywords == nil {
		return nil, fmt.Errorf("interpretation JSON missing required keys")
	}
	return &model.Interpretation{
		AIUnderstanding: *payload.AIUnderstanding,
		Advice:          *payload.Advice,
		SearchKeywords:  *payload.SearchKeywords,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Back off to a rune boundary so the fragment stays valid UTF-8.
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func systemInstruction(query string) string {
	return fmt.Sprintf(`You are Bella, Planet Beauty's expert AI shopping assistant.
Your tasks based on the LATEST user query (%q):
1.  Understand the user's core need or question.
2.  Extract the key terms or intent suitable for a product search (e.g., "pore tightening", "acne", "hydrating serum").
3.  Generate a concise "ai_understanding" text summarizing the user's request.
4.  Generate helpful "advice" text related to the request (e.g., usage tips, general recommendations). If the user asks for a routine, provide it in the advice using simple HTML lists (ul, li) if appropriate.
5.  Return ONLY a valid JSON object string with the keys "ai_understanding", "advice", and "search_keywords" (a string of keywords for vector search).

Example Input Query: "I need product that can fix my acne pores, a set or combo of products with how to use pore tightening set"
Example Output JSON String:
{
  "ai_understanding": "User is looking for a Pore Tightening Set to fix acne pores and needs usage instructions.",
  "advice": "For pore tightening sets, cleanse your face first, then apply the toner/serum focusing on affected areas, usually morning and night. Follow with a suitable moisturizer. Consistency is key!",
  "search_keywords": "Pore Tightening Set acne pores fix usage instructions"
}

Example Input Query: "What's a good hydrating serum?"
Example Output JSON String:
{
    "ai_understanding": "User is asking for recommendations for a hydrating serum.",
    "advice": "Hydrating serums often contain ingredients like Hyaluronic Acid or Glycerin. Apply a few drops to damp skin after cleansing and before moisturizing for best absorption. Look for one suitable for your skin type!",
    "search_keywords": "good hydrating serum recommendations"
}`, query)
}
