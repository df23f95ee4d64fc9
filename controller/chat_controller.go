package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/SaiNageswarS/go-api-boot/embed"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-api-boot/odm"
	"github.com/SaiNageswarS/go-api-boot/server"
	"github.com/planetbeauty/bella-shopping-assistant/interpreter"
	"github.com/planetbeauty/bella-shopping-assistant/model"
	"github.com/planetbeauty/bella-shopping-assistant/resolver"
	"github.com/planetbeauty/bella-shopping-assistant/search"
	"go.uber.org/zap"
)

// Interpreter produces the understanding/advice/keywords triple.
type Interpreter interface {
	Interpret(ctx context.Context, query string, history []model.ChatTurn) (*model.Interpretation, error)
}

// ProductResolver picks the best catalog match for a query, or none.
type ProductResolver interface {
	Resolve(ctx context.Context, rawQuery, searchKeywords string) model.ResolutionOutcome
}

// ChatController handles the conversational shopping endpoint.
type ChatController struct {
	interpreter Interpreter
	resolver    ProductResolver
}

// ProvideChatController wires interpreter and resolver over the injected
// mongo client and embedder.
func ProvideChatController(mongo odm.MongoClient, embedder embed.Embedder) *ChatController {
	gemini, err := interpreter.NewGeminiInterpreter(context.Background())
	if err != nil {
		logger.Fatal("Failed to create Gemini interpreter", zap.Error(err))
	}

	catalog := search.ProvideCatalogSearch(mongo, embedder, catalogTenant())

	return &ChatController{
		interpreter: gemini,
		resolver:    resolver.New(catalog),
	}
}

func catalogTenant() string {
	if tenant := os.Getenv("CATALOG_DB_NAME"); tenant != "" {
		return tenant
	}
	return "planetbeauty"
}

// HandleChat handles POST requests from the storefront chat widget.
func (c *ChatController) HandleChat(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Chat handler panicked", zap.Any("panic", rec))
			writeJSON(w, http.StatusInternalServerError, internalErrorResponse(fmt.Sprintf("%v", rec)))
		}
	}()

	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("Failed to decode chat request", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "Invalid query provided"})
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "Invalid query provided"})
		return
	}
	logger.Info("Processing chat query", zap.String("query", query))

	ctx := r.Context()

	// Interpreter failure is fatal for the request; no search stage runs.
	interpretation, err := c.interpreter.Interpret(ctx, query, req.History)
	if err != nil {
		logger.Error("Intent interpretation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, model.ChatResponse{
			AIUnderstanding: "I had trouble processing that request.",
			Advice:          "Could you please try rephrasing your question or try again shortly?",
		})
		return
	}

	outcome := c.resolver.Resolve(ctx, query, interpretation.SearchKeywords)
	if outcome.NearMatch != nil {
		logger.Info("Retained near match",
			zap.String("productId", outcome.NearMatch.CatalogID),
			zap.Float64("score", outcome.NearMatch.Score))
	}

	response := AssembleResponse(interpretation, outcome)
	writeJSON(w, http.StatusOK, response)
	logger.Info("Chat query processed", zap.String("query", query), zap.Bool("productCard", response.ProductCard != nil))
}

func internalErrorResponse(diagnostic string) model.ChatResponse {
	if len(diagnostic) > 100 {
		n := 100
		// Back off to a rune boundary so the fragment stays valid UTF-8.
		for n > 0 && !utf8.RuneStart(diagnostic[n]) {
			n--
		}
		diagnostic = diagnostic[:n]
	}
	return model.ChatResponse{
		AIUnderstanding: "An error occurred.",
		Advice:          fmt.Sprintf("Sorry, I encountered a problem processing your request. Please try again later. (Ref: %s)", diagnostic),
	}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
		// Note: Can't call http.Error here as headers may already be written
	}
}

func (c *ChatController) Routes() []server.Route {
	return []server.Route{
		{
			Pattern: "/chat",
			Method:  http.MethodPost,
			Handler: c.HandleChat,
		},
	}
}
