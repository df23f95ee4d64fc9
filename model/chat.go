package model

// ChatTurn is a single prior message in the conversation history.
type ChatTurn struct {
	Role string `json:"role"` // "user", "assistant" or legacy "bot"
	Text string `json:"text"`
}

// ChatRequest represents the incoming chat request from the storefront widget.
type ChatRequest struct {
	Query   string     `json:"query" binding:"required"`
	History []ChatTurn `json:"history"`
}

// ProductCard is the single product surfaced alongside the assistant reply.
type ProductCard struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       string  `json:"price"`
	Image       *string `json:"image"` // null when the product has no image
	LandingPage string  `json:"landing_page"`
}

// ChatResponse is the outward reply shape consumed by the chat widget.
type ChatResponse struct {
	AIUnderstanding string       `json:"ai_understanding"`
	ProductCard     *ProductCard `json:"product_card,omitempty"`
	Advice          string       `json:"advice"`
}

// ErrorResponse is returned for rejected input.
type ErrorResponse struct {
	Error string `json:"error"`
}
