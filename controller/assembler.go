package controller

import (
	"github.com/planetbeauty/bella-shopping-assistant/model"
)

// cardDescription is the fixed placeholder line shown under a matched
// product; real descriptions are too long for the card.
const cardDescription = "Found product related to your query."

// AssembleResponse maps the interpretation and resolution outcome onto
// the outward reply. Pure formatting, no decisions: the note is appended
// to the advice and the selected entry, when present, becomes the card.
func AssembleResponse(interpretation *model.Interpretation, outcome model.ResolutionOutcome) model.ChatResponse {
	response := model.ChatResponse{
		AIUnderstanding: interpretation.AIUnderstanding,
		Advice:          interpretation.Advice + outcome.Note,
	}

	if outcome.Selected != nil {
		var image *string
		if outcome.Selected.ImageURL != "" {
			image = &outcome.Selected.ImageURL
		}
		response.ProductCard = &model.ProductCard{
			Title:       outcome.Selected.Title,
			Description: cardDescription,
			Price:       outcome.Selected.Price,
			Image:       image,
			LandingPage: outcome.Selected.ProductURL,
		}
	}
	return response
}
