package triage

import (
	"context"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Disclaimer accompanies every triage suggestion.
const Disclaimer = "This suggestion is informational only and is not a medical diagnosis. " +
	"Consult a qualified practitioner; in an emergency call your local emergency number."

// Suggestion is the opaque triage result: a specialist label plus disclaimer.
type Suggestion struct {
	Specialist string `json:"specialist"`
	Disclaimer string `json:"disclaimer"`
}

// TriageService maps free-text symptoms to a suggested specialist.
type TriageService interface {
	Suggest(ctx context.Context, symptoms string) (*Suggestion, error)
}

// GeminiTriageService calls Gemini for the specialist label.
type GeminiTriageService struct {
	model *genai.GenerativeModel
}

func NewGeminiTriageService(apiKey string) *GeminiTriageService {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		panic(fmt.Sprintf("failed to create Gemini client: %v", err))
	}

	model := client.GenerativeModel("models/gemini-1.5-pro")
	return &GeminiTriageService{model: model}
}

func (g *GeminiTriageService) Suggest(ctx context.Context, symptoms string) (*Suggestion, error) {
	prompt := "Given the following patient symptoms, answer with only the single most " +
		"appropriate medical specialist to consult (e.g. Dermatologist, Cardiologist, " +
		"General physician). Symptoms: " + symptoms

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generate error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}

	return &Suggestion{
		Specialist: strings.TrimSpace(sb.String()),
		Disclaimer: Disclaimer,
	}, nil
}
