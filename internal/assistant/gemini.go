package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/zerone-labs/storefront/internal/models"
)

// Gemini calls the generateContent REST endpoint. One request, no retry:
// failures surface to the caller, who logs and tells the user.
type Gemini struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

func NewGemini(apiKey, baseURL, model string) *Gemini {
	return &Gemini{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   model,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// pitchSchema mirrors the PitchReview shape; the collaborator is asked to
// answer as JSON conforming to it.
var pitchSchema = json.RawMessage(`{
	"type": "OBJECT",
	"properties": {
		"score": {"type": "NUMBER", "description": "A pitch quality score from 1 to 100."},
		"feedback": {"type": "STRING", "description": "A professional and encouraging critique of the pitch."},
		"suggestions": {
			"type": "ARRAY",
			"items": {"type": "STRING"},
			"description": "3 specific, actionable points to improve the pitch."
		}
	},
	"required": ["score", "feedback", "suggestions"]
}`)

func (g *Gemini) generate(ctx context.Context, prompt string, cfg *generationConfig) (string, error) {
	if g.APIKey == "" {
		return "", ErrUnavailable
	}

	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: cfg,
	})
	if err != nil {
		return "", fmt.Errorf("assistant: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.BaseURL, g.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("assistant: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.APIKey)

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("assistant: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assistant: request failed with status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrBadResponse)
	}
	text := out.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", fmt.Errorf("%w: empty text", ErrBadResponse)
	}
	return text, nil
}

func (g *Gemini) DescribeProduct(ctx context.Context, name, features string) (string, error) {
	prompt := fmt.Sprintf(
		"Write a compelling, professional e-commerce product description for: %s. "+
			"Key features to include: %s. "+
			"Keep it under 100 words and make it sound premium and tech-forward.",
		name, features,
	)
	return g.generate(ctx, prompt, nil)
}

func (g *Gemini) SummarizeTrends(ctx context.Context, orders []models.Order) (string, error) {
	history, err := json.Marshal(orders)
	if err != nil {
		return "", fmt.Errorf("assistant: marshal orders: %w", err)
	}
	prompt := fmt.Sprintf(
		"Analyze these recent sales: %s. "+
			"Provide one brief insight about which products are performing well or what to focus on next.",
		history,
	)
	return g.generate(ctx, prompt, nil)
}

func (g *Gemini) ReviewPitch(ctx context.Context, productName, pitch string) (*models.PitchReview, error) {
	prompt := fmt.Sprintf(
		"You are a world-class startup mentor and pitch consultant. "+
			"Evaluate the following elevator pitch for a product called %q: %q",
		productName, pitch,
	)
	text, err := g.generate(ctx, prompt, &generationConfig{
		ResponseMimeType: "application/json",
		ResponseSchema:   pitchSchema,
	})
	if err != nil {
		return nil, err
	}

	var review models.PitchReview
	if err := json.Unmarshal([]byte(text), &review); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if review.Feedback == "" && review.Score == 0 && len(review.Suggestions) == 0 {
		return nil, fmt.Errorf("%w: empty review", ErrBadResponse)
	}
	return &review, nil
}
