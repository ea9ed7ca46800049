// Package ai produces air-quality recommendations with an OpenAI-compatible
// chat model, falling back to fixed guidance per AQI band.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	altai "github.com/sashabaranov/go-openai"

	"aqdash/internal/classify"
	"aqdash/internal/model"
	"aqdash/internal/util/logx"
)

// OpenAIClient wraps the chat completion call. A nil client or an empty key
// means disabled.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	model   string
	timeout time.Duration
}

func NewOpenAIClient(apiKey, baseURL, model string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{apiKey: apiKey, baseURL: baseURL, model: model, timeout: timeout}
}

func (c *OpenAIClient) Enabled() bool { return c != nil && c.apiKey != "" }

type aiResponse struct {
	Assessment      string `json:"assessment"`
	Recommendations []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
		Severity    string `json:"severity"`
	} `json:"recommendations"`
}

func (c *OpenAIClient) complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	if !c.Enabled() {
		return "", errors.New("openai disabled")
	}
	cfg := altai.DefaultConfig(c.apiKey)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	cli := altai.NewClientWithConfig(cfg)
	ctx2, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	resp, err := cli.CreateChatCompletion(ctx2, altai.ChatCompletionRequest{
		Model: c.model,
		Messages: []altai.ChatCompletionMessage{
			{Role: altai.ChatMessageRoleSystem, Content: "You are an air quality expert. Return ONLY strict JSON following the requested contract. No prose, no code fences."},
			{Role: altai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature:    temperature,
		MaxTokens:      500,
		ResponseFormat: &altai.ChatCompletionResponseFormat{Type: altai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Recommender builds recommendations for a reading. Without a usable model
// it returns the fixed guidance for the reading's AQI band.
type Recommender struct {
	Client *OpenAIClient
	Now    func() time.Time
}

func (r Recommender) Recommend(ctx context.Context, c model.CityReading) (model.Recommendation, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	rec := model.Recommendation{
		City:        c.City,
		Country:     c.Country,
		AQI:         c.AQI,
		AQICategory: classify.AQI(c.AQI).Category,
		GeneratedAt: now().Format("January 2, 2006, 3:04 PM"),
	}
	if r.Client.Enabled() {
		resp, err := r.Client.complete(ctx, buildRecommendationPrompt(c), 0.7)
		if err == nil {
			if parseRecommendation(resp, &rec) {
				return rec, nil
			}
			logx.Warnf("ai: unparseable recommendation for %q", c.City)
		} else {
			if ctx.Err() != nil {
				return model.Recommendation{}, ctx.Err()
			}
			logx.Warnf("ai: request failed, using built-in guidance: %v", err)
		}
	}
	rec.OverallAssessment = Assessment(c)
	rec.Recommendations = FallbackCards(c.AQI)
	return rec, nil
}

func buildRecommendationPrompt(c model.CityReading) string {
	aqi := "unknown"
	if c.AQI != nil {
		aqi = fmt.Sprintf("%.0f", *c.AQI)
	}
	return fmt.Sprintf("Based on the following air quality data for %s, %s, provide 4 specific recommendations as JSON. "+
		"Current conditions: AQI=%s (%s), PM2.5=%.1f µg/m³, PM10=%.1f µg/m³. "+
		`Return JSON format: {"assessment": "brief overall assessment", "recommendations": [{"title": "title", "description": "description", "icon": "emoji", "severity": "low/medium/high"}]}`,
		c.City, c.Country, aqi, classify.AQI(c.AQI).Category, deref(c.PM25), deref(c.PM10))
}

// parseRecommendation fills rec from a model reply. It tolerates prose around
// the JSON object and reports false when no recommendations were found.
func parseRecommendation(resp string, rec *model.Recommendation) bool {
	start := strings.Index(resp, "{")
	end := strings.LastIndex(resp, "}")
	if start < 0 || end <= start {
		return false
	}
	var out aiResponse
	if err := json.Unmarshal([]byte(resp[start:end+1]), &out); err != nil {
		return false
	}
	if len(out.Recommendations) == 0 {
		return false
	}
	rec.OverallAssessment = out.Assessment
	rec.Recommendations = make([]model.RecommendationCard, 0, len(out.Recommendations))
	for _, r := range out.Recommendations {
		card := model.RecommendationCard{Title: r.Title, Description: r.Description, Icon: r.Icon, Severity: strings.ToLower(r.Severity)}
		if card.Title == "" {
			card.Title = "Recommendation"
		}
		if card.Icon == "" {
			card.Icon = "💡"
		}
		switch card.Severity {
		case "low", "medium", "high":
		default:
			card.Severity = "medium"
		}
		rec.Recommendations = append(rec.Recommendations, card)
	}
	return true
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
