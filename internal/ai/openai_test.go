package ai

import (
	"context"
	"strings"
	"testing"
	"time"

	"aqdash/internal/model"
)

func TestRecommendWithoutClientUsesBands(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 15, 4, 0, 0, time.UTC)
	r := Recommender{Now: func() time.Time { return fixed }}
	rec, err := r.Recommend(context.Background(), model.CityReading{City: "Delhi", Country: "IN", AQI: model.Float(180)})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if rec.AQICategory != "Unhealthy" || rec.GeneratedAt != "June 1, 2025, 3:04 PM" {
		t.Fatalf("header: %+v", rec)
	}
	if len(rec.Recommendations) != 4 || rec.Recommendations[0].Severity != "high" {
		t.Fatalf("cards: %+v", rec.Recommendations)
	}
	if !strings.Contains(rec.OverallAssessment, "Delhi") {
		t.Fatalf("assessment: %q", rec.OverallAssessment)
	}
}

func TestFallbackBands(t *testing.T) {
	cases := []struct {
		aqi      *float64
		severity string
		title    string
	}{
		{nil, "low", "Outdoor Exercise"},
		{model.Float(50), "low", "Outdoor Exercise"},
		{model.Float(51), "low", "Moderate Caution"},
		{model.Float(150), "medium", "Limit Outdoor Time"},
		{model.Float(151), "high", "Stay Indoors"},
	}
	for _, c := range cases {
		cards := FallbackCards(c.aqi)
		if cards[0].Title != c.title || cards[0].Severity != c.severity {
			t.Fatalf("aqi %v: %+v", c.aqi, cards[0])
		}
	}
	if !strings.HasPrefix(HealthAdvisory(model.Float(301)), "Health emergency") {
		t.Fatalf("advisory for 301")
	}
	if !strings.HasPrefix(HealthAdvisory(model.Float(250)), "Health alert") {
		t.Fatalf("advisory for 250")
	}
}

func TestParseRecommendation(t *testing.T) {
	var rec model.Recommendation
	reply := "Sure! {\"assessment\":\"Fine\",\"recommendations\":[{\"title\":\"Walk\",\"severity\":\"LOW\"},{\"description\":\"x\",\"severity\":\"extreme\"}]} Thanks"
	if !parseRecommendation(reply, &rec) {
		t.Fatalf("reply not parsed")
	}
	if rec.OverallAssessment != "Fine" || len(rec.Recommendations) != 2 {
		t.Fatalf("rec: %+v", rec)
	}
	second := rec.Recommendations[1]
	if second.Title != "Recommendation" || second.Icon != "💡" || second.Severity != "medium" {
		t.Fatalf("defaults: %+v", second)
	}
	if rec.Recommendations[0].Severity != "low" {
		t.Fatalf("severity should be lower-cased")
	}
	if parseRecommendation("no json here", &rec) || parseRecommendation(`{"assessment":"x"}`, &rec) {
		t.Fatalf("replies without cards should be rejected")
	}
}

func TestPromptMentionsReading(t *testing.T) {
	p := buildRecommendationPrompt(model.CityReading{City: "Lima", Country: "PE", AQI: model.Float(75), PM25: model.Float(21.34)})
	for _, want := range []string{"Lima, PE", "AQI=75 (Moderate)", "PM2.5=21.3", "PM10=0.0"} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q: %s", want, p)
		}
	}
	if NewOpenAIClient("", "", "gpt-4o-mini", time.Second).Enabled() {
		t.Fatalf("empty key must disable the client")
	}
}
