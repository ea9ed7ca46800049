package ai

import (
	"fmt"

	"aqdash/internal/model"
)

// Assessment is a one-sentence verdict for the reading's AQI.
func Assessment(c model.CityReading) string {
	aqi := deref(c.AQI)
	switch {
	case aqi <= 50:
		return fmt.Sprintf("Air quality in %s is good. Enjoy outdoor activities!", c.City)
	case aqi <= 100:
		return fmt.Sprintf("Air quality in %s is moderate. Generally acceptable for most people.", c.City)
	case aqi <= 150:
		return fmt.Sprintf("Air quality in %s is unhealthy for sensitive groups. Limit outdoor exposure.", c.City)
	}
	return fmt.Sprintf("Air quality in %s is unhealthy. Reduce prolonged outdoor activities.", c.City)
}

func card(title, desc, icon, severity string) model.RecommendationCard {
	return model.RecommendationCard{Title: title, Description: desc, Icon: icon, Severity: severity}
}

// FallbackCards are the four fixed recommendations for an AQI band. A missing
// AQI is treated as 0.
func FallbackCards(aqi *float64) []model.RecommendationCard {
	v := deref(aqi)
	switch {
	case v <= 50:
		return []model.RecommendationCard{
			card("Outdoor Exercise", "Great day for outdoor activities like jogging, cycling, or sports.", "🏃", "low"),
			card("Open Windows", "Feel free to open windows for fresh air ventilation.", "🪟", "low"),
			card("Family Activities", "Perfect conditions for outdoor family activities and picnics.", "👨‍👩‍👧", "low"),
			card("Garden Time", "Ideal weather for gardening and outdoor work.", "🌱", "low"),
		}
	case v <= 100:
		return []model.RecommendationCard{
			card("Moderate Caution", "Generally safe for outdoor activities with normal precautions.", "⚠️", "low"),
			card("Sensitive Groups", "Those with respiratory issues should consider reducing outdoor exercise.", "🫁", "medium"),
			card("Stay Hydrated", "Drink plenty of water if exercising outdoors.", "💧", "low"),
			card("Monitor Conditions", "Keep an eye on air quality updates throughout the day.", "📱", "low"),
		}
	case v <= 150:
		return []model.RecommendationCard{
			card("Limit Outdoor Time", "Reduce prolonged outdoor exertion, especially for sensitive groups.", "⏰", "medium"),
			card("Use Air Purifier", "Consider running an indoor air purifier.", "🌬️", "medium"),
			card("Wear Mask", "Consider wearing an N95 mask when outdoors.", "😷", "medium"),
			card("Indoor Exercise", "Move workouts indoors when possible.", "🏠", "medium"),
		}
	}
	return []model.RecommendationCard{
		card("Stay Indoors", "Avoid outdoor activities. Keep windows and doors closed.", "🏠", "high"),
		card("Air Purification", "Run air purifiers on high settings. Ensure HEPA filtration.", "🌬️", "high"),
		card("N95 Mask Required", "Wear N95 or better mask if you must go outside.", "😷", "high"),
		card("Health Watch", "Monitor for symptoms. Seek medical help if experiencing breathing difficulties.", "🏥", "high"),
	}
}

// HealthAdvisory is a short advisory for the six AQI bands.
func HealthAdvisory(aqi *float64) string {
	v := deref(aqi)
	switch {
	case v <= 50:
		return "Air quality is satisfactory. Enjoy outdoor activities without concern."
	case v <= 100:
		return "Air quality is acceptable. Unusually sensitive people should consider limiting prolonged outdoor exertion."
	case v <= 150:
		return "Members of sensitive groups may experience health effects. The general public is less likely to be affected."
	case v <= 200:
		return "Everyone may begin to experience health effects. Members of sensitive groups may experience more serious health effects."
	case v <= 300:
		return "Health alert: everyone may experience more serious health effects. Avoid outdoor activities."
	}
	return "Health emergency: the entire population is more likely to be affected. Stay indoors with air filtration."
}
