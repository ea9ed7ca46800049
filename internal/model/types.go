package model

import (
	"encoding/json"
	"strings"

	"github.com/biter777/countries"
)

// CityReading is one row of the cities table.
type CityReading struct {
	City    string   `json:"city"`
	Country string   `json:"country"`
	AQI     *float64 `json:"aqi"`
	PM25    *float64 `json:"pm25"`
	PM10    *float64 `json:"pm10"`
}

// CountryName resolves ISO codes such as "FR" to a display name and leaves
// anything it cannot resolve untouched.
func (c CityReading) CountryName() string {
	code := strings.TrimSpace(c.Country)
	if code == "" {
		return ""
	}
	cc := countries.ByName(code)
	if cc == countries.Unknown {
		return code
	}
	return cc.String()
}

func (c *CityReading) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		// not an object: keep a blank row rather than failing the whole list
		*c = CityReading{}
		return nil
	}
	*c = CityReading{
		City:    looseString(raw["city"]),
		Country: looseString(raw["country"]),
		AQI:     looseFloat(raw["aqi"]),
		PM25:    looseFloat(raw["pm25"]),
		PM10:    looseFloat(raw["pm10"]),
	}
	return nil
}

// RequestLog is one entry of the API request timeline.
type RequestLog struct {
	Timestamp    string   `json:"timestamp"`
	Endpoint     string   `json:"endpoint"`
	Method       string   `json:"method"`
	StatusCode   int      `json:"statusCode"`
	ResponseTime *float64 `json:"responseTime"`
}

func (r *RequestLog) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		*r = RequestLog{}
		return nil
	}
	status := 0
	if f := looseFloat(raw["statusCode"]); f != nil {
		status = int(*f)
	}
	*r = RequestLog{
		Timestamp:    looseString(raw["timestamp"]),
		Endpoint:     looseString(raw["endpoint"]),
		Method:       strings.ToUpper(looseString(raw["method"])),
		StatusCode:   status,
		ResponseTime: looseFloat(raw["responseTime"]),
	}
	return nil
}

// SuccessError is the per-endpoint success/error counter pair of the summary.
type SuccessError struct {
	Success int64 `json:"success"`
	Error   int64 `json:"error"`
}

func (s *SuccessError) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	*s = SuccessError{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	if f := looseFloat(raw["success"]); f != nil {
		s.Success = int64(*f)
	}
	if f := looseFloat(raw["error"]); f != nil {
		s.Error = int64(*f)
	}
	return nil
}

// Summary is the analytics summary payload.
type Summary struct {
	TotalRequests     int64                 `json:"totalRequests"`
	EndpointStats     StatMap[float64]      `json:"endpointStats"`
	ResponseTimeStats StatMap[float64]      `json:"responseTimeStats"`
	SuccessErrorRates StatMap[SuccessError] `json:"successErrorRates"`
}

// GlobalStats is the air-quality overview payload.
type GlobalStats struct {
	TotalCities            int      `json:"totalCities"`
	TotalCountries         int      `json:"totalCountries"`
	AverageGlobalAqi       float64  `json:"averageGlobalAqi"`
	CitiesWithGoodAir      int      `json:"citiesWithGoodAir"`
	CitiesWithModerateAir  *int     `json:"citiesWithModerateAir,omitempty"`
	CitiesWithUnhealthyAir int      `json:"citiesWithUnhealthyAir"`
	CleanestCity           string   `json:"cleanestCity"`
	CleanestCountry        string   `json:"cleanestCountry,omitempty"`
	CleanestAqi            *float64 `json:"cleanestAqi"`
	MostPollutedCity       string   `json:"mostPollutedCity"`
	MostPollutedCountry    string   `json:"mostPollutedCountry,omitempty"`
	MostPollutedAqi        *float64 `json:"mostPollutedAqi"`
	LastUpdated            string   `json:"lastUpdated"`
}

// RecommendationCard is one actionable recommendation. Severity is low|medium|high.
type RecommendationCard struct {
	Severity    string `json:"severity"`
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Recommendation is the AI recommendation payload for a city.
type Recommendation struct {
	City              string               `json:"city"`
	Country           string               `json:"country"`
	AQI               *float64             `json:"aqi"`
	AQICategory       string               `json:"aqiCategory"`
	OverallAssessment string               `json:"overallAssessment"`
	Recommendations   []RecommendationCard `json:"recommendations"`
	GeneratedAt       string               `json:"generatedAt,omitempty"`
}
