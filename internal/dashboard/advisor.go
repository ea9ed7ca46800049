package dashboard

import (
	"context"
	"errors"

	"aqdash/internal/model"
	"aqdash/internal/source"
	"aqdash/internal/util/logx"
)

type RecommendationSource interface {
	Recommendation(ctx context.Context, city string) (model.Recommendation, error)
}

// Recommender produces recommendations locally from a reading.
type Recommender interface {
	Recommend(ctx context.Context, c model.CityReading) (model.Recommendation, error)
}

// Advisor asks the backend for recommendations and falls back to a local
// recommender when the backend fails for any reason other than an unknown city.
type Advisor struct {
	Backend  RecommendationSource
	Fallback Recommender
}

func (a Advisor) Recommend(ctx context.Context, c model.CityReading) (model.Recommendation, error) {
	var err error
	if a.Backend != nil {
		var r model.Recommendation
		r, err = a.Backend.Recommendation(ctx, c.City)
		if err == nil {
			return r, nil
		}
		if errors.Is(err, source.ErrNotFound) || a.Fallback == nil {
			return model.Recommendation{}, err
		}
		logx.Infof("advisor: backend failed for %q, using fallback: %v", c.City, err)
	}
	if a.Fallback == nil {
		return model.Recommendation{}, errors.New("no recommendation source configured")
	}
	return a.Fallback.Recommend(ctx, c)
}
