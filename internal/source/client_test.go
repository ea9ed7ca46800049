package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/cities", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "aqdash/") {
			t.Errorf("missing user agent: %q", r.Header.Get("User-Agent"))
		}
		_, _ = w.Write([]byte(`[{"city":"Paris","country":"FR","aqi":42,"pm25":"9.5","pm10":null},"junk",{"city":"Delhi","aqi":"n/a"}]`))
	})
	mux.HandleFunc("/api/analytics/summary", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalRequests":3,"endpointStats":{"/api/b":2,"/api/a":1},"responseTimeStats":{},"successErrorRates":null}`))
	})
	mux.HandleFunc("/api/analytics/timeline", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `upstream exploded token=abcdefghijkl`, http.StatusBadGateway)
	})
	mux.HandleFunc("/api/ai/recommendations/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/Atlantis") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"city":"São Paulo","aqi":88,"aqiCategory":"Moderate","recommendations":[{"severity":"low","title":"Walk"}]}`))
	})
	mux.HandleFunc("/api/refresh", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/api/global", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalCities":2,`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientDecodesLeniently(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL+"/api/", 2*time.Second)
	rows, err := c.Cities(context.Background())
	if err != nil {
		t.Fatalf("cities: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("want 3 rows, got %d", len(rows))
	}
	if rows[0].City != "Paris" || *rows[0].AQI != 42 || *rows[0].PM25 != 9.5 || rows[0].PM10 != nil {
		t.Fatalf("row 0: %+v", rows[0])
	}
	if rows[1].City != "" || rows[2].AQI != nil {
		t.Fatalf("bad rows should decode to neutral defaults: %+v %+v", rows[1], rows[2])
	}

	s, err := c.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if keys := s.EndpointStats.Keys(); len(keys) != 2 || keys[0] != "/api/b" {
		t.Fatalf("key order lost: %v", keys)
	}
	if s.SuccessErrorRates.Len() != 0 {
		t.Fatalf("null map should be empty")
	}
}

func TestClientErrors(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL+"/api", 2*time.Second)

	_, err := c.Timeline(context.Background())
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.Status != http.StatusBadGateway || ue.Endpoint != "/analytics/timeline" {
		t.Fatalf("timeline: %v", err)
	}
	if strings.Contains(err.Error(), "abcdefghijkl") {
		t.Fatalf("secret leaked into error: %v", err)
	}

	_, err = c.Recommendation(context.Background(), "Atlantis")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	r, err := c.Recommendation(context.Background(), "São Paulo")
	if err != nil || r.City != "São Paulo" || len(r.Recommendations) != 1 {
		t.Fatalf("recommendation: %+v %v", r, err)
	}

	if _, err := c.Global(context.Background()); err == nil {
		t.Fatalf("truncated body should fail")
	}
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	_, err := NewClient(url, time.Second).Cities(context.Background())
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.Status != 0 {
		t.Fatalf("want transport UpstreamError, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("transport failure is not a 404")
	}
}

func TestSequencerDropsStale(t *testing.T) {
	var s Sequencer
	first := s.Begin()
	second := s.Begin()
	if !s.Accept(second) {
		t.Fatalf("newest fetch must be accepted")
	}
	if s.Accept(first) {
		t.Fatalf("older fetch must be dropped after a newer one was applied")
	}
	third := s.Begin()
	fourth := s.Begin()
	// fourth failed and was never applied; third may still land
	if !s.Accept(third) {
		t.Fatalf("third should apply")
	}
	if !s.Accept(fourth) {
		t.Fatalf("fourth should apply")
	}
}

func TestSequencerStaleDoesNotRecord(t *testing.T) {
	var s Sequencer
	first := s.Begin()
	second := s.Begin()
	if s.Stale(first) || s.Stale(second) {
		t.Fatalf("nothing applied yet")
	}
	if !s.Accept(second) {
		t.Fatalf("second should apply")
	}
	if !s.Stale(first) || !s.Stale(second) {
		t.Fatalf("tickets up to the applied one are stale")
	}
	third := s.Begin()
	if s.Stale(third) {
		t.Fatalf("third is newer than the applied fetch")
	}
	if !s.Accept(third) {
		t.Fatalf("Stale must not record the ticket")
	}
}
