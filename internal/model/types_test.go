package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestStatMapKeepsDocumentOrder(t *testing.T) {
	var m StatMap[float64]
	if err := json.Unmarshal([]byte(`{"/api/zeta":3,"/api/alpha":1,"/api/mid":2}`), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got := strings.Join(m.Keys(), ",")
	if got != "/api/zeta,/api/alpha,/api/mid" {
		t.Fatalf("key order lost: %s", got)
	}
	if v, _ := m.Get("/api/alpha"); v != 1 {
		t.Fatalf("alpha: %v", v)
	}
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"/api/zeta":3,"/api/alpha":1,"/api/mid":2}` {
		t.Fatalf("marshal order: %s", b)
	}
}

func TestStatMapBadValueBecomesZero(t *testing.T) {
	var m StatMap[float64]
	if err := json.Unmarshal([]byte(`{"a":"oops","b":4}`), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.Len() != 2 {
		t.Fatalf("expected 2 keys, got %d", m.Len())
	}
	if v, ok := m.Get("a"); !ok || v != 0 {
		t.Fatalf("expected zero for bad value, got %v %v", v, ok)
	}
}

func TestStatMapNull(t *testing.T) {
	var s Summary
	if err := json.Unmarshal([]byte(`{"totalRequests":5,"endpointStats":null}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.EndpointStats.Len() != 0 || s.TotalRequests != 5 {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestCityReadingTolerant(t *testing.T) {
	var rows []CityReading
	body := `[{"city":"Paris","country":"FR","aqi":42,"pm25":"10.5","pm10":null},
	          {"city":"Lima","country":"PE","aqi":"n/a"},
	          7]`
	if err := json.Unmarshal([]byte(body), &rows); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].AQI == nil || *rows[0].AQI != 42 || rows[0].PM25 == nil || *rows[0].PM25 != 10.5 || rows[0].PM10 != nil {
		t.Fatalf("paris decoded wrong: %+v", rows[0])
	}
	if rows[1].AQI != nil {
		t.Fatalf("expected nil aqi for bad value")
	}
	if rows[2].City != "" {
		t.Fatalf("expected blank row for non-object")
	}
}

func TestRequestLogDecode(t *testing.T) {
	var r RequestLog
	if err := json.Unmarshal([]byte(`{"timestamp":"2025-01-01T12:00:00Z","endpoint":"/api/cities","method":"get","statusCode":200,"responseTime":12.5}`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.Method != "GET" || r.StatusCode != 200 || r.ResponseTime == nil || *r.ResponseTime != 12.5 {
		t.Fatalf("unexpected %+v", r)
	}
}

func TestCountryName(t *testing.T) {
	if got := (CityReading{Country: "FR"}).CountryName(); got != "France" {
		t.Fatalf("expected France, got %q", got)
	}
	if got := (CityReading{Country: "Atlantis"}).CountryName(); got != "Atlantis" {
		t.Fatalf("unknown country should pass through, got %q", got)
	}
}

func TestRingOverwritesOldest(t *testing.T) {
	r := NewRing[int](3)
	for i := 1; i <= 5; i++ {
		r.Push(i)
	}
	items, total, dropped := r.Snapshot()
	if len(items) != 3 || items[0] != 3 || items[2] != 5 {
		t.Fatalf("unexpected ring contents %v", items)
	}
	if total != 5 || dropped != 2 {
		t.Fatalf("counters total=%d dropped=%d", total, dropped)
	}
}
