package filter

import "testing"

func row(vals map[string]string, params map[string]any) (func(string) string, func() map[string]any) {
	return func(k string) string { return vals[k] }, func() map[string]any { return params }
}

func TestQueryIsCaseInsensitiveSubstring(t *testing.T) {
	ev, err := NewEvaluator(Criteria{Query: "par", Fields: []string{"city", "country"}}, nil)
	if err != nil {
		t.Fatalf("evaluator: %v", err)
	}
	for _, city := range []string{"Paris", "Paramaribo", "PARMA"} {
		if !ev.Match(row(map[string]string{"city": city}, nil)) {
			t.Fatalf("expected %s to match", city)
		}
	}
	if ev.Match(row(map[string]string{"city": "Lima", "country": "Peru"}, nil)) {
		t.Fatalf("Lima should not match")
	}
	if !ev.Match(row(map[string]string{"city": "Lima", "country": "Paraguay"}, nil)) {
		t.Fatalf("country field should be searched too")
	}
}

func TestQueryWithoutFieldsMatchesAll(t *testing.T) {
	ev, _ := NewEvaluator(Criteria{Query: "zzz"}, nil)
	if !ev.Match(row(nil, nil)) {
		t.Fatalf("no fields configured: every row should match")
	}
}

func TestWhereExpression(t *testing.T) {
	ev, err := NewEvaluator(Criteria{Where: "aqi > 100 && country == 'IN'"}, map[string]bool{"aqi": true, "country": true})
	if err != nil {
		t.Fatalf("evaluator: %v", err)
	}
	if !ev.Match(row(nil, map[string]any{"aqi": 150.0, "country": "IN"})) {
		t.Fatalf("expected match")
	}
	if ev.Match(row(nil, map[string]any{"aqi": 50.0, "country": "IN"})) {
		t.Fatalf("expected no match")
	}
	if ev.Match(row(nil, map[string]any{"aqi": nil, "country": "IN"})) {
		t.Fatalf("missing value should not match a comparison")
	}
}

func TestWhereRejectsUnknownField(t *testing.T) {
	if _, err := NewEvaluator(Criteria{Where: "altitude > 3"}, map[string]bool{"aqi": true}); err == nil {
		t.Fatalf("expected unknown field error")
	}
	if _, err := NewEvaluator(Criteria{Where: "aqi >"}, nil); err == nil {
		t.Fatalf("expected parse error")
	}
}
