package classify

import (
	"math"
	"testing"
)

func f(v float64) *float64 { return &v }

func TestAQIBoundaries(t *testing.T) {
	cases := []struct {
		v    float64
		want string
		tag  string
	}{
		{0, CategoryGood, TagGood},
		{50, CategoryGood, TagGood},
		{50.5, CategoryModerate, TagModerate},
		{51, CategoryModerate, TagModerate},
		{100, CategoryModerate, TagModerate},
		{101, CategorySensitive, TagSensitive},
		{150, CategorySensitive, TagSensitive},
		{151, CategoryUnhealthy, TagUnhealthy},
		{200, CategoryUnhealthy, TagUnhealthy},
		{201, CategoryVeryUnhealthy, TagVeryUnhealthy},
		{300, CategoryVeryUnhealthy, TagVeryUnhealthy},
		{301, CategoryHazardous, TagHazardous},
		{999, CategoryHazardous, TagHazardous},
	}
	for _, c := range cases {
		got := AQI(f(c.v))
		if got.Category != c.want || got.StyleTag != c.tag {
			t.Fatalf("aqi %v: got %+v want %s/%s", c.v, got, c.want, c.tag)
		}
		if again := Classify(f(c.v), KindAQI); again != got {
			t.Fatalf("aqi %v: Classify disagrees with AQI: %+v vs %+v", c.v, again, got)
		}
	}
}

func TestAQIUnknown(t *testing.T) {
	for _, v := range []*float64{nil, f(math.NaN())} {
		got := AQI(v)
		if got.Category != CategoryUnknown || got.StyleTag != TagNone || got.Color != ColorNeutral {
			t.Fatalf("expected unknown, got %+v", got)
		}
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[int]string{
		100: TagNone,
		200: TagGood,
		299: TagGood,
		301: TagNone,
		404: TagModerate,
		499: TagModerate,
		500: TagUnhealthy,
		503: TagUnhealthy,
	}
	for code, tag := range cases {
		if got := HTTPStatus(code).StyleTag; got != tag {
			t.Fatalf("status %d: got %q want %q", code, got, tag)
		}
	}
	if got := Classify(nil, KindHTTPStatus); got.Category != CategoryOther {
		t.Fatalf("nil status should be Other, got %+v", got)
	}
}

func TestHTTPMethod(t *testing.T) {
	cases := map[string]string{"GET": TagGood, "post": TagModerate, "PUT": TagSensitive, "DELETE": TagUnhealthy, "PATCH": TagNone}
	for m, tag := range cases {
		if got := HTTPMethod(m).StyleTag; got != tag {
			t.Fatalf("method %s: got %q want %q", m, got, tag)
		}
	}
}

func TestBandLabels(t *testing.T) {
	b := Bands()
	if b[0].Label() != "Good (0-50)" {
		t.Fatalf("unexpected label %q", b[0].Label())
	}
	if b[len(b)-1].Label() != "Hazardous (301+)" {
		t.Fatalf("unexpected label %q", b[len(b)-1].Label())
	}
}
