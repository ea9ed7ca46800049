package table

import (
	"reflect"
	"testing"
)

type city struct {
	name    string
	country string
	aqi     *float64
	seen    string
}

func num(v float64) *float64 { return &v }

func testSchema() Schema[city] {
	return Schema[city]{
		Fields: []Field[city]{
			{Key: "city", Kind: KindString, Text: func(c city) string { return c.name }},
			{Key: "country", Kind: KindString, Text: func(c city) string { return c.country }},
			{Key: "aqi", Kind: KindNumber, Number: func(c city) (float64, bool) {
				if c.aqi == nil {
					return 0, false
				}
				return *c.aqi, true
			}},
			{Key: "seen", Kind: KindTime, Text: func(c city) string { return c.seen }},
		},
		FilterKeys: []string{"city", "country"},
	}
}

func names(rows []city) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.name
	}
	return out
}

func TestSortIsStableOnTies(t *testing.T) {
	e := New(testSchema())
	e.SetRows([]city{{name: "A", aqi: num(10)}, {name: "B", aqi: num(10)}})
	e.ToggleSort("aqi")
	if got := names(e.Project()); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Fatalf("asc ties reordered: %v", got)
	}
	e.ToggleSort("aqi")
	if got := names(e.Project()); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Fatalf("desc ties reordered: %v", got)
	}
}

func TestFilterCaseInsensitiveSubstring(t *testing.T) {
	e := New(testSchema())
	e.SetRows([]city{{name: "Paris", country: "FR"}, {name: "Lima", country: "PE"}, {name: "Paramaribo", country: "SR"}})
	e.SetFilter("par")
	if got := names(e.Project()); !reflect.DeepEqual(got, []string{"Paris", "Paramaribo"}) {
		t.Fatalf("filter: %v", got)
	}
	e.SetFilter("")
	if got := names(e.Project()); !reflect.DeepEqual(got, []string{"Paris", "Lima", "Paramaribo"}) {
		t.Fatalf("empty filter must keep order: %v", got)
	}
	e.SetFilter("pe")
	if got := names(e.Project()); !reflect.DeepEqual(got, []string{"Lima"}) {
		t.Fatalf("country filter: %v", got)
	}
}

func TestToggleSort(t *testing.T) {
	e := New(testSchema())
	if s := e.ToggleSort("city"); s.Dir != Asc {
		t.Fatalf("city default should be asc, got %v", s.Dir)
	}
	e.ToggleSort("city")
	if s := e.ToggleSort("city"); s.Dir != Asc {
		t.Fatalf("toggling twice should return to asc, got %v", s.Dir)
	}
	if s := e.ToggleSort("seen"); s.Key != "seen" || s.Dir != Desc {
		t.Fatalf("time default should be desc, got %+v", s)
	}
	if s := e.ToggleSort("aqi"); s.Dir != Asc {
		t.Fatalf("switching key must reset to default, got %+v", s)
	}
}

func TestNumericMissingComparesAsZero(t *testing.T) {
	e := New(testSchema())
	rows := []city{{name: "X", aqi: num(5)}, {name: "Nil"}, {name: "Neg", aqi: num(-1)}}
	e.SetRows(rows)
	e.ToggleSort("aqi")
	if got := names(e.Project()); !reflect.DeepEqual(got, []string{"Neg", "Nil", "X"}) {
		t.Fatalf("nil should sort as 0: %v", got)
	}
	if rows[1].aqi != nil {
		t.Fatalf("row mutated")
	}
}

func TestStringSortIgnoresCase(t *testing.T) {
	e := New(testSchema())
	e.SetRows([]city{{name: "beijing"}, {name: "Amsterdam"}, {name: "Cairo"}, {name: "athens"}})
	e.ToggleSort("city")
	if got := names(e.Project()); !reflect.DeepEqual(got, []string{"Amsterdam", "athens", "beijing", "Cairo"}) {
		t.Fatalf("collation: %v", got)
	}
}

func TestTimeSort(t *testing.T) {
	e := New(testSchema())
	e.SetRows([]city{
		{name: "old", seen: "2025-01-01T10:00:00Z"},
		{name: "new", seen: "2025-01-01T12:00:00.500Z"},
		{name: "local", seen: "2025-01-01T11:00:00"},
		{name: "garbage", seen: "yesterday"},
	})
	e.ToggleSort("seen")
	if got := names(e.Project()); !reflect.DeepEqual(got, []string{"new", "local", "old", "garbage"}) {
		t.Fatalf("time desc: %v", got)
	}
}

func TestUnknownKeyKeepsOrder(t *testing.T) {
	e := New(testSchema())
	e.SetRows([]city{{name: "b"}, {name: "a"}, {name: "c"}})
	e.ToggleSort("altitude")
	if got := names(e.Project()); !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Fatalf("unknown key reordered rows: %v", got)
	}
}

func TestProjectIsIdempotentAndOrderIndependent(t *testing.T) {
	e := New(testSchema())
	rows := []city{{name: "Paris", aqi: num(30)}, {name: "Parma", aqi: num(10)}, {name: "Lima", aqi: num(20)}}
	e.SetRows(rows)
	e.ToggleSort("aqi")
	e.SetFilter("par")
	first := e.Project()
	second := e.Project()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("project not idempotent")
	}
	// sorting everything then filtering must give the same rows
	sorted := append([]city(nil), rows...)
	SortStable(sorted, testSchema().Fields[2], Asc)
	var filtered []city
	for _, r := range sorted {
		if r.name != "Lima" {
			filtered = append(filtered, r)
		}
	}
	if !reflect.DeepEqual(names(first), names(filtered)) {
		t.Fatalf("filter/sort do not commute: %v vs %v", names(first), names(filtered))
	}
}

func TestSetRowsDoesNotAliasCaller(t *testing.T) {
	e := New(testSchema())
	rows := []city{{name: "a"}, {name: "b"}}
	e.SetRows(rows)
	rows[0].name = "z"
	if e.Rows()[0].name != "a" {
		t.Fatalf("engine snapshot aliased caller slice")
	}
}

func TestSetWhere(t *testing.T) {
	e := New(testSchema())
	e.SetRows([]city{{name: "a", aqi: num(150)}, {name: "b", aqi: num(20)}, {name: "c"}})
	if err := e.SetWhere("aqi > 100"); err != nil {
		t.Fatalf("where: %v", err)
	}
	if got := names(e.Project()); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("where: %v", got)
	}
	if err := e.SetWhere("altitude > 1"); err == nil {
		t.Fatalf("expected unknown field error")
	}
	if e.Where() != "aqi > 100" {
		t.Fatalf("failed SetWhere must keep previous predicate, got %q", e.Where())
	}
	e.SetFilter("A")
	if got := names(e.Project()); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("filter and where combined: %v", got)
	}
	_ = e.SetWhere("")
	e.SetFilter("")
	if len(e.Project()) != 3 {
		t.Fatalf("clearing where should restore all rows")
	}
	if e.Where() != "" {
		t.Fatalf("cleared where still reported: %q", e.Where())
	}
}

func TestBlankWhereIsInactive(t *testing.T) {
	e := New(testSchema())
	e.SetRows([]city{{name: "a", aqi: num(150)}, {name: "b"}})
	if err := e.SetWhere("   "); err != nil {
		t.Fatalf("blank where: %v", err)
	}
	if e.Where() != "" {
		t.Fatalf("blank where reported as active: %q", e.Where())
	}
	if len(e.Project()) != 2 {
		t.Fatalf("blank where must not narrow rows")
	}
}
