package parse

import (
	"bufio"
	"os"
	"testing"

	"aqdash/internal/detect"
	"aqdash/internal/model"
)

func parseFile(t *testing.T, path string, f detect.Format) (rows []model.RequestLog, skipped int) {
	t.Helper()
	fh, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer fh.Close()
	p := NewParser(f)
	s := bufio.NewScanner(fh)
	for s.Scan() {
		r, ok := p.Parse(s.Text())
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, r)
	}
	return rows, skipped
}

func TestJSONParser(t *testing.T) {
	rows, skipped := parseFile(t, "../../testdata/requests.ndjson", detect.FormatNDJSON)
	if len(rows) != 5 || skipped != 1 {
		t.Fatalf("rows=%d skipped=%d", len(rows), skipped)
	}
	r := rows[0]
	if r.Endpoint != "/api/cities" || r.StatusCode != 200 || r.ResponseTime == nil || *r.ResponseTime != 12.5 {
		t.Fatalf("row 0: %+v", r)
	}
	alt := rows[2]
	if alt.Endpoint != "/api/refresh" || alt.Method != "POST" || alt.StatusCode != 500 || *alt.ResponseTime != 340.25 {
		t.Fatalf("alternate keys: %+v", alt)
	}
	if alt.Timestamp != "2025-06-01T10:00:02Z" {
		t.Fatalf("timestamp: %q", alt.Timestamp)
	}
	if rows[4].ResponseTime != nil {
		t.Fatalf("missing response time should stay nil")
	}
}

func TestJSONParserNestedLog(t *testing.T) {
	r, ok := JSONParser{}.Parse(`{"stream":"stdout","log":"{\"path\":\"/api/global\",\"status\":204}"}`)
	if !ok || r.Endpoint != "/api/global" || r.StatusCode != 204 {
		t.Fatalf("nested: %+v %v", r, ok)
	}
}

func TestApacheParser(t *testing.T) {
	rows, skipped := parseFile(t, "../../testdata/access.log", detect.FormatApache)
	if len(rows) != 4 || skipped != 0 {
		t.Fatalf("rows=%d skipped=%d", len(rows), skipped)
	}
	if rows[0].Timestamp != "2025-06-01T10:00:00Z" || rows[0].Method != "GET" || *rows[0].ResponseTime != 12.5 {
		t.Fatalf("row 0: %+v", rows[0])
	}
	if rows[1].ResponseTime != nil {
		t.Fatalf("no trailing time: %+v", rows[1])
	}
	if rows[2].StatusCode != 503 || rows[2].Timestamp != "2025-06-01T08:00:02Z" || *rows[2].ResponseTime != 1200 {
		t.Fatalf("row 2: %+v", rows[2])
	}
	if _, ok := NewApacheParser().Parse("garbage"); ok {
		t.Fatalf("garbage parsed")
	}
}

func TestLogfmtParser(t *testing.T) {
	rows, _ := parseFile(t, "../../testdata/requests.logfmt", detect.FormatLogfmt)
	if len(rows) != 3 {
		t.Fatalf("rows=%d", len(rows))
	}
	if *rows[0].ResponseTime != 12.5 || *rows[1].ResponseTime != 7 || *rows[2].ResponseTime != 1200 {
		t.Fatalf("durations: %v %v %v", *rows[0].ResponseTime, *rows[1].ResponseTime, *rows[2].ResponseTime)
	}
	if rows[2].Endpoint != "/api/refresh" || rows[2].StatusCode != 502 {
		t.Fatalf("row 2: %+v", rows[2])
	}
}

func TestUnknownFormatParsesNothing(t *testing.T) {
	if _, ok := NewParser(detect.FormatUnknown).Parse(`{"endpoint":"/x"}`); ok {
		t.Fatalf("unknown format should not parse")
	}
}
