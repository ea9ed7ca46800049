package ingest

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"
)

type route struct {
	method string
	path   string
	baseMs float64
}

var routes = []route{
	{"GET", "/api/cities", 18},
	{"GET", "/api/global", 9},
	{"GET", "/api/analytics/summary", 14},
	{"GET", "/api/analytics/timeline", 22},
	{"GET", "/api/ai/recommendations/Paris", 420},
	{"POST", "/api/refresh", 650},
	{"PUT", "/api/cities/Paris", 35},
	{"DELETE", "/api/cache", 5},
}

// Generator produces plausible API request log lines for demos and the mock
// backend. It is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Request is one synthetic request in timeline shape.
type Request struct {
	Timestamp    string  `json:"timestamp"`
	Endpoint     string  `json:"endpoint"`
	Method       string  `json:"method"`
	StatusCode   int     `json:"statusCode"`
	ResponseTime float64 `json:"responseTime"`
}

func (g *Generator) Next(now time.Time) Request {
	rt := routes[g.rng.Intn(len(routes))]
	status := 200
	switch p := g.rng.Float64(); {
	case p < 0.04:
		status = 500 + g.rng.Intn(4)
	case p < 0.12:
		status = []int{400, 401, 404, 429}[g.rng.Intn(4)]
	case rt.method == "POST":
		status = 202
	}
	ms := rt.baseMs * (0.5 + g.rng.ExpFloat64())
	return Request{
		Timestamp:    now.UTC().Format(time.RFC3339Nano),
		Endpoint:     rt.path,
		Method:       rt.method,
		StatusCode:   status,
		ResponseTime: float64(int(ms*100)) / 100,
	}
}

func (g *Generator) NDJSON(now time.Time) string {
	b, _ := json.Marshal(g.Next(now))
	return string(b)
}

// Apache renders a combined log line with the response time in ms appended.
func (g *Generator) Apache(now time.Time) string {
	r := g.Next(now)
	ip := fmt.Sprintf("10.0.%d.%d", g.rng.Intn(4), 1+g.rng.Intn(250))
	return fmt.Sprintf(`%s - - [%s] "%s %s HTTP/1.1" %d %d "-" "aqdash-mockapi" %.2f`,
		ip, now.Format("02/Jan/2006:15:04:05 -0700"), r.Method, r.Endpoint, r.StatusCode, 200+g.rng.Intn(8000), r.ResponseTime)
}

// Logfmt renders a key=value line.
func (g *Generator) Logfmt(now time.Time) string {
	r := g.Next(now)
	return fmt.Sprintf(`time=%s method=%s path=%s status=%d duration_ms=%.2f`, r.Timestamp, r.Method, r.Endpoint, r.StatusCode, r.ResponseTime)
}
