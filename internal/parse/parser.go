package parse

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"aqdash/internal/detect"
	"aqdash/internal/model"
)

// Parser turns one log line into a timeline row. ok is false when the line
// does not describe a request.
type Parser interface {
	Parse(line string) (model.RequestLog, bool)
}

func NewParser(f detect.Format) Parser {
	switch f {
	case detect.FormatNDJSON:
		return JSONParser{}
	case detect.FormatLogfmt:
		return LogfmtParser{}
	case detect.FormatApache:
		return NewApacheParser()
	}
	return nopParser{}
}

type nopParser struct{}

func (nopParser) Parse(string) (model.RequestLog, bool) { return model.RequestLog{}, false }

var (
	timeKeys     = []string{"timestamp", "ts", "time", "@timestamp"}
	endpointKeys = []string{"endpoint", "path", "url", "uri", "route"}
	methodKeys   = []string{"method", "verb", "http_method"}
	statusKeys   = []string{"statusCode", "status", "status_code", "code"}
	latencyKeys  = []string{"responseTime", "response_time", "duration_ms", "latency_ms", "elapsed_ms", "rt"}
	durationKeys = []string{"duration", "latency", "elapsed"}
)

// JSON lines
type JSONParser struct{}

func (JSONParser) Parse(line string) (model.RequestLog, bool) {
	var m map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &m); err != nil {
		return model.RequestLog{}, false
	}
	// nested payloads such as {"log":"{...}"} from container runtimes
	if inner, ok := m["log"].(string); ok && strings.HasPrefix(strings.TrimSpace(inner), "{") {
		var im map[string]any
		if err := json.Unmarshal([]byte(inner), &im); err == nil {
			for k, v := range im {
				m[k] = v
			}
		}
	}
	get := func(keys []string) (any, bool) {
		for _, k := range keys {
			if v, ok := m[k]; ok && v != nil {
				return v, true
			}
		}
		return nil, false
	}
	r := model.RequestLog{}
	if v, ok := get(timeKeys); ok {
		r.Timestamp = normalizeTime(toString(v))
	}
	if v, ok := get(endpointKeys); ok {
		r.Endpoint = toString(v)
	}
	if v, ok := get(methodKeys); ok {
		r.Method = strings.ToUpper(toString(v))
	}
	if v, ok := get(statusKeys); ok {
		if f := toFloat(v); f != nil {
			r.StatusCode = int(*f)
		}
	}
	if v, ok := get(latencyKeys); ok {
		r.ResponseTime = toFloat(v)
	} else if v, ok := get(durationKeys); ok {
		r.ResponseTime = durationMs(toString(v))
	}
	return r, r.Endpoint != ""
}

// Apache/NGINX combined log, optionally followed by the response time in ms.
type ApacheParser struct {
	re *regexp.Regexp
}

func NewApacheParser() ApacheParser {
	return ApacheParser{re: regexp.MustCompile(`^(?P<ip>\S+) \S+ \S+ \[(?P<ts>[^\]]+)\] "(?P<method>[A-Z]+) (?P<path>\S+) [^"]+" (?P<status>\d{3}) (?P<size>\d+|-)(?: "(?P<ref>[^"]*)" "(?P<ua>[^"]*)")?(?: (?P<rt>\d+(?:\.\d+)?))?\s*$`)}
}

func (p ApacheParser) Parse(line string) (model.RequestLog, bool) {
	m := p.re.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return model.RequestLog{}, false
	}
	r := model.RequestLog{}
	for i, name := range p.re.SubexpNames() {
		val := m[i]
		switch name {
		case "ts":
			r.Timestamp = normalizeTime(val)
		case "method":
			r.Method = val
		case "path":
			r.Endpoint = stripQuery(val)
		case "status":
			r.StatusCode, _ = strconv.Atoi(val)
		case "rt":
			if val != "" {
				if f, err := strconv.ParseFloat(val, 64); err == nil {
					r.ResponseTime = &f
				}
			}
		}
	}
	return r, true
}

// logfmt (basic, supports quoted values)
type LogfmtParser struct{}

func (LogfmtParser) Parse(line string) (model.RequestLog, bool) {
	parts := splitLogfmt(line)
	r := model.RequestLog{
		Timestamp: normalizeTime(pick(parts, timeKeys...)),
		Endpoint:  pick(parts, endpointKeys...),
		Method:    strings.ToUpper(pick(parts, methodKeys...)),
	}
	if s := pick(parts, statusKeys...); s != "" {
		r.StatusCode, _ = strconv.Atoi(s)
	}
	if s := pick(parts, latencyKeys...); s != "" {
		r.ResponseTime = toFloat(s)
	} else if s := pick(parts, durationKeys...); s != "" {
		r.ResponseTime = durationMs(s)
	}
	return r, r.Endpoint != ""
}

func pick(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return ""
}

func splitLogfmt(s string) map[string]string {
	res := map[string]string{}
	var cur strings.Builder
	inQuote := false
	key := ""
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' {
			inQuote = !inQuote
			continue
		}
		if !inQuote && (c == ' ' || c == '\t') {
			if key != "" {
				res[key] = cur.String()
			}
			key = ""
			cur.Reset()
			continue
		}
		if !inQuote && c == '=' && key == "" {
			key = cur.String()
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	if key != "" {
		res[key] = cur.String()
	}
	return res
}

var inLayouts = []string{
	time.RFC3339Nano,
	"02/Jan/2006:15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// normalizeTime rewrites known layouts as RFC 3339 in UTC so the timeline
// sorts them uniformly. Unknown layouts pass through.
func normalizeTime(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range inLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(time.RFC3339Nano)
		}
	}
	return s
}

func stripQuery(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		return p[:i]
	}
	return p
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func toFloat(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = n
	default:
		return nil
	}
	return &f
}

// durationMs reads Go durations ("12.5ms", "1.2s") or bare milliseconds.
func durationMs(s string) *float64 {
	if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
		ms := float64(d) / float64(time.Millisecond)
		return &ms
	}
	return toFloat(s)
}
