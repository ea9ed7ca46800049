package detect

import (
	"regexp"
	"strings"
)

// Format is the line format of a local request log.
type Format string

const (
	FormatNDJSON  Format = "ndjson"
	FormatLogfmt  Format = "logfmt"
	FormatApache  Format = "apache_combined"
	FormatUnknown Format = "unknown"
)

var (
	reApacheCombined = regexp.MustCompile(`^\S+ \S+ \S+ \[[^\]]+\] "[A-Z]+ \S+ [^"]+" \d{3} (?:\d+|-)`)
	reLogfmtKV       = regexp.MustCompile(`(?:^|\s)[a-zA-Z_][a-zA-Z0-9_.]*=`)
)

type Guess struct {
	Format     Format
	Confidence float64
}

// ParseFormat accepts the names used on the command line.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "ndjson", "json_lines":
		return FormatNDJSON, true
	case "logfmt", "kv":
		return FormatLogfmt, true
	case "apache", "apache_combined", "combined", "clf":
		return FormatApache, true
	}
	return FormatUnknown, false
}

// Heuristics guesses the format from a small sample of lines.
func Heuristics(sample []string) Guess {
	lines := 0
	jsonCount := 0
	logfmtCount := 0
	apacheCount := 0
	for _, l := range sample {
		s := strings.TrimSpace(l)
		if s == "" {
			continue
		}
		lines++
		if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
			jsonCount++
			continue
		}
		if reApacheCombined.MatchString(s) {
			apacheCount++
			continue
		}
		if reLogfmtKV.MatchString(s) {
			logfmtCount++
		}
	}
	switch {
	case lines == 0:
		return Guess{Format: FormatUnknown}
	case jsonCount >= apacheCount && jsonCount >= logfmtCount && jsonCount*2 >= lines:
		return Guess{Format: FormatNDJSON, Confidence: conf(lines, jsonCount)}
	case apacheCount >= logfmtCount && apacheCount > 0:
		return Guess{Format: FormatApache, Confidence: conf(lines, apacheCount)}
	case logfmtCount*2 >= lines:
		return Guess{Format: FormatLogfmt, Confidence: conf(lines, logfmtCount)}
	}
	return Guess{Format: FormatUnknown}
}

func conf(lines, hits int) float64 {
	if lines == 0 {
		return 0
	}
	return float64(hits) / float64(lines)
}
