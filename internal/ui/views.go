package ui

import (
	"encoding/base64"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/atotto/clipboard"

	"aqdash/internal/util/logx"
)

// overlay draws top over base line by line; blank lines of top let base show
// through.
func overlay(base, top string) string {
	out := strings.Split(base, "\n")
	lines := strings.Split(top, "\n")
	if len(lines) > len(out) {
		out = append(out, make([]string, len(lines)-len(out))...)
	}
	for i, l := range lines {
		if strings.TrimSpace(stripANSI(l)) != "" {
			out[i] = l
		}
	}
	return strings.Join(out, "\n")
}

// copyToClipboard uses the system clipboard and falls back to OSC52 when no
// clipboard tool is available (e.g. over ssh).
func copyToClipboard(s string) {
	s = stripANSI(s)
	err := clipboard.WriteAll(s)
	if err == nil {
		return
	}
	logx.Debugf("ui: clipboard unavailable, using OSC52: %v", err)
	enc := base64.StdEncoding.EncodeToString([]byte(s))
	payload := fmt.Sprintf("\x1b]52;c;%s\x07", enc)
	// /dev/tty keeps the escape out of the program's stdout buffer
	if f, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0); err == nil {
		defer f.Close()
		_, _ = f.WriteString(payload)
		return
	}
	fmt.Fprint(os.Stdout, payload)
}

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

func stripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

func padRight(s string, w int) string {
	rs := []rune(s)
	if len(rs) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(rs))
}

func truncateRunes(s string, w int) string {
	rs := []rune(s)
	if len(rs) <= w {
		return s
	}
	if w <= 1 {
		return string(rs[:w])
	}
	return string(rs[:w-1]) + "…"
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
