package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"aqdash/internal/detect"
	"aqdash/internal/ingest"
	"aqdash/internal/util/logx"
)

func main() {
	var (
		addr        string
		seed        int64
		history     int
		requestsOut string
		format      string
		rate        float64
		durationStr string
	)
	flag.StringVar(&addr, "addr", ":8080", "listen address")
	flag.Int64Var(&seed, "seed", 1, "seed for the demo data")
	flag.IntVar(&history, "history", 200, "synthetic requests to pre-fill the analytics timeline with")
	flag.StringVar(&requestsOut, "requests-out", "", "also write synthetic request logs to this file (- for stdout)")
	flag.StringVar(&format, "format", "ndjson", "request log format: ndjson, apache or logfmt")
	flag.Float64Var(&rate, "rate", 5.0, "request log lines per second")
	flag.StringVar(&durationStr, "duration", "", "optional run duration (e.g. 30s, 2m); empty runs until interrupted")
	flag.Parse()

	logx.SetLevelFromEnv()
	logx.SetStderr(true)
	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if durationStr != "" {
		d, err := time.ParseDuration(durationStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid duration: %v\n", err)
			os.Exit(2)
		}
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, d)
		defer stop()
	}

	now := time.Now()
	s := newStore(seed, now)
	s.seedHistory(history, seed, now)

	if requestsOut != "" {
		f, ok := detect.ParseFormat(format)
		if !ok {
			fmt.Fprintf(os.Stderr, "unsupported format: %s\n", format)
			os.Exit(2)
		}
		go func() {
			if err := writeRequests(ctx, requestsOut, f, rate, seed); err != nil {
				logx.Errorf("mockapi: request log: %v", err)
			}
		}()
		logx.Infof("mockapi: writing %s request logs -> %s at %.2f lines/s", f, requestsOut, rate)
	}

	srv := &http.Server{Addr: addr, Handler: newRouter(s), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdown, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = srv.Shutdown(shutdown)
	}()
	logx.Infof("mockapi: listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logx.Errorf("mockapi: %v", err)
		os.Exit(1)
	}
}

// writeRequests appends synthetic request lines to path until ctx ends. The
// file is truncated first.
func writeRequests(ctx context.Context, path string, f detect.Format, rate float64, seed int64) error {
	out := os.Stdout
	if path != "-" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}
	w := bufio.NewWriter(out)
	defer w.Flush()
	return streamRequests(ctx, w, f, rate, ingest.NewGenerator(seed))
}

func streamRequests(ctx context.Context, w *bufio.Writer, f detect.Format, rate float64, gen *ingest.Generator) error {
	if rate <= 0 {
		rate = 1
	}
	interval := time.Duration(float64(time.Second) / rate)
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	line := gen.NDJSON
	switch f {
	case detect.FormatApache:
		line = gen.Apache
	case detect.FormatLogfmt:
		line = gen.Logfmt
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if _, err := w.WriteString(line(now) + "\n"); err != nil {
				return err
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}
	}
}
