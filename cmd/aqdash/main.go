package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"aqdash/internal/ai"
	"aqdash/internal/config"
	"aqdash/internal/dashboard"
	"aqdash/internal/detect"
	"aqdash/internal/ingest"
	"aqdash/internal/source"
	"aqdash/internal/ui"
	"aqdash/internal/util/logx"
	"aqdash/internal/version"
)

func main() {
	logx.SetLevelFromEnv()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	if cfg.ShowVersion {
		fmt.Println("aqdash", version.String())
		return
	}

	// Setup cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	deps := wire(ctx, cfg)

	if cfg.Headless() {
		logx.SetStderr(true)
		if err := runHeadless(ctx, cfg, deps); err != nil {
			logx.Errorf("export failed: %v", err)
			os.Exit(1)
		}
		return
	}

	logx.Infof("starting aqdash %s: %s", version.String(), cfg.String())
	if err := ui.Run(ctx, cfg, deps); err != nil {
		logx.Errorf("aqdash exited with error: %v", err)
		os.Exit(1)
	}
}

// wire builds the view controllers. The analytics view reads the backend
// unless a local request log was asked for.
func wire(ctx context.Context, cfg *config.Config) ui.Deps {
	client := source.NewClient(cfg.APIBaseURL, cfg.Timeout())
	fallback := ai.Recommender{}
	if !cfg.Offline {
		fallback.Client = ai.NewOpenAIClient(cfg.OpenAIKey(), cfg.OpenAIBase, cfg.OpenAIModel, cfg.OpenAITimeout())
	}
	deps := ui.Deps{
		Cities:  dashboard.NewCities(client),
		Advisor: dashboard.Advisor{Backend: client, Fallback: fallback},
	}
	if !cfg.LocalRequests() {
		deps.Analytics = dashboard.NewAnalytics(client)
		return deps
	}
	deps.Analytics = dashboard.NewAnalytics(nil)
	deps.Feed = dashboard.StartFeed(ctx, feedOptions(cfg))
	return deps
}

func feedOptions(cfg *config.Config) dashboard.FeedOptions {
	in := ingest.Options{
		Source:         ingest.SourceFile,
		Path:           cfg.RequestsFile,
		Follow:         cfg.Follow,
		ScanBufSize:    1024 * 1024,
		BlockSizeBytes: int64(cfg.BlockSizeMB) << 20,
	}
	switch {
	case cfg.Demo:
		in.Source = ingest.SourceDemo
	case cfg.UseStdin:
		in.Source = ingest.SourceStdin
	}
	format := detect.FormatUnknown
	if cfg.LogFormat != "" {
		f, ok := detect.ParseFormat(cfg.LogFormat)
		if !ok {
			logx.Warnf("unknown request log format %q, detecting instead", cfg.LogFormat)
		}
		format = f
	}
	return dashboard.FeedOptions{Ingest: in, Format: format, MaxBuffer: cfg.MaxBuffer}
}
