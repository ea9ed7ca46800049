package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Parse(nil, io.Discard)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8080/api" || cfg.View != ViewCities || cfg.Theme != ThemeDark {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.LocalRequests() || cfg.Headless() {
		t.Fatalf("defaults should be remote and interactive")
	}
}

func TestPrecedence(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "aqdash.yaml")
	yml := "api_base_url: http://yaml:1/api\ntimeout_sec: 3\ntheme: light\nfilter: par\nopenai_model: from-yaml\n"
	if err := os.WriteFile(p, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AQDASH_TIMEOUT_SEC", "7")
	t.Setenv("AQDASH_OPENAI_MODEL", "from-env")

	cfg, err := Parse([]string{"--config", p, "--openai-model=from-flag"}, io.Discard)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.APIBaseURL != "http://yaml:1/api" {
		t.Fatalf("yaml should override defaults: %s", cfg.APIBaseURL)
	}
	if cfg.TimeoutSec != 7 {
		t.Fatalf("env should override yaml: %d", cfg.TimeoutSec)
	}
	if cfg.OpenAIModel != "from-flag" {
		t.Fatalf("flag should override env: %s", cfg.OpenAIModel)
	}
	if cfg.Theme != ThemeLight || cfg.Filter != "par" || cfg.ConfigPath != p {
		t.Fatalf("yaml values lost: %+v", cfg)
	}
}

func TestValidation(t *testing.T) {
	if _, err := Parse([]string{"--export", "csv"}, io.Discard); err == nil {
		t.Fatalf("--export without --out should fail")
	}
	if _, err := Parse([]string{"--view", "map"}, io.Discard); err == nil {
		t.Fatalf("unknown view should fail")
	}
	if _, err := Parse([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, io.Discard); err == nil {
		t.Fatalf("missing config file should fail")
	}
	cfg, err := Parse([]string{"-view=ANALYTICS", "--max-buffer", "5", "--export", "json", "--out", "-"}, io.Discard)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.View != ViewAnalytics || cfg.MaxBuffer != 100 || !cfg.Headless() {
		t.Fatalf("normalized: %+v", cfg)
	}
}

func TestLookupFlag(t *testing.T) {
	if v, ok := lookupFlag([]string{"-x", "--config=a.yaml"}, "config"); !ok || v != "a.yaml" {
		t.Fatalf("= form: %q %v", v, ok)
	}
	if v, ok := lookupFlag([]string{"-config", "b.yaml"}, "config"); !ok || v != "b.yaml" {
		t.Fatalf("space form: %q %v", v, ok)
	}
	if _, ok := lookupFlag([]string{"--", "--config", "c"}, "config"); ok {
		t.Fatalf("args after -- must be ignored")
	}
}
