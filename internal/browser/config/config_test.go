package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/v2"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Env != "prod" {
		t.Errorf("expected Env=prod, got %q", cfg.Env)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected LogLevel=info, got %q", cfg.LogLevel)
	}
	if cfg.SearchEndpoint != "https://www.google.com/search?q=" {
		t.Errorf("unexpected SearchEndpoint %q", cfg.SearchEndpoint)
	}
	if !cfg.BlocklistBuiltin {
		t.Errorf("expected BlocklistBuiltin=true")
	}
	if len(cfg.BlocklistDomains) != 0 || len(cfg.BlocklistKeywords) != 0 || len(cfg.BlocklistDocuments) != 0 {
		t.Errorf("expected no blocklist files by default")
	}
	if cfg.BlocklistCacheSize != 0 {
		t.Errorf("expected verdict cache disabled by default, got %d", cfg.BlocklistCacheSize)
	}
	if cfg.BlocklistPrefilterMin != 256 {
		t.Errorf("expected BlocklistPrefilterMin=256, got %d", cfg.BlocklistPrefilterMin)
	}
	if cfg.JournalPath != "" {
		t.Errorf("expected journal disabled by default, got %q", cfg.JournalPath)
	}
	if !cfg.EngineGateSubresources || cfg.EngineHeadless {
		t.Errorf("unexpected engine defaults: %+v", cfg)
	}
	if cfg.SupersededHistory != 16 {
		t.Errorf("expected SupersededHistory=16, got %d", cfg.SupersededHistory)
	}
}

func TestLoad_ValidOverrides(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.hosts")
	kw := filepath.Join(dir, "kw.txt")
	for _, p := range []string{a, b, kw} {
		if err := os.WriteFile(p, []byte("x\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	t.Setenv("BEACON_ENV", "dev")
	t.Setenv("BEACON_LOG_LEVEL", "debug")
	t.Setenv("BEACON_SEARCH_ENDPOINT", "https://duckduckgo.com/?q=")
	t.Setenv("BEACON_BLOCKLIST_BUILTIN", "false")
	t.Setenv("BEACON_BLOCKLIST_DOMAINS", a+","+b)
	t.Setenv("BEACON_BLOCKLIST_KEYWORDS", kw)
	t.Setenv("BEACON_BLOCKLIST_CACHE_SIZE", "512")
	t.Setenv("BEACON_BLOCKLIST_PREFILTER_MIN", "64")
	t.Setenv("BEACON_JOURNAL_PATH", filepath.Join(dir, "journal.db"))
	t.Setenv("BEACON_ENGINE_BIN", "/usr/bin/chromium")
	t.Setenv("BEACON_ENGINE_DEBUGGER_URL", "ws://127.0.0.1:9222/devtools/browser/abc")
	t.Setenv("BEACON_ENGINE_HEADLESS", "true")
	t.Setenv("BEACON_ENGINE_GATE_SUBRESOURCES", "false")
	t.Setenv("BEACON_SUPERSEDED_HISTORY", "32")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Env != "dev" || cfg.LogLevel != "debug" {
		t.Errorf("unexpected env/log: %q %q", cfg.Env, cfg.LogLevel)
	}
	if cfg.SearchEndpoint != "https://duckduckgo.com/?q=" {
		t.Errorf("unexpected SearchEndpoint %q", cfg.SearchEndpoint)
	}
	if cfg.BlocklistBuiltin {
		t.Errorf("expected BlocklistBuiltin=false")
	}
	if len(cfg.BlocklistDomains) != 2 || cfg.BlocklistDomains[0] != a || cfg.BlocklistDomains[1] != b {
		t.Errorf("unexpected BlocklistDomains %v", cfg.BlocklistDomains)
	}
	if len(cfg.BlocklistKeywords) != 1 || cfg.BlocklistKeywords[0] != kw {
		t.Errorf("unexpected BlocklistKeywords %v", cfg.BlocklistKeywords)
	}
	if cfg.BlocklistCacheSize != 512 || cfg.BlocklistPrefilterMin != 64 {
		t.Errorf("unexpected blocklist sizes: %d %d", cfg.BlocklistCacheSize, cfg.BlocklistPrefilterMin)
	}
	if cfg.JournalPath != filepath.Join(dir, "journal.db") {
		t.Errorf("unexpected JournalPath %q", cfg.JournalPath)
	}
	if cfg.EngineBin != "/usr/bin/chromium" || !cfg.EngineHeadless || cfg.EngineGateSubresources {
		t.Errorf("unexpected engine config: %+v", cfg)
	}
	if cfg.EngineDebuggerURL != "ws://127.0.0.1:9222/devtools/browser/abc" {
		t.Errorf("unexpected EngineDebuggerURL %q", cfg.EngineDebuggerURL)
	}
	if cfg.SupersededHistory != 32 {
		t.Errorf("expected SupersededHistory=32, got %d", cfg.SupersededHistory)
	}
}

func TestLoad_DotenvFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(p, []byte("BEACON_LOG_LEVEL=warn\nBEACON_ENV=dev\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// an explicit environment variable wins over the file
	t.Setenv("BEACON_ENV", "prod")
	orig := dotenvFile
	dotenvFile = p
	t.Cleanup(func() {
		dotenvFile = orig
		_ = os.Unsetenv("BEACON_LOG_LEVEL")
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected LogLevel from .env, got %q", cfg.LogLevel)
	}
	if cfg.Env != "prod" {
		t.Errorf("expected environment to win over .env, got %q", cfg.Env)
	}
}

func TestLoad_DotenvFails(t *testing.T) {
	orig := dotenvLoader
	dotenvLoader = func() error { return errors.New("mocked dotenv error") }
	defer func() { dotenvLoader = orig }()

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "mocked dotenv error") {
		t.Fatalf("expected dotenv error, got %v", err)
	}
}

func TestLoad_WhenKoanfDefaultLoadFails(t *testing.T) {
	orig := defaultLoader
	defaultLoader = func(k *koanf.Koanf) error { return errors.New("mocked error") }
	defer func() { defaultLoader = orig }()

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "mocked error") {
		t.Fatal("expected error when loading defaults, got nil")
	}
}

func TestLoad_WhenKoanfEnvLoadFails(t *testing.T) {
	orig := envLoader
	envLoader = func(k *koanf.Koanf) error { return errors.New("mocked error") }
	defer func() { envLoader = orig }()

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "mocked error") {
		t.Fatal("expected error when loading env, got nil")
	}
}

func TestLoad_RegisterValidationFails(t *testing.T) {
	orig := registerValidation
	registerValidation = func(v *validator.Validate) error { return errors.New("mocked validation error") }
	defer func() { registerValidation = orig }()

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "mocked validation error") {
		t.Fatal("expected error when registering validation, got nil")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"env":             {"BEACON_ENV": "staging"},
		"log level":       {"BEACON_LOG_LEVEL": "trace"},
		"search scheme":   {"BEACON_SEARCH_ENDPOINT": "ftp://search.example/?q="},
		"search relative": {"BEACON_SEARCH_ENDPOINT": "/search?q="},
		"cache size":      {"BEACON_BLOCKLIST_CACHE_SIZE": "-1"},
		"prefilter min":   {"BEACON_BLOCKLIST_PREFILTER_MIN": "0"},
		"missing list":    {"BEACON_BLOCKLIST_DOMAINS": "/nonexistent/beacon/list.txt"},
		"debugger url":    {"BEACON_ENGINE_DEBUGGER_URL": "not a url"},
		"history":         {"BEACON_SUPERSEDED_HISTORY": "0"},
		"history NaN":     {"BEACON_SUPERSEDED_HISTORY": "many"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %v", env)
			}
		})
	}
}

func TestValidSearchEndpoint(t *testing.T) {
	v := validator.New()
	if err := v.RegisterValidation("search_endpoint", validSearchEndpoint); err != nil {
		t.Fatal(err)
	}
	type s struct {
		E string `validate:"search_endpoint"`
	}
	if err := v.Struct(s{E: "https://www.bing.com/search?q="}); err != nil {
		t.Errorf("expected valid endpoint, got %v", err)
	}
	if err := v.Struct(s{E: "https://"}); err == nil {
		t.Errorf("expected hostless endpoint to fail")
	}
}
