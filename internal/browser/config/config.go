package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variable names.
const EnvPrefix = "BEACON_"

// AppConfig holds configuration values parsed from the environment.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// SearchEndpoint is the query template search phrases are appended to.
	SearchEndpoint string `koanf:"search_endpoint" validate:"required,search_endpoint"`

	// BlocklistBuiltin includes the compiled-in fragment sets.
	BlocklistBuiltin bool `koanf:"blocklist_builtin"`

	// BlocklistDomains, BlocklistKeywords and BlocklistDocuments are fragment
	// list files read once at startup. Documents are YAML, JSON or TOML.
	BlocklistDomains   []string `koanf:"blocklist_domains" validate:"dive,file"`
	BlocklistKeywords  []string `koanf:"blocklist_keywords" validate:"dive,file"`
	BlocklistDocuments []string `koanf:"blocklist_documents" validate:"dive,file"`

	// BlocklistCacheSize is the verdict cache capacity; 0 disables it.
	BlocklistCacheSize int `koanf:"blocklist_cache_size" validate:"gte=0"`

	// BlocklistPrefilterMin is the fragment count from which the Bloom
	// prefilter is built.
	BlocklistPrefilterMin int `koanf:"blocklist_prefilter_min" validate:"gte=1"`

	// JournalPath is the blocked-attempt database. Empty disables the journal.
	JournalPath string `koanf:"journal_path"`

	// EngineBin is the browser executable; empty lets the launcher decide.
	EngineBin string `koanf:"engine_bin"`

	// EngineDebuggerURL attaches to a running browser instead of launching one.
	EngineDebuggerURL string `koanf:"engine_debugger_url" validate:"omitempty,url"`

	EngineHeadless         bool `koanf:"engine_headless"`
	EngineGateSubresources bool `koanf:"engine_gate_subresources"`

	// SupersededHistory bounds how many superseded load targets are
	// remembered for stale-callback filtering.
	SupersededHistory int `koanf:"superseded_history" validate:"gte=1,lte=1024"`
}

// DEFAULT_APP_CONFIG defines the default application configuration.
var DEFAULT_APP_CONFIG = AppConfig{
	Env:                    "prod",
	LogLevel:               "info",
	SearchEndpoint:         "https://www.google.com/search?q=",
	BlocklistBuiltin:       true,
	BlocklistDomains:       []string{},
	BlocklistKeywords:      []string{},
	BlocklistDocuments:     []string{},
	BlocklistCacheSize:     0,
	BlocklistPrefilterMin:  256,
	JournalPath:            "",
	EngineBin:              "",
	EngineDebuggerURL:      "",
	EngineHeadless:         false,
	EngineGateSubresources: true,
	SupersededHistory:      16,
}

// validSearchEndpoint accepts absolute http(s) URLs with a host. The phrase
// is appended verbatim, so the template normally ends in "=".
func validSearchEndpoint(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	return (u.Scheme == "https" || u.Scheme == "http") && u.Host != ""
}

// dotenvFile is an optional file of KEY=value lines loaded before the
// environment is read. Variables already set win.
var dotenvFile = ".env"

// dotenvLoader loads dotenvFile when it exists and can be mocked in tests.
var dotenvLoader = func() error {
	if err := godotenv.Load(dotenvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// envLoader loads environment variables with the prefix "BEACON_". Keys are
// lowercased with the prefix removed; values containing spaces or commas
// become lists.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
			value = strings.TrimSpace(value)

			if value == "" {
				return key, value
			}

			if strings.Contains(value, " ") || strings.Contains(value, ",") {
				parts := strings.FieldsFunc(value, func(r rune) bool {
					return r == ' ' || r == ','
				})
				return key, parts
			}

			return key, value
		},
	}), nil)
}

// defaultLoader loads DEFAULT_APP_CONFIG through the structs provider.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// registerValidation registers the "search_endpoint" tag.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("search_endpoint", validSearchEndpoint)
}

// Load reads defaults, an optional .env file and the environment, and
// returns a validated AppConfig.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	if err := dotenvLoader(); err != nil {
		return nil, fmt.Errorf("error loading %s: %w", dotenvFile, err)
	}

	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := registerValidation(validate); err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
