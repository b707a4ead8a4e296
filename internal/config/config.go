package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"zipcaster/internal/domain"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

const (
	ExporterJSON   = "json"
	ExporterSQLite = "sqlite"
	ExporterRemote = "remote"
)

var knownExporters = []string{ExporterJSON, ExporterSQLite, ExporterRemote}

type Config struct {
	DBPath     string
	ServerPort string
	LogLevel   string

	RawDir string
	Modes  []domain.Mode
	// Limit caps the number of new battles per mode; negative means no limit.
	Limit     int
	Exporters []string

	ExportDir        string
	ExportPath       string
	ExportPathFormat string
	ExportGzip       bool
	ExportJSONLines  bool

	UploadURL    string
	UploadAPIKey string

	AbilityTablePath string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	limit, err := strconv.Atoi(getEnv("LIMIT", "-1"))
	if err != nil {
		return nil, fmt.Errorf("LIMIT must be an integer: %w", err)
	}
	gzipOut, err := strconv.ParseBool(getEnv("EXPORT_GZIP", "false"))
	if err != nil {
		return nil, fmt.Errorf("EXPORT_GZIP must be a boolean: %w", err)
	}
	jsonLines, err := strconv.ParseBool(getEnv("EXPORT_JSON_LINES", "false"))
	if err != nil {
		return nil, fmt.Errorf("EXPORT_JSON_LINES must be a boolean: %w", err)
	}

	cfg := &Config{
		DBPath:           getEnv("DB_PATH", "zipcaster.db"),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		RawDir:           getEnv("RAW_DIR", "raw"),
		Limit:            limit,
		Exporters:        splitList(getEnv("EXPORTERS", "json,sqlite")),
		ExportDir:        getEnv("EXPORT_DIR", "."),
		ExportPath:       getEnv("EXPORT_PATH", ""),
		ExportPathFormat: getEnv("EXPORT_PATH_FORMAT", "Splatoon-3-Battles-2006-01-02-15-04-05.json"),
		ExportGzip:       gzipOut,
		ExportJSONLines:  jsonLines,
		UploadURL:        getEnv("UPLOAD_URL", ""),
		UploadAPIKey:     getEnv("UPLOAD_API_KEY", ""),
		AbilityTablePath: getEnv("ABILITY_TABLE_PATH", ""),
	}

	if cfg.Modes, err = parseModes(getEnv("MODES", "")); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("raw_dir", cfg.RawDir).
		Strs("exporters", cfg.Exporters).
		Int("limit", cfg.Limit).
		Msg("configuration loaded")

	return cfg, nil
}

func (c *Config) validate() error {
	for _, e := range c.Exporters {
		if !slices.Contains(knownExporters, e) {
			return fmt.Errorf("EXPORTERS: unknown exporter %q", e)
		}
	}
	if c.HasExporter(ExporterRemote) {
		if c.UploadURL == "" {
			return fmt.Errorf("UPLOAD_URL is required")
		}
		if c.UploadAPIKey == "" {
			return fmt.Errorf("UPLOAD_API_KEY is required")
		}
	}
	return nil
}

func (c *Config) HasExporter(name string) bool {
	return slices.Contains(c.Exporters, name)
}

// parseModes reads a comma separated mode list. An empty list selects every
// mode.
func parseModes(s string) ([]domain.Mode, error) {
	names := splitList(s)
	if len(names) == 0 {
		return slices.Clone(domain.Modes), nil
	}

	modes := make([]domain.Mode, 0, len(names))
	for _, n := range names {
		m := domain.Mode(n)
		if !m.Valid() {
			return nil, fmt.Errorf("MODES: unknown mode %q", n)
		}
		modes = append(modes, m)
	}
	return modes, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
