package config

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every key when read from the environment, with
// dots replaced by underscores (amqp.url -> HOMEBUDGET_AMQP_URL).
const EnvPrefix = "HOMEBUDGET"

type Config struct {
	// Budget file
	DBPath  string `mapstructure:"db_path"`
	NewDB   bool   `mapstructure:"new_db"`
	Backend string `mapstructure:"backend"`
	DataDir string `mapstructure:"data_dir"`

	// HTTP Server
	Port            string        `mapstructure:"port"`
	ReportCacheSize int           `mapstructure:"report_cache_size"`
	ReportCacheTTL  time.Duration `mapstructure:"report_cache_ttl"`

	LogLevel string `mapstructure:"log_level"`

	AMQP   AMQPConfig   `mapstructure:"amqp"`
	Sheets SheetsConfig `mapstructure:"sheets"`
	Theme  ThemeConfig  `mapstructure:"theme"`
}

// AMQPConfig enables change events when URL is set.
type AMQPConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
	Queue    string `mapstructure:"queue"`
}

type SheetsConfig struct {
	SpreadsheetID string        `mapstructure:"spreadsheet_id"`
	Tab           string        `mapstructure:"tab"`
	SyncDebounce  time.Duration `mapstructure:"sync_debounce"`
}

// ThemeConfig holds terminal colours as hex (#rrggbb) or ANSI codes.
type ThemeConfig struct {
	Header   string `mapstructure:"header"`
	Label    string `mapstructure:"label"`
	Negative string `mapstructure:"negative"`
	Border   string `mapstructure:"border"`
}

var validBackends = []string{"memory", "sqlite"}

var validLogLevels = []string{"debug", "info", "warn", "error"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_path", "./data/homebudget.db")
	v.SetDefault("new_db", false)
	v.SetDefault("backend", "sqlite")
	v.SetDefault("data_dir", "./data")

	v.SetDefault("port", "8081")
	v.SetDefault("report_cache_size", 100)
	v.SetDefault("report_cache_ttl", 5*time.Minute)

	v.SetDefault("log_level", "info")

	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "homebudget")
	v.SetDefault("amqp.queue", "budget_changes")

	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.tab", "Budget")
	v.SetDefault("sheets.sync_debounce", 2*time.Second)

	v.SetDefault("theme.header", "#89b4fa")
	v.SetDefault("theme.label", "#7f849c")
	v.SetDefault("theme.negative", "#f38ba8")
	v.SetDefault("theme.border", "#45475a")
}

// Load reads defaults, then the TOML file at path when path is not empty,
// then HOMEBUDGET_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate validates the configuration and returns an error listing every
// problem found.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validBackends, c.Backend) {
		errors = append(errors, fmt.Sprintf("invalid backend '%s': must be one of %v", c.Backend, validBackends))
	}
	if c.Backend == "sqlite" && strings.TrimSpace(c.DBPath) == "" {
		errors = append(errors, "database path cannot be empty when using sqlite backend")
	}

	if !slices.Contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}

	if c.ReportCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid report cache size %d: must be at least 1", c.ReportCacheSize))
	}
	if c.ReportCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid report cache ttl %v: must not be negative", c.ReportCacheTTL))
	}

	if c.Sheets.SyncDebounce < 0 {
		errors = append(errors, fmt.Sprintf("invalid sheets sync debounce %v: must not be negative", c.Sheets.SyncDebounce))
	}

	if c.AMQP.URL != "" {
		if parsedURL, err := url.Parse(c.AMQP.URL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQP.URL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQP.Exchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQP.Queue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	for name, color := range map[string]string{
		"header":   c.Theme.Header,
		"label":    c.Theme.Label,
		"negative": c.Theme.Negative,
		"border":   c.Theme.Border,
	} {
		if !validColor(color) {
			errors = append(errors, fmt.Sprintf("invalid theme.%s colour '%s': must be #rgb, #rrggbb or an ANSI code", name, color))
		}
	}

	if len(errors) > 0 {
		slices.Sort(errors)
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// validColor accepts an empty value (no colour), hex colours and ANSI codes
// 0-255.
func validColor(s string) bool {
	if s == "" {
		return true
	}
	if hex, ok := strings.CutPrefix(s, "#"); ok {
		if len(hex) != 3 && len(hex) != 6 {
			return false
		}
		_, err := strconv.ParseUint(hex, 16, 32)
		return err == nil
	}
	n, err := strconv.Atoi(s)
	return err == nil && n >= 0 && n <= 255
}
