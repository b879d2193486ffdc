package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/icodeforyou/weatherboard-go/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppConfigApi struct {
	Address string
	Port    int16
	// If not assigned, the server will serve embedded files.
	// If assigned, the server will serve files from the directory,
	// that must contain a "static" and "templates" directory.
	// This is useful for development.
	WwwDir *string `mapstructure:"www_dir"`
	// Key used to sign the session cookie, 32 or 64 bytes. A random key
	// is generated when missing, which logs everybody out on restart.
	SessionKey *string `mapstructure:"session_key"`
	// Hours a browser session lives without activity, default: 720
	SessionMaxAgeHours *int `mapstructure:"session_max_age_hours"`
}

func (a AppConfigApi) GetSessionKey() []byte {
	if a.SessionKey == nil || *a.SessionKey == "" {
		return nil
	}
	return []byte(*a.SessionKey)
}

func (a AppConfigApi) GetSessionMaxAge() time.Duration {
	if a.SessionMaxAgeHours == nil {
		return 720 * time.Hour
	}
	return time.Duration(*a.SessionMaxAgeHours) * time.Hour
}

type AppConfigDatabase struct {
	Path string
	// How many days data should be stored in database before it gets purged
	DataRetentionDays *int `mapstructure:"data_retention_days"`
	// How many days daily backup files should be stored before they gets deleted
	BackupRetentionDays *int `mapstructure:"backup_retention_days"`
	// When backups, purges and session cleanup run, default: "0 3 * * *"
	MaintenanceRunAt *string `mapstructure:"maintenance_run_at"`
}

func (d AppConfigDatabase) GetDataRetentionDays() int {
	if d.DataRetentionDays == nil {
		return 90
	}
	return *d.DataRetentionDays
}

func (d AppConfigDatabase) GetBackupRetentionDays() int {
	if d.BackupRetentionDays == nil {
		return 90
	}
	return *d.BackupRetentionDays
}

func (d AppConfigDatabase) GetMaintenanceRunAt() string {
	if d.MaintenanceRunAt == nil {
		return "0 3 * * *"
	}
	return *d.MaintenanceRunAt
}

type AppConfigOpenWeatherMap struct {
	ApiKey  string  `mapstructure:"api_key"`
	BaseURL *string `mapstructure:"base_url"`
	// Request timeout in seconds, default: 10
	Timeout *int `mapstructure:"timeout"`
	// Outbound requests per second, default: 1 (0 disables the limit)
	RequestsPerSecond *float64 `mapstructure:"requests_per_second"`
	// Requests allowed at once before the limit applies, default: 2
	Burst *int `mapstructure:"burst"`
}

func (o AppConfigOpenWeatherMap) GetBaseURL() string {
	if o.BaseURL == nil {
		return ""
	}
	return *o.BaseURL
}

func (o AppConfigOpenWeatherMap) GetTimeout() time.Duration {
	if o.Timeout == nil {
		return 10 * time.Second
	}
	return time.Duration(*o.Timeout) * time.Second
}

func (o AppConfigOpenWeatherMap) GetRequestsPerSecond() float64 {
	if o.RequestsPerSecond == nil {
		return 1
	}
	return *o.RequestsPerSecond
}

func (o AppConfigOpenWeatherMap) GetBurst() int {
	if o.Burst == nil {
		return 2
	}
	return *o.Burst
}

type AppConfigGeocoding struct {
	BaseURL *string `mapstructure:"base_url"`
	// Candidates requested per lookup, default: 5
	Count *int `mapstructure:"count"`
	// Countries listed before all others, default: ["United States"]
	PriorityCountries []string `mapstructure:"priority_countries"`
}

func (g AppConfigGeocoding) GetBaseURL() string {
	if g.BaseURL == nil {
		return ""
	}
	return *g.BaseURL
}

func (g AppConfigGeocoding) GetCount() int {
	if g.Count == nil {
		return 5
	}
	return *g.Count
}

func (g AppConfigGeocoding) GetPriorityCountries() []string {
	if g.PriorityCountries == nil {
		return []string{"United States"}
	}
	return g.PriorityCountries
}

type AppConfigSuggest struct {
	// Quiet period after the last keystroke in ms, default: 300
	DebounceMs *int `mapstructure:"debounce_ms"`
	// Shortest input that triggers a lookup, default: 2
	MinChars *int `mapstructure:"min_chars"`
}

func (s AppConfigSuggest) GetDebounce() time.Duration {
	if s.DebounceMs == nil {
		return 300 * time.Millisecond
	}
	return time.Duration(*s.DebounceMs) * time.Millisecond
}

func (s AppConfigSuggest) GetMinChars() int {
	if s.MinChars == nil {
		return 2
	}
	return *s.MinChars
}

type AppConfigCache struct {
	// How long fetched weather is reused, default: 10 (0 disables)
	TtlMinutes *int `mapstructure:"ttl_minutes"`
}

func (c AppConfigCache) GetTtl() time.Duration {
	if c.TtlMinutes == nil {
		return 10 * time.Minute
	}
	return time.Duration(*c.TtlMinutes) * time.Minute
}

type AppConfigRefresh struct {
	// Cron spec, empty disables the refresh
	RunAt string `mapstructure:"run_at"`
	// Most recently searched cities to refresh, default: 5
	MaxCities *int `mapstructure:"max_cities"`
}

func (r AppConfigRefresh) GetMaxCities() int {
	if r.MaxCities == nil {
		return 5
	}
	return *r.MaxCities
}

type AppConfigMqtt struct {
	// Empty host disables publishing
	Host     string
	Port     int16
	Username string
	Password string
	// Topics are <prefix>/<city>/current, default: "weatherboard"
	TopicPrefix *string `mapstructure:"topic_prefix"`
}

func (m AppConfigMqtt) Enabled() bool {
	return m.Host != ""
}

func (m AppConfigMqtt) GetTopicPrefix() string {
	if m.TopicPrefix == nil {
		return "weatherboard"
	}
	return *m.TopicPrefix
}

type AppConfigGui struct {
	// Timezone for displaying times in the GUI, default: UTC
	Timezone *string `mapstructure:"timezone"`
}

func (g AppConfigGui) GetTimezone() string {
	if g.Timezone == nil {
		return "UTC"
	}
	return *g.Timezone
}

type AppConfigLogging struct {
	// Min log level for database : "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	DbLevel *string `mapstructure:"db_level"`
	// Log attributes format: "TEXT", "JSON", default: "JSON"
	DbAttrsFormat *string `mapstructure:"db_attrs_format"`
	// Maximum number of log entries in the database, default: 10000
	DbMaxEntries *int `mapstructure:"db_max_entries"`
	// Min log level for database console: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	ConsoleLevel *string `mapstructure:"console_level"`
}

func (l AppConfigLogging) GetDbLevel() slog.Level {
	return logging.LevelFromString(l.DbLevel)
}

func (l AppConfigLogging) GetDbAttrsFormat() logging.LogAttrFormat {
	if l.DbAttrsFormat == nil {
		return logging.LogAttrFormatJSON
	}
	if strings.EqualFold(*l.DbAttrsFormat, "text") {
		return logging.LogAttrFormatText
	}
	return logging.LogAttrFormatJSON
}

func (l AppConfigLogging) GetDbMaxEntries() int {
	if l.DbMaxEntries == nil {
		return 10000
	}
	return *l.DbMaxEntries
}

func (l AppConfigLogging) GetConsoleLevel() slog.Level {
	return logging.LevelFromString(l.ConsoleLevel)
}

type AppConfig struct {
	Api            AppConfigApi
	Database       AppConfigDatabase
	OpenWeatherMap AppConfigOpenWeatherMap `mapstructure:"openweathermap"`
	Geocoding      AppConfigGeocoding      `mapstructure:"geocoding"`
	Suggest        AppConfigSuggest        `mapstructure:"suggest"`
	Cache          AppConfigCache          `mapstructure:"cache"`
	Refresh        AppConfigRefresh        `mapstructure:"refresh"`
	Mqtt           AppConfigMqtt           `mapstructure:"mqtt"`
	Gui            AppConfigGui            `mapstructure:"gui"`
	Logging        AppConfigLogging        `mapstructure:"logging"`
}

// Load reads the yaml config. Variables in a .env file in the working
// directory are exported first, and environment variables override file
// values, e.g. OPENWEATHERMAP_API_KEY for openweathermap.api_key.
func Load(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("unable to load .env file: %w", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("config")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Keys must be known to viper for environment-only values to unmarshal.
	v.SetDefault("api.address", "")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.session_key", "")
	v.SetDefault("database.path", "weatherboard.db")
	v.SetDefault("openweathermap.api_key", "")
	v.SetDefault("mqtt.host", "")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")

	var c AppConfig

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config file: %w", err)
	}

	if c.OpenWeatherMap.ApiKey == "" {
		return nil, errors.New("openweathermap.api_key is required")
	}

	return &c, nil
}
