package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultConfigPath = "assistante-suite-configs.yaml"

type BackendConfig struct {
	Host          string   `yaml:"host"`
	Port          int      `yaml:"port"`
	LogLevel      string   `yaml:"log_level"`
	MainLogFile   string   `yaml:"main_log_file"`
	AccessLog     string   `yaml:"access_log"`
	AccessLogPath string   `yaml:"access_log_path"`
	AllowCORS     []string `yaml:"allow_cors"`
	SSL           bool     `yaml:"ssl"`
	SSLCert       string   `yaml:"ssl_cert"`
	SSLKey        string   `yaml:"ssl_key"`
	LoadDotenv    bool     `yaml:"load_dotenv"`
	BodyLimitMB   int      `yaml:"body_limit_mb"`
}

type DatabaseConfig struct {
	URL         string `yaml:"url"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

type ContentConfig struct {
	// Driver selects the stores: "postgres", "mongo" (pages in Mongo, the rest in
	// Postgres) or "memory".
	Driver          string `yaml:"driver"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

type MongoDBConfig struct {
	URL   string `yaml:"url"`
	DB    string `yaml:"db"`
	Pages string `yaml:"pages"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AdminConfig struct {
	Email            string `yaml:"email"`
	PasswordHash     string `yaml:"password_hash"`
	SessionSignToken string `yaml:"session_sign_token"`
	SessionTTLHours  int    `yaml:"session_ttl_hours"`
}

type SMTPConfig struct {
	Enabled     bool   `yaml:"enabled"`
	SMTPAddr    string `yaml:"smtp_addr"`
	SMTPPort    int    `yaml:"smtp_port"`
	SMTPMail    string `yaml:"smtp_mail"`
	SMTPPass    string `yaml:"smtp_pass"`
	DisplayName string `yaml:"display_name"`
}

type TurnstileConfig struct {
	Enabled bool   `yaml:"enabled"`
	Secret  string `yaml:"secret"`
}

type EditorConfig struct {
	Locale          string   `yaml:"locale"`
	ExpandKeys      []string `yaml:"expand_keys"`
	HistoryLimit    int      `yaml:"history_limit"`
	SessionTTLHours int      `yaml:"session_ttl_hours"`
}

type OpeningHours struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type AppointmentsConfig struct {
	SlotMinutes  int                     `yaml:"slot_minutes"`
	DaysAhead    int                     `yaml:"days_ahead"`
	Timezone     string                  `yaml:"timezone"`
	NotifyEmail  string                  `yaml:"notify_email"`
	OpeningHours map[string]OpeningHours `yaml:"opening_hours"`
}

type NewsletterConfig struct {
	ConfirmURL            string `yaml:"confirm_url"`
	UnsubscribeURL        string `yaml:"unsubscribe_url"`
	SubscribeLimitPerHour int    `yaml:"subscribe_limit_per_hour"`
}

type Config struct {
	Backend      BackendConfig      `yaml:"backend"`
	Database     DatabaseConfig     `yaml:"database"`
	Content      ContentConfig      `yaml:"content"`
	MongoDB      MongoDBConfig      `yaml:"mongodb"`
	Redis        RedisConfig        `yaml:"redis"`
	Admin        AdminConfig        `yaml:"admin"`
	SMTP         SMTPConfig         `yaml:"smtp"`
	Turnstile    TurnstileConfig    `yaml:"turnstile"`
	Editor       EditorConfig       `yaml:"editor"`
	Appointments AppointmentsConfig `yaml:"appointments"`
	Newsletter   NewsletterConfig   `yaml:"newsletter"`
}

// Cfg is populated by main through Load.
var Cfg Config

// Load reads the YAML file at path, optionally merges a .env file, applies the
// environment overrides for secrets and fills defaults.
func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Backend.LoadDotenv {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("failed to load .env: %w", err)
		}
	}
	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrides := map[string]*string{
		"ASSISTANTE_DB_URL":              &cfg.Database.URL,
		"ASSISTANTE_MONGO_URL":           &cfg.MongoDB.URL,
		"ASSISTANTE_REDIS_PASSWORD":      &cfg.Redis.Password,
		"ASSISTANTE_SESSION_SECRET":      &cfg.Admin.SessionSignToken,
		"ASSISTANTE_ADMIN_PASSWORD_HASH": &cfg.Admin.PasswordHash,
		"ASSISTANTE_SMTP_PASS":           &cfg.SMTP.SMTPPass,
		"ASSISTANTE_TURNSTILE_SECRET":    &cfg.Turnstile.Secret,
	}
	for env, target := range overrides {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*target = v
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Backend.Host == "" {
		cfg.Backend.Host = "0.0.0.0"
	}
	if cfg.Backend.Port == 0 {
		cfg.Backend.Port = 8080
	}
	if cfg.Backend.LogLevel == "" {
		cfg.Backend.LogLevel = "INFO"
	}
	if cfg.Backend.BodyLimitMB == 0 {
		cfg.Backend.BodyLimitMB = 4
	}
	if cfg.Content.Driver == "" {
		cfg.Content.Driver = "postgres"
	}
	if cfg.Content.CacheTTLSeconds == 0 {
		cfg.Content.CacheTTLSeconds = 300
	}
	if cfg.MongoDB.Pages == "" {
		cfg.MongoDB.Pages = "site_pages"
	}
	if cfg.Admin.SessionTTLHours == 0 {
		cfg.Admin.SessionTTLHours = 12
	}
	if cfg.Editor.Locale == "" {
		cfg.Editor.Locale = "fr"
	}
	if cfg.Editor.HistoryLimit == 0 {
		cfg.Editor.HistoryLimit = 10
	}
	if cfg.Editor.SessionTTLHours == 0 {
		cfg.Editor.SessionTTLHours = 12
	}
	if cfg.Appointments.SlotMinutes == 0 {
		cfg.Appointments.SlotMinutes = 30
	}
	if cfg.Appointments.DaysAhead == 0 {
		cfg.Appointments.DaysAhead = 60
	}
	if cfg.Appointments.Timezone == "" {
		cfg.Appointments.Timezone = "Europe/Paris"
	}
	if cfg.Newsletter.SubscribeLimitPerHour == 0 {
		cfg.Newsletter.SubscribeLimitPerHour = 5
	}
}
