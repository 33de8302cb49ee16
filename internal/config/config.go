// Package config carga la configuración desde YAML y la pisa con variables
// de entorno. La clave de firma JWT solo entra por env.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingSigningKey: sin clave de firma no arrancamos.
var ErrMissingSigningKey = errors.New("config: jwt signing key is required (JWT_SIGNING_KEY)")

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		BaseURL            string   `yaml:"base_url"` // para armar links en mails
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	Storage struct {
		Driver   string `yaml:"driver"` // postgres | memory
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr string `yaml:"addr"`
			DB   int    `yaml:"db"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	JWT struct {
		SigningKey string `yaml:"-"` // solo env
		Issuer     string `yaml:"issuer"`
		Audience   string `yaml:"audience"`
		AccessTTL  string `yaml:"access_ttl"`
		RefreshTTL string `yaml:"refresh_ttl"`
	} `yaml:"jwt"`

	Register struct {
		AutoLogin bool `yaml:"auto_login"`
	} `yaml:"register"`

	Email struct {
		SMTP struct {
			Host               string `yaml:"host"`
			Port               int    `yaml:"port"`
			From               string `yaml:"from"`
			User               string `yaml:"user"`
			Pass               string `yaml:"-"` // solo env
			TLSMode            string `yaml:"tls_mode"`
			InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
		} `yaml:"smtp"`
		TemplatesDir string `yaml:"templates_dir"`
		ConfirmTTL   string `yaml:"confirm_ttl"`
	} `yaml:"email"`

	OAuth struct {
		Google struct {
			ClientID     string `yaml:"client_id"`
			ClientSecret string `yaml:"-"` // solo env
			RedirectURL  string `yaml:"redirect_url"`
		} `yaml:"google"`
	} `yaml:"oauth"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Login   struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`
		Refresh struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"refresh"`
	} `yaml:"rate"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"metrics"`
}

func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost:8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "postgres"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "assetweb"
	}
	if c.JWT.Audience == "" {
		c.JWT.Audience = "assetweb-api"
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "15m"
	}
	if c.JWT.RefreshTTL == "" {
		c.JWT.RefreshTTL = "168h" // 7d
	}
	if c.Email.ConfirmTTL == "" {
		c.Email.ConfirmTTL = "24h"
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "1m"
	}
	if c.Rate.Refresh.Limit == 0 {
		c.Rate.Refresh.Limit = 30
	}
	if c.Rate.Refresh.Window == "" {
		c.Rate.Refresh.Window = "1m"
	}

	c.applyEnvOverrides()
	return &c, nil
}

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}

	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("SERVER_BASE_URL"); ok {
		c.Server.BaseURL = v
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}

	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("STORAGE_PG_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}

	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("CACHE_REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvInt("CACHE_REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}

	if v, ok := getEnvStr("JWT_SIGNING_KEY"); ok {
		c.JWT.SigningKey = v
	}
	if v, ok := getEnvStr("JWT_ISSUER"); ok {
		c.JWT.Issuer = v
	}
	if v, ok := getEnvStr("JWT_AUDIENCE"); ok {
		c.JWT.Audience = v
	}
	if v, ok := getEnvStr("JWT_ACCESS_TTL"); ok {
		c.JWT.AccessTTL = v
	}
	if v, ok := getEnvStr("JWT_REFRESH_TTL"); ok {
		c.JWT.RefreshTTL = v
	}

	if v, ok := getEnvBool("REGISTER_AUTO_LOGIN"); ok {
		c.Register.AutoLogin = v
	}

	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.Email.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.Email.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.Email.SMTP.From = v
	}
	if v, ok := getEnvStr("SMTP_USER"); ok {
		c.Email.SMTP.User = v
	}
	if v, ok := getEnvStr("SMTP_PASS"); ok {
		c.Email.SMTP.Pass = v
	}
	if v, ok := getEnvStr("SMTP_TLS_MODE"); ok {
		c.Email.SMTP.TLSMode = v
	}
	if v, ok := getEnvBool("SMTP_INSECURE_SKIP_VERIFY"); ok {
		c.Email.SMTP.InsecureSkipVerify = v
	}
	if v, ok := getEnvStr("EMAIL_CONFIRM_TTL"); ok {
		c.Email.ConfirmTTL = v
	}

	if v, ok := getEnvStr("GOOGLE_CLIENT_ID"); ok {
		c.OAuth.Google.ClientID = v
	}
	if v, ok := getEnvStr("GOOGLE_CLIENT_SECRET"); ok {
		c.OAuth.Google.ClientSecret = v
	}
	if v, ok := getEnvStr("GOOGLE_REDIRECT_URL"); ok {
		c.OAuth.Google.RedirectURL = v
	}

	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvBool("METRICS_ENABLED"); ok {
		c.Metrics.Enabled = v
	}
}

// Validate corre al arranque; un faltante acá es fatal.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.SigningKey) == "" {
		return ErrMissingSigningKey
	}
	if c.Storage.Driver == "postgres" && strings.TrimSpace(c.Storage.DSN) == "" {
		return errors.New("config: storage.dsn is required with the postgres driver")
	}
	if _, err := time.ParseDuration(c.JWT.AccessTTL); err != nil {
		return errors.New("config: jwt.access_ttl is not a valid duration")
	}
	if _, err := time.ParseDuration(c.JWT.RefreshTTL); err != nil {
		return errors.New("config: jwt.refresh_ttl is not a valid duration")
	}
	if _, err := time.ParseDuration(c.Email.ConfirmTTL); err != nil {
		return errors.New("config: email.confirm_ttl is not a valid duration")
	}
	return nil
}

// AccessTTLDuration y compañía asumen Validate ya corrido.
func (c *Config) AccessTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.JWT.AccessTTL)
	return d
}
func (c *Config) RefreshTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.JWT.RefreshTTL)
	return d
}
func (c *Config) ConfirmTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.Email.ConfirmTTL)
	return d
}
