package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppCfg struct {
	Env          string        `yaml:"env"`
	Name         string        `yaml:"name"`
	Version      string        `yaml:"version"`
	Port         int           `yaml:"port"`
	BaseURL      string        `yaml:"baseUrl"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

type JWTCfg struct {
	AccessSecret     string `yaml:"accessSecret"`
	RefreshSecret    string `yaml:"refreshSecret"`
	AccessTTLMinutes int    `yaml:"accessTTLMinutes"`
	RefreshTTL       string `yaml:"refreshTTL"` // duration string, e.g. "7d"
}

type AuthCfg struct {
	AdminRegistrationKey   string `yaml:"adminRegistrationKey"`
	VerificationTTLMinutes int    `yaml:"verificationTTLMinutes"`
	ResendThrottleSeconds  int    `yaml:"resendThrottleSeconds"`
	AccessCookieMaxAge     int    `yaml:"accessCookieMaxAgeSeconds"`
	RefreshCookieMaxAge    int    `yaml:"refreshCookieMaxAgeSeconds"`
	PasswordHashCost       int    `yaml:"passwordHashCost"`
	AdminDefaultPoints     int    `yaml:"adminDefaultPoints"`
}

type MongoCfg struct {
	URI              string `yaml:"uri"`
	Database         string `yaml:"database"`
	UsersCollection  string `yaml:"usersCollection"`
	VideosCollection string `yaml:"videosCollection"`
}

type RedisCfg struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MailCfg struct {
	APIURL    string `yaml:"apiUrl"`
	FromEmail string `yaml:"fromEmail"`
	FromName  string `yaml:"fromName"`
}

type KafkaCfg struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type RateLimitCfg struct {
	Limit         int `yaml:"limit"`
	WindowSeconds int `yaml:"windowSeconds"`
}

type Config struct {
	App       AppCfg       `yaml:"app"`
	JWT       JWTCfg       `yaml:"jwt"`
	Auth      AuthCfg      `yaml:"auth"`
	Mongo     MongoCfg     `yaml:"mongo"`
	Redis     RedisCfg     `yaml:"redis"`
	Mail      MailCfg      `yaml:"mail"`
	Kafka     KafkaCfg     `yaml:"kafka"`
	RateLimit RateLimitCfg `yaml:"rateLimit"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	override := func(env string, apply func(string)) {
		if v := os.Getenv(env); v != "" {
			apply(v)
		}
	}
	overrideInt := func(env string, apply func(int)) {
		if v := os.Getenv(env); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				apply(n)
			}
		}
	}

	override("APP_ENV", func(v string) { cfg.App.Env = v })
	override("APP_BASE_URL", func(v string) { cfg.App.BaseURL = v })
	overrideInt("APP_PORT", func(n int) { cfg.App.Port = n })

	override("JWT_ACCESS_SECRET", func(v string) { cfg.JWT.AccessSecret = v })
	override("JWT_REFRESH_SECRET", func(v string) { cfg.JWT.RefreshSecret = v })
	overrideInt("JWT_ACCESS_TTL_MINUTES", func(n int) { cfg.JWT.AccessTTLMinutes = n })
	override("JWT_REFRESH_TTL", func(v string) { cfg.JWT.RefreshTTL = v })

	override("ADMIN_REGISTRATION_KEY", func(v string) { cfg.Auth.AdminRegistrationKey = v })
	overrideInt("VERIFICATION_TTL_MINUTES", func(n int) { cfg.Auth.VerificationTTLMinutes = n })
	overrideInt("RESEND_THROTTLE_SECONDS", func(n int) { cfg.Auth.ResendThrottleSeconds = n })
	overrideInt("ACCESS_TOKEN_COOKIE_MAX_AGE", func(n int) { cfg.Auth.AccessCookieMaxAge = n })
	overrideInt("REFRESH_TOKEN_COOKIE_MAX_AGE", func(n int) { cfg.Auth.RefreshCookieMaxAge = n })
	overrideInt("PASSWORD_HASH_COST", func(n int) { cfg.Auth.PasswordHashCost = n })

	override("MONGO_URI", func(v string) { cfg.Mongo.URI = v })
	override("MONGO_DB", func(v string) { cfg.Mongo.Database = v })
	override("REDIS_ADDR", func(v string) { cfg.Redis.Addr = v })
	override("REDIS_PASSWORD", func(v string) { cfg.Redis.Password = v })
	override("MAIL_API_URL", func(v string) { cfg.Mail.APIURL = v })
	override("MAIL_FROM_EMAIL", func(v string) { cfg.Mail.FromEmail = v })
	override("MAIL_FROM_NAME", func(v string) { cfg.Mail.FromName = v })
	override("KAFKA_TOPIC", func(v string) { cfg.Kafka.Topic = v })

	cfg.applyDefaults()

	if cfg.JWT.AccessSecret == "" || cfg.JWT.RefreshSecret == "" {
		return nil, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required")
	}
	if cfg.Mongo.URI == "" {
		return nil, errors.New("MONGO_URI is required")
	}
	if cfg.Auth.AdminRegistrationKey == "" {
		return nil, errors.New("ADMIN_REGISTRATION_KEY is required")
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "Platform Ads API"
	}
	if c.App.Version == "" {
		c.App.Version = "1.0.0"
	}
	if c.App.Port == 0 {
		c.App.Port = 3000
	}
	if c.App.BaseURL == "" {
		c.App.BaseURL = fmt.Sprintf("http://localhost:%d", c.App.Port)
	}
	if c.JWT.AccessTTLMinutes == 0 {
		c.JWT.AccessTTLMinutes = 15
	}
	if c.JWT.RefreshTTL == "" {
		c.JWT.RefreshTTL = "7d"
	}
	if c.Auth.VerificationTTLMinutes == 0 {
		c.Auth.VerificationTTLMinutes = 60
	}
	if c.Auth.ResendThrottleSeconds == 0 {
		c.Auth.ResendThrottleSeconds = 120
	}
	if c.Auth.AccessCookieMaxAge == 0 {
		c.Auth.AccessCookieMaxAge = 15 * 60
	}
	if c.Auth.RefreshCookieMaxAge == 0 {
		c.Auth.RefreshCookieMaxAge = 7 * 24 * 60 * 60
	}
	if c.Auth.PasswordHashCost == 0 {
		c.Auth.PasswordHashCost = 10
	}
	if c.Auth.AdminDefaultPoints == 0 {
		c.Auth.AdminDefaultPoints = 100
	}
	if c.Mongo.UsersCollection == "" {
		c.Mongo.UsersCollection = "users"
	}
	if c.Mongo.VideosCollection == "" {
		c.Mongo.VideosCollection = "videos"
	}
	if c.RateLimit.Limit == 0 {
		c.RateLimit.Limit = 60
	}
	if c.RateLimit.WindowSeconds == 0 {
		c.RateLimit.WindowSeconds = 60
	}
}
