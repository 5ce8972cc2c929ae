package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
	// 单请求处理超时
	HandlerTimeoutSec int
	MaxBodyMB         int
	MaxConcurrency    int64
	CORSOrigins       []string `mapstructure:"corsOrigins"`
}

type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

func (a App) IsProd() bool { return a.Env == "prod" || a.Env == "production" }

type Log struct {
	Level string
	JSON  bool
	// 为空则只写 stdout
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

func (j JWT) TTL() time.Duration { return time.Duration(j.AccessTokenTTLMin) * time.Minute }

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
	QueryTimeoutSec    int
}

func (d DB) QueryTimeout() time.Duration { return time.Duration(d.QueryTimeoutSec) * time.Second }

// Storage 图片存储；driver: minio | s3 | none
type Storage struct {
	Driver        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	UseSSL        bool   `mapstructure:"useSSL"`
	PublicBaseURL string `mapstructure:"publicBaseURL"`
	MaxImageMB    int
}

type Auth struct {
	AdminEmails []string `mapstructure:"adminEmails"`
}

type Reconcile struct {
	Enabled     bool
	IntervalMin int
	LockTTLSec  int
}

type Config struct {
	App       App
	Log       Log
	JWT       JWT
	DB        DB
	Redis     Redis `mapstructure:"redis"`
	Storage   Storage
	Auth      Auth
	Reconcile Reconcile
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "recipe-share-api")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readTimeoutSec", 15)
	v.SetDefault("app.http.writeTimeoutSec", 30)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.http.handlerTimeoutSec", 20)
	v.SetDefault("app.http.maxBodyMB", 12)
	v.SetDefault("app.http.maxConcurrency", 512)
	v.SetDefault("app.http.corsOrigins", []string{"http://localhost:5173"})
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 8081)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.maxSizeMB", 100)
	v.SetDefault("log.maxBackups", 7)
	v.SetDefault("log.maxAgeDays", 14)

	v.SetDefault("jwt.issuer", "recipe-share")
	v.SetDefault("jwt.accessTokenTTLMin", 24*60)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:recipes.db?_busy_timeout=5000")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 10)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.autoMigrate", true)
	v.SetDefault("db.logLevel", "warn")
	v.SetDefault("db.queryTimeoutSec", 10)

	v.SetDefault("redis.addr", "127.0.0.1:6379")

	v.SetDefault("storage.driver", "none")
	v.SetDefault("storage.bucket", "recipe-images")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.maxImageMB", 8)

	v.SetDefault("reconcile.enabled", true)
	v.SetDefault("reconcile.intervalMin", 30)
	v.SetDefault("reconcile.lockTTLSec", 300)
}

// Load 读取 YAML + APP_ 前缀的环境变量；path 为空时取 CONFIG_PATH
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("config: jwt.secret is required")
	}
	if c.App.IsProd() && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("config: jwt.secret must be at least 32 bytes in prod")
	}
	switch c.Storage.Driver {
	case "none", "minio", "s3":
	default:
		return fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver)
	}
	return nil
}

// IsAdminEmail 大小写不敏感
func (c *Config) IsAdminEmail(email string) bool {
	for _, e := range c.Auth.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}
