package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
	Feature   FeatureConfig   `mapstructure:"feature"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 分钟
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置（Token 黑名单、登录限流）
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 认证配置
type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

// RateLimitConfig 认证接口限流配置
type RateLimitConfig struct {
	AuthLimit  int           `mapstructure:"auth_limit"`
	AuthWindow time.Duration `mapstructure:"auth_window"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FeatureConfig 功能开关配置
type FeatureConfig struct {
	// LegacyPageFilter 为 true 时筛选接口沿用"先分页、再内存过滤"的旧行为，
	// 返回的总数只反映当前页过滤后的条数。
	LegacyPageFilter bool `mapstructure:"legacy_page_filter"`
	// CalendarHorizonDays 区域日历订阅向后展示的天数
	CalendarHorizonDays int `mapstructure:"calendar_horizon_days"`
}

// defaults 全部配置键的默认值
// 每个键都必须在这里登记：viper 的 AutomaticEnv 只覆盖已知键，
// 未登记的键（如 auth.jwt_secret）在无配置文件时无法通过环境变量注入
var defaults = map[string]interface{}{
	"server.port":               8080,
	"server.base_url":           "http://localhost:8080",
	"server.cors.allow_origins": []string{"http://localhost:3000"},

	"db.host":              "localhost",
	"db.port":              5432,
	"db.name":              "garbage_app",
	"db.user":              "postgres",
	"db.password":          "",
	"db.sslmode":           "disable",
	"db.timezone":          "UTC",
	"db.max_open_conns":    25,
	"db.max_idle_conns":    10,
	"db.conn_max_lifetime": 60,

	"redis.addr":     "localhost:6379",
	"redis.password": "",
	"redis.db":       0,

	"auth.jwt_secret":        "",
	"auth.access_token_ttl":  "24h",
	"auth.refresh_token_ttl": "168h",

	"rate_limit.auth_limit":  10,
	"rate_limit.auth_window": "1m",

	"log.level":  "info",
	"log.format": "json",

	"feature.legacy_page_filter":    false,
	"feature.calendar_horizon_days": 60,
}

// Load 加载配置，优先级：环境变量（GARBAGE_ 前缀）> 配置文件 > 默认值
// path 为空时依次查找 ./config/config.yaml 与 ./config.yaml，找不到文件不算错误
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("GARBAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置，一次性返回全部问题
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(len(c.Auth.JWTSecret) >= 16, "auth.jwt_secret 长度不能少于 16 字符")
	check(c.Server.Port > 0 && c.Server.Port <= 65535, "server.port 必须在 1-65535 之间，当前 %d", c.Server.Port)
	check(c.Auth.AccessTokenTTL > 0, "auth.access_token_ttl 必须大于 0")
	check(c.Auth.RefreshTokenTTL >= c.Auth.AccessTokenTTL, "auth.refresh_token_ttl 不能短于 access_token_ttl")
	check(c.RateLimit.AuthLimit >= 0, "rate_limit.auth_limit 不能为负数")
	check(c.RateLimit.AuthLimit == 0 || c.RateLimit.AuthWindow > 0, "启用限流时 rate_limit.auth_window 必须大于 0")
	check(c.Feature.CalendarHorizonDays >= 0 && c.Feature.CalendarHorizonDays <= 366,
		"feature.calendar_horizon_days 必须在 0-366 之间，当前 %d", c.Feature.CalendarHorizonDays)
	check(c.Log.Format == "" || c.Log.Format == "json" || c.Log.Format == "console",
		"log.format 只支持 json / console，当前 %q", c.Log.Format)

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("配置校验失败: %w", errors.Join(errs...))
}
