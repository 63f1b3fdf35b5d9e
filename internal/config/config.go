package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	pkglogger "github.com/damoang/angple-plugins/pkg/logger"
	"gopkg.in/yaml.v3"
)

// Config 애플리케이션 설정
type Config struct {
	Env      string         `yaml:"env"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Plugins  PluginsConfig  `yaml:"plugins"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig HTTP 서버 설정
type ServerConfig struct {
	Port        int      `yaml:"port"`
	Mode        string   `yaml:"mode"` // gin 모드: debug, release, test
	CORSOrigins []string `yaml:"cors_origins"`
}

// DatabaseConfig DB 설정
type DatabaseConfig struct {
	Driver          string `yaml:"driver"` // sqlite, mysql
	Path            string `yaml:"path"`   // sqlite 파일 경로
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	Name            string `yaml:"name"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // 초
	LogLevel        string `yaml:"log_level"`         // gorm 로그: silent, error, warn, info
}

// GetDSN MySQL DSN
func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

// RedisConfig Redis 설정 (Host 가 비어 있으면 사용 안 함)
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
	Channel  string `yaml:"channel"`
}

// Enabled Redis 사용 여부
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

// JWTConfig 관리자 API 토큰 설정 (Secret 이 비어 있으면 관리자 API 비활성)
type JWTConfig struct {
	Secret    string `yaml:"secret"`
	ExpiresIn int    `yaml:"expires_in"` // 초
}

// PluginsConfig 플러그인 동기화 설정
type PluginsConfig struct {
	Module              string `yaml:"module"`
	AutoLoad            bool   `yaml:"auto_load"`
	AutoRemove          bool   `yaml:"auto_remove"`
	AllowPointSublevels int    `yaml:"allow_point_sublevels"`
}

// LogConfig 로그 설정
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default 기본 설정
func Default() *Config {
	return &Config{
		Env: "local",
		Server: ServerConfig{
			Port: 8082,
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			Path:            "angple-plugins.db",
			Port:            3306,
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: 3600,
			LogLevel:        "warn",
		},
		Redis: RedisConfig{
			Port:     6379,
			PoolSize: 10,
		},
		JWT: JWTConfig{
			ExpiresIn: 3600,
		},
		Plugins: PluginsConfig{
			Module:              "plugins",
			AutoLoad:            true,
			AutoRemove:          true,
			AllowPointSublevels: 1,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load 기본값 → yaml 파일 → 환경변수 순으로 설정을 읽는다.
// path 가 비어 있으면 파일 없이 기본값과 환경변수만 사용한다.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolvePath 설정 파일 경로 결정
// 명시적 경로가 있으면 그대로, 없으면 APP_ENV 기준 파일이 있을 때만 사용한다.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	path := fmt.Sprintf("configs/config.%s.yaml", env)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// Validate 설정 검증
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		return errors.New("database.path is required for sqlite")
	}
	if c.Database.Driver == "mysql" && (c.Database.Host == "" || c.Database.Name == "") {
		return errors.New("database.host and database.name are required for mysql")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Plugins.AllowPointSublevels < 1 {
		c.Plugins.AllowPointSublevels = 1
	}
	return nil
}

// IsDevelopment 개발 환경 여부
func (c *Config) IsDevelopment() bool {
	return c.Env == "local" || c.Env == "dev" || c.Env == "development"
}

// LogResolved 최종 설정 요약 로그 (비밀값 제외)
func LogResolved(c *Config) {
	db := c.Database.Path
	if c.Database.Driver == "mysql" {
		db = fmt.Sprintf("%s:%d/%s", c.Database.Host, c.Database.Port, c.Database.Name)
	}
	pkglogger.Info("Config: env=%s port=%d db=%s(%s) redis=%t plugins.module=%s auto_load=%t auto_remove=%t sublevels=%d",
		c.Env, c.Server.Port, c.Database.Driver, db, c.Redis.Enabled(),
		c.Plugins.Module, c.Plugins.AutoLoad, c.Plugins.AutoRemove, c.Plugins.AllowPointSublevels)
}

func applyEnv(c *Config) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str("APP_ENV", &c.Env)
	num("SERVER_PORT", &c.Server.Port)
	str("GIN_MODE", &c.Server.Mode)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}

	str("DB_DRIVER", &c.Database.Driver)
	str("DB_PATH", &c.Database.Path)
	str("DB_HOST", &c.Database.Host)
	num("DB_PORT", &c.Database.Port)
	str("DB_USER", &c.Database.User)
	str("DB_PASSWORD", &c.Database.Password)
	str("DB_NAME", &c.Database.Name)

	str("REDIS_HOST", &c.Redis.Host)
	num("REDIS_PORT", &c.Redis.Port)
	str("REDIS_PASSWORD", &c.Redis.Password)
	num("REDIS_DB", &c.Redis.DB)
	str("REDIS_CHANNEL", &c.Redis.Channel)

	str("JWT_SECRET", &c.JWT.Secret)

	str("PLUGINS_MODULE", &c.Plugins.Module)
	flag("PLUGINS_AUTO_LOAD", &c.Plugins.AutoLoad)
	flag("PLUGINS_AUTO_REMOVE", &c.Plugins.AutoRemove)
	num("PLUGINS_ALLOW_POINT_SUBLEVELS", &c.Plugins.AllowPointSublevels)

	str("LOG_LEVEL", &c.Log.Level)

	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
