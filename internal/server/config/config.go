// Package config отвечает за:
// - чтение server.yaml
// - подстановку переменных окружения вида ${JWT_SIGNING_KEY}
// - проставление дефолтов
// - валидацию (чтобы сервер не стартовал с дырявыми настройками)
// - открытие хранилища (PostgreSQL или MongoDB)
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/crypto"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/ratelimit"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/logger"
)

// Поддерживаемые драйверы хранилища.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config — корневая структура всего конфига сервера.
type Config struct {
	Env           string              `yaml:"env"` // dev|stage|prod
	Server        ServerConfig        `yaml:"server"`
	TLS           TLSConfig           `yaml:"tls"`
	DB            DBConfig            `yaml:"db"`
	Migrations    MigrationsConfig    `yaml:"migrations"`
	Auth          AuthConfig          `yaml:"auth"`
	Password      PasswordConfig      `yaml:"password"`
	Security      SecurityConfig      `yaml:"security"`
	Budget        BudgetConfig        `yaml:"budget"`
	Log           LogConfig           `yaml:"log"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig — настройки HTTP-сервера.
type ServerConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	APIPrefix         string        `yaml:"api_prefix"`  // префикс версии API, /api/v1
	TrustProxy        bool          `yaml:"trust_proxy"` // доверять ли заголовкам X-Forwarded-*
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"` // время на graceful shutdown
	MaxHeaderBytes    int           `yaml:"max_header_bytes"` // лимит размера заголовков
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`   // лимит размера тела запроса
}

// TLSConfig — настройки HTTPS. По умолчанию сервер слушает обычный HTTP.
type TLSConfig struct {
	Enabled    bool   `yaml:"enabled"`
	CertFile   string `yaml:"cert_file"`
	KeyFile    string `yaml:"key_file"`
	MinVersion string `yaml:"min_version"` // "1.2"|"1.3" (1.0/1.1 запрещаем т.к. устарели)
}

// DBConfig — настройки подключения к хранилищу.
type DBConfig struct {
	Driver          string        `yaml:"driver"` // postgres|mongo
	DSN             string        `yaml:"dsn"`
	Database        string        `yaml:"database"` // имя базы для mongo
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
	QueryTimeout    time.Duration `yaml:"query_timeout"` // таймаут на запросы к БД
}

// MigrationsConfig — настройки миграций БД (только postgres).
type MigrationsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// AuthConfig — настройки аутентификации.
type AuthConfig struct {
	Issuer    string        `yaml:"issuer"`
	Audience  string        `yaml:"audience"`
	AccessTTL time.Duration `yaml:"access_ttl"`
	JWT       JWTConfig     `yaml:"jwt"`
}

// JWTConfig — как подписываем JWT.
type JWTConfig struct {
	Algorithm  string `yaml:"algorithm"`   // сейчас поддерживаем только HS256
	SigningKey string `yaml:"signing_key"` // может содержать ${JWT_SIGNING_KEY}
}

// PasswordConfig — настройки хэширования паролей пользователей.
type PasswordConfig struct {
	Hasher string       `yaml:"hasher"` // argon2id|bcrypt
	Argon2 Argon2Config `yaml:"argon2"`
	Bcrypt BcryptConfig `yaml:"bcrypt"`
}

// Argon2Config — параметры argon2id.
type Argon2Config struct {
	Time      uint32 `yaml:"time"`
	MemoryKiB uint32 `yaml:"memory_kib"`
	Threads   uint8  `yaml:"threads"`
	KeyLen    uint32 `yaml:"key_len"`
	SaltLen   uint32 `yaml:"salt_len"`
}

// BcryptConfig — параметры bcrypt.
type BcryptConfig struct {
	Cost int `yaml:"cost"`
}

// SecurityConfig — ограничения/защита.
type SecurityConfig struct {
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// CORSConfig — разрешённые источники для браузерного клиента.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"` // "*" — любой
}

// RateLimitConfig — политики ограничения частоты запросов.
type RateLimitConfig struct {
	Enabled       bool          `yaml:"enabled"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	// TrustSessionHeader — учитывать X-Session-ID в ключе. Включать только
	// если заголовок выставляет доверенный прокси, иначе клиент обходит лимит.
	TrustSessionHeader bool            `yaml:"trust_session_header"`
	General            RateLimitPolicy `yaml:"general"`
	Auth               RateLimitPolicy `yaml:"auth"`
	Expenses           RateLimitPolicy `yaml:"expenses"`
}

// RateLimitPolicy — одно окно: не больше Max запросов за Window.
type RateLimitPolicy struct {
	Window         time.Duration `yaml:"window"`
	Max            int           `yaml:"max"`
	SkipSuccessful bool          `yaml:"skip_successful_requests"`
	SkipFailed     bool          `yaml:"skip_failed_requests"`
	Message        string        `yaml:"message"`
}

// BudgetConfig — бюджет по умолчанию для сводки расходов.
type BudgetConfig struct {
	DefaultMonthly string `yaml:"default_monthly"`
}

// LogConfig — настройки логирования (zap + lumberjack).
type LogConfig struct {
	Level      string `yaml:"level"`  // debug|info|warn|error
	Format     string `yaml:"format"` // json|console
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// ObservabilityConfig — pprof.
type ObservabilityConfig struct {
	Pprof PprofConfig `yaml:"pprof"`
}

type PprofConfig struct {
	Enabled    bool   `yaml:"enabled"`
	PathPrefix string `yaml:"path_prefix"`
}

// Load читает YAML, подставляет переменные окружения вида ${VAR},
// затем парсит в структуру, проставляет дефолты, применяет
// переопределения из окружения и валидирует.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать конфиг: %w", err)
	}

	// signing_key: "${JWT_SIGNING_KEY}" -> signing_key: "реальное_значение"
	raw = []byte(ExpandEnvStrict(string(raw)))

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("не удалось распарсить yaml: %w", err)
	}

	ApplyDefaults(&cfg)
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var envRe = regexp.MustCompile(`\$\{([A-Z0-9_]+)\}`)

// ExpandEnvStrict заменяет ${VAR} на значение из окружения.
// Если переменная не задана — оставляем ${VAR} как есть,
// а потом Validate() упадёт с понятной ошибкой.
func ExpandEnvStrict(s string) string {
	return envRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := envRe.FindStringSubmatch(m)
		if len(sub) != 2 {
			return m
		}
		if val, ok := os.LookupEnv(sub[1]); ok {
			return val
		}
		return m
	})
}

// ApplyDefaults — дефолтные значения, если в yaml поле не задано.
func ApplyDefaults(cfg *Config) {
	if cfg.Env == "" {
		cfg.Env = "dev"
	}

	s := &cfg.Server
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.APIPrefix == "" {
		s.APIPrefix = "/api/v1"
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 10 * time.Second
	}
	if s.ReadHeaderTimeout == 0 {
		s.ReadHeaderTimeout = 5 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 15 * time.Second
	}
	if s.IdleTimeout == 0 {
		s.IdleTimeout = 60 * time.Second
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = 10 * time.Second
	}
	if s.MaxHeaderBytes == 0 {
		s.MaxHeaderBytes = 1 << 20
	}
	if s.MaxBodyBytes == 0 {
		s.MaxBodyBytes = 1 << 20
	}

	if cfg.DB.Driver == "" {
		cfg.DB.Driver = DriverPostgres
	}
	if cfg.DB.Database == "" {
		cfg.DB.Database = "expense_tracker"
	}
	if cfg.DB.ConnectTimeout == 0 {
		cfg.DB.ConnectTimeout = 10 * time.Second
	}
	if cfg.DB.QueryTimeout == 0 {
		cfg.DB.QueryTimeout = 5 * time.Second
	}
	if cfg.Migrations.Path == "" {
		cfg.Migrations.Path = "file://migrations/postgres"
	}

	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = "expense-tracker"
	}
	if cfg.Auth.Audience == "" {
		cfg.Auth.Audience = "expense-tracker-api"
	}
	if cfg.Auth.AccessTTL == 0 {
		cfg.Auth.AccessTTL = 24 * time.Hour
	}
	if cfg.Auth.JWT.Algorithm == "" {
		cfg.Auth.JWT.Algorithm = "HS256"
	}

	if cfg.Password.Hasher == "" {
		cfg.Password.Hasher = "argon2id"
	}
	a := &cfg.Password.Argon2
	if a.Time == 0 {
		a.Time = 3
	}
	if a.MemoryKiB == 0 {
		a.MemoryKiB = 64 * 1024
	}
	if a.Threads == 0 {
		a.Threads = 2
	}
	if a.KeyLen == 0 {
		a.KeyLen = 32
	}
	if a.SaltLen == 0 {
		a.SaltLen = 16
	}
	if cfg.Password.Bcrypt.Cost == 0 {
		cfg.Password.Bcrypt.Cost = 12
	}

	rl := &cfg.Security.RateLimit
	if rl.SweepInterval == 0 {
		rl.SweepInterval = time.Minute
	}
	defaultPolicy(&rl.General, 15*time.Minute, 100, "Too many requests from this IP, please try again later.")
	defaultPolicy(&rl.Auth, 15*time.Minute, 50, "Too many authentication attempts, please try again later.")
	defaultPolicy(&rl.Expenses, time.Minute, 30, "Too many expense operations, please slow down.")

	if cfg.Budget.DefaultMonthly == "" {
		cfg.Budget.DefaultMonthly = "1000"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Observability.Pprof.PathPrefix == "" {
		cfg.Observability.Pprof.PathPrefix = "/debug"
	}
}

func defaultPolicy(p *RateLimitPolicy, window time.Duration, max int, msg string) {
	if p.Window == 0 {
		p.Window = window
	}
	if p.Max == 0 {
		p.Max = max
	}
	if p.Message == "" {
		p.Message = msg
	}
}

// Validate проверяет, что конфиг заполнен корректно и безопасно.
// Если что-то не так — возвращаем ошибку и сервер НЕ стартует.
func (c *Config) Validate() error {
	if c.Server.Host == "" {
		return errors.New("server.host обязателен")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port некорректен: %d", c.Server.Port)
	}
	if !strings.HasPrefix(c.Server.APIPrefix, "/") {
		return fmt.Errorf("server.api_prefix должен начинаться с '/' (сейчас %q)", c.Server.APIPrefix)
	}

	if c.TLS.Enabled {
		if c.TLS.CertFile == "" || c.TLS.KeyFile == "" {
			return errors.New("tls.cert_file и tls.key_file обязательны при tls.enabled=true")
		}
		if c.TLS.MinVersion == "" {
			c.TLS.MinVersion = "1.2"
		}
		// TLS 1.0/1.1 считаются небезопасными
		if c.TLS.MinVersion == "1.0" || c.TLS.MinVersion == "1.1" {
			return fmt.Errorf("tls.min_version=%s небезопасен; используй 1.2 или 1.3", c.TLS.MinVersion)
		}
	}

	switch c.DB.Driver {
	case DriverPostgres, DriverMongo:
	default:
		return fmt.Errorf("db.driver должен быть postgres|mongo (сейчас %q)", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return errors.New("db.dsn обязателен")
	}

	alg := strings.ToUpper(strings.TrimSpace(c.Auth.JWT.Algorithm))
	if alg != "HS256" {
		return fmt.Errorf("auth.jwt.algorithm должен быть HS256 (сейчас %q)", c.Auth.JWT.Algorithm)
	}

	key := strings.TrimSpace(c.Auth.JWT.SigningKey)
	if key == "" {
		return errors.New("auth.jwt.signing_key обязателен (через ${JWT_SIGNING_KEY} или прямо строкой)")
	}
	if strings.Contains(key, "${") && strings.Contains(key, "}") {
		return fmt.Errorf("auth.jwt.signing_key содержит неподставленную переменную: %q (нужно задать JWT_SIGNING_KEY)", key)
	}
	if len(key) < 32 {
		return fmt.Errorf("auth.jwt.signing_key слишком короткий (%d символов); нужно >= 32", len(key))
	}
	if c.Auth.AccessTTL <= 0 {
		return errors.New("auth.access_ttl должен быть > 0")
	}

	if c.Security.RateLimit.Enabled {
		for name, p := range map[string]RateLimitPolicy{
			"general":  c.Security.RateLimit.General,
			"auth":     c.Security.RateLimit.Auth,
			"expenses": c.Security.RateLimit.Expenses,
		} {
			if p.Window <= 0 || p.Max <= 0 {
				return fmt.Errorf("security.rate_limit.%s: window и max должны быть > 0", name)
			}
			if p.SkipSuccessful && p.SkipFailed {
				return fmt.Errorf("security.rate_limit.%s: нельзя одновременно пропускать успешные и неуспешные запросы", name)
			}
		}
	}

	switch strings.ToLower(c.Password.Hasher) {
	case "argon2id":
		if c.Password.Argon2.Time == 0 || c.Password.Argon2.MemoryKiB == 0 || c.Password.Argon2.Threads == 0 {
			return errors.New("password.argon2 должен быть настроен для argon2id")
		}
	case "bcrypt":
		if c.Password.Bcrypt.Cost == 0 {
			return errors.New("password.bcrypt.cost должен быть задан для bcrypt")
		}
	default:
		return fmt.Errorf("password.hasher должен быть argon2id|bcrypt (сейчас %q)", c.Password.Hasher)
	}

	budget, err := decimal.NewFromString(c.Budget.DefaultMonthly)
	if err != nil || !budget.IsPositive() {
		return fmt.Errorf("budget.default_monthly должен быть положительным числом (сейчас %q)", c.Budget.DefaultMonthly)
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format должен быть json|console (сейчас %q)", c.Log.Format)
	}

	return nil
}

// ApplyEnvOverrides даёт возможность переопределять некоторые настройки
// через переменные окружения без ${...} в yaml.
// Например SERVER_PORT=9090 переопределит server.port.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		c.DB.DSN = v
	}
	if v := os.Getenv("JWT_SIGNING_KEY"); v != "" {
		c.Auth.JWT.SigningKey = v
	}
	if v := os.Getenv("RATE_LIMIT_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Security.RateLimit.Enabled = b
		}
	}
}

// Addr — адрес, который слушает HTTP-сервер.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// JWT возвращает параметры выпуска и проверки access-токенов.
func (c *Config) JWT() crypto.JWTConfig {
	return crypto.JWTConfig{
		Issuer:     c.Auth.Issuer,
		Audience:   c.Auth.Audience,
		SigningKey: c.Auth.JWT.SigningKey,
		AccessTTL:  c.Auth.AccessTTL,
	}
}

// PasswordHasher возвращает выбранный в конфиге хэшер паролей.
func (c *Config) PasswordHasher() crypto.PasswordHasher {
	if strings.EqualFold(c.Password.Hasher, "bcrypt") {
		return crypto.BcryptHasher{Cost: c.Password.Bcrypt.Cost}
	}
	a := c.Password.Argon2
	return crypto.Argon2Hasher{Params: crypto.Argon2Params{
		Time:      a.Time,
		MemoryKiB: a.MemoryKiB,
		Threads:   a.Threads,
		KeyLen:    a.KeyLen,
		SaltLen:   a.SaltLen,
	}}
}

// DefaultBudget — бюджет сводки, если клиент не передал свой.
// Значение уже проверено в Validate.
func (c *Config) DefaultBudget() decimal.Decimal {
	d, err := decimal.NewFromString(c.Budget.DefaultMonthly)
	if err != nil {
		return decimal.NewFromInt(1000)
	}
	return d
}

// Policy превращает секцию yaml в политику ограничителя.
func (p RateLimitPolicy) Policy(name string) ratelimit.Policy {
	return ratelimit.Policy{
		Name:           name,
		Window:         p.Window,
		Max:            p.Max,
		SkipSuccessful: p.SkipSuccessful,
		SkipFailed:     p.SkipFailed,
		Message:        p.Message,
	}
}

// LoggerOptions — параметры zap-логгера из секции log.
func (c *Config) LoggerOptions() logger.Options {
	opts := logger.DefaultOptions()
	opts.Level = c.Log.Level
	opts.Format = c.Log.Format
	if c.Log.File != "" {
		opts.File = c.Log.File
	}
	if c.Log.MaxSizeMB > 0 {
		opts.MaxSizeMB = c.Log.MaxSizeMB
	}
	if c.Log.MaxBackups > 0 {
		opts.MaxBackups = c.Log.MaxBackups
	}
	if c.Log.MaxAgeDays > 0 {
		opts.MaxAgeDays = c.Log.MaxAgeDays
	}
	opts.Compress = c.Log.Compress
	return opts
}
