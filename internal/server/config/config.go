// Package config отвечает за:
// - чтение server.yaml
// - подстановку переменных окружения вида ${DB_DSN}
// - проставление дефолтов
// - переопределение отдельных настроек через окружение (PORT и т.д.)
// - валидацию (чтобы сервер не стартовал с дырявыми настройками)
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cestmoi1337/ScorePlayer/internal/shared/utils"
)

// DefaultPort — порт, на котором сервер слушает, если ничего не задано.
const DefaultPort = 3000

// MinBcryptCost — ниже этой стоимости bcrypt не опускаемся.
const MinBcryptCost = 10

// Длины ключа и соли argon2id в байтах.
const (
	DefaultArgon2KeyLen  = 32
	DefaultArgon2SaltLen = 16
	MinArgon2KeyLen      = 16
	MinArgon2SaltLen     = 8
)

// Config — корневая структура всего конфига сервера.
type Config struct {
	Env      string         `yaml:"env"` // dev|stage|prod
	Server   ServerConfig   `yaml:"server"`
	TLS      TLSConfig      `yaml:"tls"`
	DB       DBConfig       `yaml:"db"`
	Password PasswordConfig `yaml:"password"`
	Uploads  UploadsConfig  `yaml:"uploads"`
	OMR      OMRConfig      `yaml:"omr"`
	CORS     CORSConfig     `yaml:"cors"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig — настройки HTTP-сервера.
type ServerConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"` // время на graceful shutdown
	MaxHeaderBytes    int           `yaml:"max_header_bytes"` // лимит размера заголовков
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`   // лимит размера загружаемого файла, 0 — без лимита
}

// Addr возвращает адрес для http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// TLSConfig — настройки HTTPS (по умолчанию выключен).
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// DBConfig — настройки подключения к базе данных.
type DBConfig struct {
	Driver          string        `yaml:"driver"` // sqlite|postgres
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	BusyTimeout     time.Duration `yaml:"busy_timeout"` // только sqlite
}

// PasswordConfig — настройки хэширования паролей пользователей.
type PasswordConfig struct {
	Hasher string       `yaml:"hasher"` // bcrypt|argon2id
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

// UploadsConfig — каталог загрузок и имя поля формы.
type UploadsConfig struct {
	Dir        string `yaml:"dir"`
	FormField  string `yaml:"form_field"`
	PublicPath string `yaml:"public_path"` // префикс, по которому файлы раздаются статикой
}

// OMRConfig — запуск внешнего распознавателя нот для PDF.
type OMRConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Binary        string `yaml:"binary"`
	MaxConcurrent int    `yaml:"max_concurrent"` // 0 — без ограничения
}

// CORSConfig — разрешённые источники для браузерного клиента.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// LogConfig — настройки логирования (zap).
type LogConfig struct {
	Level      string `yaml:"level"`  // debug|info|warn|error
	Format     string `yaml:"format"` // json|console
	File       string `yaml:"file"`
	Stdout     bool   `yaml:"stdout"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default возвращает конфиг, которым сервер работает без server.yaml.
//
// Булевы поля, которые по умолчанию включены, выставляются здесь,
// т.к. ApplyDefaults не может отличить false от "не задано".
func Default() *Config {
	cfg := base()
	ApplyDefaults(cfg)
	return cfg
}

func base() *Config {
	return &Config{
		OMR: OMRConfig{Enabled: true},
		Log: LogConfig{Stdout: true},
	}
}

// Load читает YAML, подставляет переменные окружения вида ${VAR},
// затем парсит поверх включённых по умолчанию флагов, проставляет дефолты, применяет
// переопределения из окружения и валидирует.
//
// Отсутствие файла не ошибка: сервер стартует на значениях по умолчанию.
func Load(path string) (*Config, error) {
	cfg := base()

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// работаем на дефолтах
	case err != nil:
		return nil, fmt.Errorf("не удалось прочитать конфиг: %w", err)
	default:
		expanded := ExpandEnvStrict(string(raw))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("не удалось распарсить yaml: %w", err)
		}
	}

	ApplyDefaults(cfg)
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var envPlaceholder = regexp.MustCompile(`\$\{([A-Z0-9_]+)\}`)

// ExpandEnvStrict заменяет ${VAR} на значение из окружения.
// Если переменная не задана — оставляем ${VAR} как есть,
// а потом Validate() упадёт с понятной ошибкой.
func ExpandEnvStrict(s string) string {
	return envPlaceholder.ReplaceAllStringFunc(s, func(m string) string {
		sub := envPlaceholder.FindStringSubmatch(m)
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
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.ReadHeaderTimeout == 0 {
		cfg.Server.ReadHeaderTimeout = 10 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.DB.Driver == "" {
		cfg.DB.Driver = "sqlite"
	}
	if cfg.DB.DSN == "" && cfg.DB.Driver == "sqlite" {
		cfg.DB.DSN = "database.db"
	}
	if cfg.DB.BusyTimeout == 0 {
		cfg.DB.BusyTimeout = 5 * time.Second
	}
	if cfg.Password.Hasher == "" {
		cfg.Password.Hasher = "bcrypt"
	}
	if cfg.Password.Bcrypt.Cost == 0 {
		cfg.Password.Bcrypt.Cost = MinBcryptCost
	}
	if cfg.Password.Argon2.KeyLen == 0 {
		cfg.Password.Argon2.KeyLen = DefaultArgon2KeyLen
	}
	if cfg.Password.Argon2.SaltLen == 0 {
		cfg.Password.Argon2.SaltLen = DefaultArgon2SaltLen
	}
	if cfg.Uploads.Dir == "" {
		cfg.Uploads.Dir = "uploads"
	}
	if cfg.Uploads.FormField == "" {
		cfg.Uploads.FormField = "file"
	}
	if cfg.Uploads.PublicPath == "" {
		cfg.Uploads.PublicPath = "/uploads"
	}
	if cfg.OMR.Binary == "" {
		cfg.OMR.Binary = "audiveris"
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}
	if len(cfg.CORS.AllowedMethods) == 0 {
		cfg.CORS.AllowedMethods = []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE"}
	}
	if len(cfg.CORS.AllowedHeaders) == 0 {
		cfg.CORS.AllowedHeaders = []string{"*"}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
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
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.max_body_bytes не может быть отрицательным: %d", c.Server.MaxBodyBytes)
	}

	if c.TLS.Enabled && (c.TLS.CertFile == "" || c.TLS.KeyFile == "") {
		return errors.New("tls.cert_file и tls.key_file обязательны при tls.enabled=true")
	}

	// База данных
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("db.driver должен быть sqlite|postgres (сейчас %q)", c.DB.Driver)
	}
	if strings.TrimSpace(c.DB.DSN) == "" {
		return errors.New("db.dsn обязателен")
	}
	if strings.Contains(c.DB.DSN, "${") {
		return fmt.Errorf("db.dsn содержит неподставленную переменную: %q", c.DB.DSN)
	}

	// Хэширование паролей
	switch strings.ToLower(c.Password.Hasher) {
	case "bcrypt":
		if c.Password.Bcrypt.Cost < MinBcryptCost {
			return fmt.Errorf("password.bcrypt.cost должен быть >= %d (сейчас %d)", MinBcryptCost, c.Password.Bcrypt.Cost)
		}
	case "argon2id":
		if c.Password.Argon2.Time == 0 || c.Password.Argon2.MemoryKiB == 0 || c.Password.Argon2.Threads == 0 {
			return errors.New("password.argon2 должен быть настроен для argon2id")
		}
		if c.Password.Argon2.KeyLen < MinArgon2KeyLen {
			return fmt.Errorf("password.argon2.key_len должен быть >= %d (сейчас %d)", MinArgon2KeyLen, c.Password.Argon2.KeyLen)
		}
		if c.Password.Argon2.SaltLen < MinArgon2SaltLen {
			return fmt.Errorf("password.argon2.salt_len должен быть >= %d (сейчас %d)", MinArgon2SaltLen, c.Password.Argon2.SaltLen)
		}
	default:
		return fmt.Errorf("password.hasher должен быть bcrypt|argon2id (сейчас %q)", c.Password.Hasher)
	}

	// Загрузки
	if strings.TrimSpace(c.Uploads.Dir) == "" {
		return errors.New("uploads.dir обязателен")
	}
	if !strings.HasPrefix(c.Uploads.PublicPath, "/") {
		return fmt.Errorf("uploads.public_path должен начинаться с / (сейчас %q)", c.Uploads.PublicPath)
	}

	// OMR
	if c.OMR.Enabled && strings.TrimSpace(c.OMR.Binary) == "" {
		return errors.New("omr.binary обязателен при omr.enabled=true")
	}
	if c.OMR.MaxConcurrent < 0 {
		return fmt.Errorf("omr.max_concurrent не может быть отрицательным: %d", c.OMR.MaxConcurrent)
	}

	return nil
}

// ApplyEnvOverrides даёт возможность переопределять некоторые настройки
// через переменные окружения без ${...} в yaml.
// PORT (как у большинства PaaS) и SERVER_PORT переопределяют server.port,
// SERVER_PORT имеет приоритет.
func (c *Config) ApplyEnvOverrides() {
	if v := utils.FirstNonEmpty(os.Getenv("SERVER_PORT"), os.Getenv("PORT")); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		c.DB.Driver = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		c.DB.DSN = v
	}
	if v := os.Getenv("UPLOADS_DIR"); v != "" {
		c.Uploads.Dir = v
	}
	if v := os.Getenv("OMR_BINARY"); v != "" {
		c.OMR.Binary = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}
