package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Config содержит все параметры запуска сервиса. Создается один раз в main
// и явно передается в конструкторы.
type Config struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	GRPCAddr    string `env:"GRPC_ADDR" envDefault:":9091"`
	GRPCEnabled bool   `env:"GRPC_ENABLED" envDefault:"true"`
	// Адрес удаленного каталога для проверки работ; пусто - локальное хранилище
	LookupAddr string `env:"CATALOG_LOOKUP_ADDR"`

	// Хранилище: postgres, mongo или memory (только для разработки)
	StoreDriver    string        `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	MongoURI       string        `env:"MONGODB_URI"`
	MongoDatabase  string        `env:"MONGODB_DATABASE" envDefault:"arabfilms"`
	MigrateOnStart bool          `env:"MIGRATE_ON_START" envDefault:"true"`
	StoreTimeout   time.Duration `env:"STORE_TIMEOUT" envDefault:"10s"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"arabfilms"`

	ResetTokenTTL       time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`
	ResetURLBase        string        `env:"RESET_URL_BASE" envDefault:"http://localhost:8080/api/users/reset-password"`
	ResetStrictDelivery bool          `env:"RESET_STRICT_DELIVERY" envDefault:"false"`

	MediaDriver         string `env:"MEDIA_DRIVER" envDefault:"local"`
	CloudinaryCloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`
	MediaFolderRoot     string `env:"MEDIA_FOLDER_ROOT" envDefault:"arabfilm"`
	MediaLocalDir       string `env:"MEDIA_LOCAL_DIR" envDefault:"./uploads"`
	MediaLocalBaseURL   string `env:"MEDIA_LOCAL_BASE_URL" envDefault:"http://localhost:8080/uploads"`
	MaxUploadMB         int64  `env:"MAX_UPLOAD_MB" envDefault:"50"`

	MailDriver   string `env:"MAIL_DRIVER" envDefault:"log"`
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPSSL      bool   `env:"SMTP_SSL" envDefault:"false"`
	MailFrom     string `env:"MAIL_FROM" envDefault:"no-reply@arabfilms.local"`
	MailFromName string `env:"MAIL_FROM_NAME" envDefault:"Arab Films"`
	ContactInbox string `env:"CONTACT_INBOX"`

	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"LOG_FORMAT" envDefault:"json"`
	LogOutput     string `env:"LOG_OUTPUT" envDefault:"stdout"`
	LogFile       string `env:"LOG_FILE" envDefault:"logs/app.log"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"30"`
	LogCompress   bool   `env:"LOG_COMPRESS" envDefault:"true"`
}

// Load читает необязательные .env файлы и затем переменные окружения.
// Без аргументов используется ENV_FILE или ".env"; отсутствие файла не ошибка.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		path := os.Getenv("ENV_FILE")
		if path == "" {
			path = ".env"
		}
		files = []string{path}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	c.MediaDriver = strings.ToLower(strings.TrimSpace(c.MediaDriver))
	c.MailDriver = strings.ToLower(strings.TrimSpace(c.MailDriver))
	c.ResetURLBase = strings.TrimRight(c.ResetURLBase, "/")
	if c.ContactInbox == "" {
		c.ContactInbox = c.SMTPUsername
	}
}

// Validate проверяет согласованность параметров.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.StoreDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres store"))
		}
	case "mongo":
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required for mongo store"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	switch c.MediaDriver {
	case "cloudinary":
		if c.CloudinaryCloudName == "" || c.CloudinaryAPIKey == "" || c.CloudinaryAPISecret == "" {
			errs = append(errs, errors.New("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required for cloudinary media"))
		}
	case "local":
	default:
		errs = append(errs, fmt.Errorf("unknown MEDIA_DRIVER %q", c.MediaDriver))
	}
	switch c.MailDriver {
	case "smtp":
		if c.SMTPHost == "" {
			errs = append(errs, errors.New("SMTP_HOST is required for smtp mail"))
		}
	case "log":
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_DRIVER %q", c.MailDriver))
	}
	if c.JWTTTL <= 0 || c.ResetTokenTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL and RESET_TOKEN_TTL must be positive"))
	}
	if c.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_MB must be positive"))
	}
	return errors.Join(errs...)
}

// MaxUploadBytes - предел размера multipart-запроса.
func (c *Config) MaxUploadBytes() int64 { return c.MaxUploadMB << 20 }

// MaskedDatabaseURL возвращает строку подключения без пароля для логов.
func (c *Config) MaskedDatabaseURL() string {
	return maskURL(c.DatabaseURL)
}

// MaskedMongoURI возвращает URI MongoDB без пароля для логов.
func (c *Config) MaskedMongoURI() string {
	return maskURL(c.MongoURI)
}

func maskURL(raw string) string {
	schemeEnd := strings.Index(raw, "://")
	at := strings.LastIndex(raw, "@")
	if schemeEnd < 0 || at < schemeEnd {
		return raw
	}
	creds := raw[schemeEnd+3 : at]
	if colon := strings.Index(creds, ":"); colon >= 0 {
		return raw[:schemeEnd+3] + creds[:colon] + ":****" + raw[at:]
	}
	return raw
}
