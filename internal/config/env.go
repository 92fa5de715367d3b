package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"3100"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"debug"`
	APIKey   string `envconfig:"API_KEY" required:"true"`
	// AppURL is the public base URL used for deep links in notifications.
	AppURL  string `envconfig:"APP_URL" default:"http://localhost:3000"`
	AppName string `envconfig:"APP_NAME" default:"WE Tracker"`
}

type StorageEnv struct {
	Type    string `envconfig:"STORAGE_TYPE" default:"local"`
	BaseDir string `envconfig:"STORAGE_BASE_DIR" default:".wetracker/data"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"S3_BUCKET"`
	S3Prefix string `envconfig:"S3_PREFIX" default:"wetracker/"`
	S3Region string `envconfig:"S3_REGION" default:"us-west-1"`
	// SQLite settings (used when Type == "sqlite")
	SQLiteDSN string `envconfig:"SQLITE_DSN" default:".wetracker/wetracker.db"`
}

// MailEnv configures the SMTP transport. Leaving SMTPHost or SMTPUser empty
// disables email delivery without failing anything.
type MailEnv struct {
	SMTPHost    string `envconfig:"SMTP_HOST"`
	SMTPPort    string `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser    string `envconfig:"SMTP_USER"`
	SMTPPass    string `envconfig:"SMTP_PASS"`
	FromName    string `envconfig:"MAIL_FROM_NAME" default:"WE Tracker"`
	TemplateDir string `envconfig:"MAIL_TEMPLATE_DIR"`
}

func (e *MailEnv) Configured() bool {
	return e != nil && e.SMTPHost != "" && e.SMTPUser != ""
}

type VAPIDEnv struct {
	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`
	VAPIDContact    string `envconfig:"VAPID_CONTACT" default:"mailto:admin@example.com"`
}

func (e *VAPIDEnv) Configured() bool {
	return e != nil && e.VAPIDPublicKey != "" && e.VAPIDPrivateKey != ""
}

type NotificationEnv struct {
	MaxConcurrentSends int           `envconfig:"NOTIFY_MAX_CONCURRENT_SENDS" default:"4"`
	SendTimeout        time.Duration `envconfig:"NOTIFY_SEND_TIMEOUT" default:"30s"`
	QueueSize          int           `envconfig:"NOTIFY_QUEUE_SIZE" default:"256"`
}

type Env struct {
	BaseEnv
	StorageEnv
	MailEnv
	VAPIDEnv
	NotificationEnv
}

const namespace = "WETRACKER"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	return &env, nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelDebug
	}
	return level
}
