// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment variables and command-line flags.
package config

import (
	"fmt"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the RemoteTM server.
//
// Fields:
//   - HTTPAddr: bind address for the HTTP API.
//   - WorkDir: directory holding the embedded database, mailserver.json and local uploads.
//   - DatabaseDriver / DatabaseDSN: "sqlite" (embedded) or "pgx" (PostgreSQL). An empty
//     DSN for sqlite resolves to a file inside WorkDir.
//   - SecretKey / TicketValidityDuration: HMAC secret and lifetime of session tickets.
//   - PasswordSalt: server-wide salt mixed into every password digest. Changing it
//     invalidates all stored passwords.
//   - AdminPassword: password given to the seeded sysadmin account on first start.
//   - MaxUploadSize: upper bound for upload request bodies, in bytes.
//   - MailTimeout: deadline for delivering one account notice over SMTP.
//   - LogFormat / LogLevel: "json", "text" or "zap"; debug, info, warn or error.
//   - StorageBackend: "local" or "s3" for uploaded files.
//   - S3RootUser / S3RootPassword / S3Bucket / S3Region / S3BaseEndpoint: S3 settings.
type Config struct {
	HTTPAddr               string        `env:"REMOTETM_HTTP_ADDR"`
	WorkDir                string        `env:"REMOTETM_WORK_DIR"`
	DatabaseDriver         string        `env:"REMOTETM_DB_DRIVER"`
	DatabaseDSN            string        `env:"REMOTETM_DB_DSN"`
	SecretKey              string        `env:"REMOTETM_SECRET_KEY"`
	TicketValidityDuration time.Duration `env:"REMOTETM_TICKET_VALIDITY"`
	PasswordSalt           string        `env:"REMOTETM_PASSWORD_SALT"`
	AdminPassword          string        `env:"REMOTETM_ADMIN_PASSWORD"`
	MaxUploadSize          int64         `env:"REMOTETM_MAX_UPLOAD_SIZE"`
	MailTimeout            time.Duration `env:"REMOTETM_MAIL_TIMEOUT"`
	LogFormat              string        `env:"REMOTETM_LOG_FORMAT"`
	LogLevel               string        `env:"REMOTETM_LOG_LEVEL"`
	StorageBackend         string        `env:"REMOTETM_STORAGE"`
	S3RootUser             string        `env:"REMOTETM_S3_USER"`
	S3RootPassword         string        `env:"REMOTETM_S3_PASSWORD"`
	S3Bucket               string        `env:"REMOTETM_S3_BUCKET"`
	S3Region               string        `env:"REMOTETM_S3_REGION"`
	S3BaseEndpoint         string        `env:"REMOTETM_S3_ENDPOINT"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey and PasswordSalt must be overridden in production.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8060"
	c.WorkDir = "."
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.TicketValidityDuration = 8 * time.Hour
	c.PasswordSalt = "remotetm"
	c.AdminPassword = "secData"
	c.MaxUploadSize = 512 << 20
	c.MailTimeout = 30 * time.Second
	c.LogFormat = "json"
	c.LogLevel = "info"
	c.StorageBackend = "local"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "remotetm"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// SQLiteDSN returns the default embedded database location inside workDir.
func SQLiteDSN(workDir string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.Join(workDir, "remotetm.db"))
}

// Resolve fills values derived from others, such as the default SQLite DSN.
func (c *Config) Resolve() {
	if c.DatabaseDSN == "" && c.DatabaseDriver == "sqlite" {
		c.DatabaseDSN = SQLiteDSN(c.WorkDir)
	}
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	cfg.Resolve()
	return cfg
}

// LoadFile is LoadConfig without command-line parsing, for tools that own
// their flags. An empty path skips the JSON layer.
func LoadFile(path string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJsonFile(cfg, path)
	parseEnv(cfg)
	cfg.Resolve()
	return cfg
}
