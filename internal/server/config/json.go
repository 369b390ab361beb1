package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/remotetm/internal/flagx"
	"github.com/dmitrijs2005/remotetm/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations
// accept strings such as "30m" or integer nanoseconds.
type JsonConfig struct {
	HTTPAddr               string         `json:"http_addr"`
	WorkDir                string         `json:"work_dir"`
	DatabaseDriver         string         `json:"database_driver"`
	DatabaseDSN            string         `json:"database_dsn"`
	SecretKey              string         `json:"secret_key"`
	TicketValidityDuration timex.Duration `json:"ticket_validity_duration"`
	PasswordSalt           string         `json:"password_salt"`
	AdminPassword          string         `json:"admin_password"`
	MaxUploadSize          int64          `json:"max_upload_size"`
	MailTimeout            timex.Duration `json:"mail_timeout"`
	LogFormat              string         `json:"log_format"`
	LogLevel               string         `json:"log_level"`
	StorageBackend         string         `json:"storage_backend"`
	S3RootUser             string         `json:"s3_root_user"`
	S3RootPassword         string         `json:"s3_root_password"`
	S3Bucket               string         `json:"s3_bucket"`
	S3Region               string         `json:"s3_region"`
	S3BaseEndpoint         string         `json:"s3_base_endpoint"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseJson loads configuration values from the file named by -c/-config
// (or CONFIG) into config. Keys missing from the file keep their current
// value. An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	parseJsonFile(config, flagx.ConfigFileFlag())
}

func parseJsonFile(config *Config, jsonConfigFile string) {
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.WorkDir, c.WorkDir)
	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.TicketValidityDuration.Duration > 0 {
		config.TicketValidityDuration = c.TicketValidityDuration.Duration
	}
	setString(&config.PasswordSalt, c.PasswordSalt)
	setString(&config.AdminPassword, c.AdminPassword)
	if c.MaxUploadSize > 0 {
		config.MaxUploadSize = c.MaxUploadSize
	}
	if c.MailTimeout.Duration > 0 {
		config.MailTimeout = c.MailTimeout.Duration
	}
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}
