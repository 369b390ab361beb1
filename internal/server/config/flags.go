package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/remotetm/internal/flagx"
)

var serverFlags = []string{
	"-a", "-w", "-k", "-d", "-s", "-t", "-S", "-A", "-m", "-f", "-l", "-o",
	"-u", "-p", "-b", "-g", "-e", "-M",
}

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8060")
//	-w string   work directory
//	-k string   database driver: sqlite or pgx
//	-d string   database DSN
//	-s string   ticket HMAC secret key
//	-t int      ticket validity, minutes
//	-S string   password salt
//	-A string   bootstrap sysadmin password
//	-m int      max upload size, bytes
//	-M int      mail delivery timeout, seconds
//	-f string   log format: json, text or zap
//	-l string   log level
//	-o string   storage backend: local or s3
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.WorkDir, "w", config.WorkDir, "work directory")
	fs.StringVar(&config.DatabaseDriver, "k", config.DatabaseDriver, "database driver (sqlite|pgx)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	ticketValidity := fs.Int("t", int(config.TicketValidityDuration.Minutes()), "ticket validity (in minutes)")

	fs.StringVar(&config.PasswordSalt, "S", config.PasswordSalt, "password salt")
	fs.StringVar(&config.AdminPassword, "A", config.AdminPassword, "initial sysadmin password")
	fs.Int64Var(&config.MaxUploadSize, "m", config.MaxUploadSize, "max upload size in bytes")
	mailTimeout := fs.Int("M", int(config.MailTimeout.Seconds()), "mail delivery timeout (in seconds)")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format (json|text|zap)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.StorageBackend, "o", config.StorageBackend, "storage backend (local|s3)")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TicketValidityDuration = time.Duration(*ticketValidity) * time.Minute
	config.MailTimeout = time.Duration(*mailTimeout) * time.Second
}
