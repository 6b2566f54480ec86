// Package config reads the console settings from the environment.
// An optional .env file in the working directory is loaded first.
package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

const (
	defaultAPIBase       = "http://localhost:3002"
	defaultListen        = ":8080"
	defaultSessionMaxAge = 24 * 60
	defaultLogsLimit     = 200
)

// LoadEnv loads variables from .env files without overriding ones already set.
// A missing file is not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

// GetAPIBase returns the backend base URL without a trailing slash.
func GetAPIBase() string {
	base := strings.TrimSpace(os.Getenv("CONSOLE_API_BASE"))
	if base == "" {
		base = defaultAPIBase
	}
	return strings.TrimRight(base, "/")
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("CONSOLE_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("CONSOLE_DEBUG") == "true"
}

func GetListen() string {
	listen := os.Getenv("CONSOLE_LISTEN")
	if listen == "" {
		listen = defaultListen
	}
	return listen
}

// GetSessionSecret returns the cookie signing secret, empty when unset.
func GetSessionSecret() string {
	return os.Getenv("CONSOLE_SESSION_SECRET")
}

// GetSessionMaxAge returns the session lifetime in minutes.
func GetSessionMaxAge() int {
	return getInt("CONSOLE_SESSION_MAX_AGE", defaultSessionMaxAge)
}

// GetLogsLimit is the page size used when listing activity logs.
func GetLogsLimit() int {
	return getInt("CONSOLE_LOGS_LIMIT", defaultLogsLimit)
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("CONSOLE_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

func GetDevAPIListen() string {
	listen := os.Getenv("CONSOLE_DEVAPI_LISTEN")
	if listen == "" {
		listen = ":3002"
	}
	return listen
}

func GetDevAPIDBPath() string {
	dbPath := os.Getenv("CONSOLE_DEVAPI_DB")
	if dbPath == "" {
		dbPath = "devapi.db"
	}
	return dbPath
}

func GetDevAPISecret() string {
	secret := os.Getenv("CONSOLE_DEVAPI_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}
	return secret
}

// GetDevAdmin returns the credentials seeded into an empty devapi database.
func GetDevAdmin() (email string, password string) {
	email = os.Getenv("CONSOLE_DEVAPI_ADMIN_EMAIL")
	if email == "" {
		email = "admin@example.com"
	}
	password = os.Getenv("CONSOLE_DEVAPI_ADMIN_PASSWORD")
	if password == "" {
		password = "admin"
	}
	return email, password
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
