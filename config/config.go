package config

import (
	"os"
	"strings"
)

const (
	name    = "p-ui"
	version = "1.2.0"
)

type LogLevel string

const (
	Debug LogLevel = "debug"
	Info  LogLevel = "info"
	Warn  LogLevel = "warn"
	Error LogLevel = "error"
)

func GetName() string {
	return name
}

func GetVersion() string {
	return version
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("PUI_LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	return LogLevel(strings.ToLower(logLevel))
}

func IsDebug() bool {
	return os.Getenv("PUI_DEBUG") == "true"
}

func GetDBPath() string {
	dbPath := os.Getenv("PUI_DB_PATH")
	if dbPath == "" {
		dbPath = "db/p-ui.db"
	}
	return dbPath
}

func GetListen() string {
	listen := os.Getenv("PUI_LISTEN")
	if listen == "" {
		listen = "0.0.0.0:2095"
	}
	return listen
}

func GetTelegramConfigPath() string {
	path := os.Getenv("PUI_TELEGRAM_CONFIG")
	if path == "" {
		path = "telegram_config.json"
	}
	return path
}
