package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var (
	MYSQL_DSN           = ""             // MySQL will be used if this is set
	SQLITE_FILE         = "postboard.db" // SQLite will be used if MYSQL_DSN is not configured
	BIND_ADDRESS        = "0.0.0.0:8080"
	TLS_DOMAINS         = "" // e.g. "example.com,example2.com"
	DEBUG_MODE          = true
	PAGE_SIZE           = 10 // posts per listing page
	INDEX_CACHE_SECONDS = 20 // full-page cache TTL for the front page
	REDIS_URL           = "" // page cache falls back to in-memory if empty
	UPLOADS_DIR         = "./uploads"
	S3_BUCKET           = "" // S3 will be used for media if this is set
	S3_REGION           = "us-east-1"
	S3_PREFIX           = ""
	SESSION_KEY         = "change me in production"
)

func init() {
	_ = godotenv.Load()

	readEnvString("MYSQL_DSN", &MYSQL_DSN)
	readEnvString("SQLITE_FILE", &SQLITE_FILE)
	readEnvString("BIND_ADDRESS", &BIND_ADDRESS)
	readEnvString("TLS_DOMAINS", &TLS_DOMAINS)
	readEnvBool("DEBUG_MODE", &DEBUG_MODE)
	readEnvInt("PAGE_SIZE", &PAGE_SIZE)
	readEnvInt("INDEX_CACHE_SECONDS", &INDEX_CACHE_SECONDS)
	readEnvString("REDIS_URL", &REDIS_URL)
	readEnvString("UPLOADS_DIR", &UPLOADS_DIR)
	readEnvString("S3_BUCKET", &S3_BUCKET)
	readEnvString("S3_REGION", &S3_REGION)
	readEnvString("S3_PREFIX", &S3_PREFIX)
	readEnvString("SESSION_KEY", &SESSION_KEY)
}

func readEnvString(name string, value *string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	*value = v
}

func readEnvBool(name string, value *bool) {
	v := strings.ToLower(os.Getenv(name))
	if v == "true" || v == "1" || v == "yes" || v == "on" {
		*value = true
	} else if v == "false" || v == "0" || v == "no" || v == "off" {
		*value = false
	}
}

func readEnvInt(name string, value *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	f, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*value = f
}
