package db

import (
	"strings"

	"postboard/config"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var Instance *gorm.DB

func Init() {
	var err error
	gormConfig := &gorm.Config{
		PrepareStmt: true,
	}
	if config.MYSQL_DSN != "" {
		Instance, err = gorm.Open(mysql.Open(config.MYSQL_DSN), gormConfig)
	} else {
		Instance, err = gorm.Open(sqlite.Open(SqliteDSN(config.SQLITE_FILE)), gormConfig)
	}
	if err != nil || Instance == nil {
		panic(err)
	}
}

// SqliteDSN turns a plain SQLite path into a DSN with foreign keys
// enabled. The foreign_keys pragma is per-connection, so it has to ride
// the DSN: every connection the pool opens gets it, not just the first.
func SqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&_foreign_keys=on"
	}
	return path + "?_foreign_keys=on"
}
