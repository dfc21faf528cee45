package initializers

import (
	"fmt"
	"log"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// OpenDB opens a gorm connection for driver "mysql" or "sqlite".
func OpenDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		if dsn == "" {
			dsn = "tableside.db"
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

func ConnectToDB(cfg *Config) {
	var err error
	DB, err = OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	log.Printf("Connected to %s database.", cfg.DBDriver)
}
