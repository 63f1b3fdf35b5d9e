package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/damoang/angple-plugins/internal/config"
	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Migrator 자신의 테이블을 생성하는 저장소
type Migrator interface {
	AutoMigrate() error
}

// Open 설정의 드라이버로 DB 연결
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(LogLevel(cfg.LogLevel)),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "mysql":
		mysqlCfg, perr := mysqldriver.ParseDSN(cfg.GetDSN())
		if perr != nil {
			return nil, fmt.Errorf("DSN 파싱 실패: %w", perr)
		}
		if mysqlCfg.Params == nil {
			mysqlCfg.Params = map[string]string{}
		}
		mysqlCfg.Params["time_zone"] = "'+09:00'"
		db, err = gorm.Open(mysql.Open(mysqlCfg.FormatDSN()), gcfg)
	case "sqlite":
		// 콘텐츠 → 플러그인 ON DELETE CASCADE 가 동작하도록 외래키 활성화
		db, err = gorm.Open(sqlite.Open(sqliteDSN(cfg.Path)), gcfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}
	return db, nil
}

// Migrate 순서대로 AutoMigrate 실행 (참조되는 테이블이 먼저)
func Migrate(migrators ...Migrator) error {
	for _, m := range migrators {
		if err := m.AutoMigrate(); err != nil {
			return err
		}
	}
	return nil
}

// LogLevel gorm 로그 레벨 이름 변환 (알 수 없으면 warn)
func LogLevel(name string) gormlogger.LogLevel {
	switch strings.ToLower(name) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}
