package storage

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pixelforge-server-go/internal/platform/errors"
)

// Open 打开数据库连接并迁移表结构
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, "db.open", "failed to open database", err)
	}

	if err := db.AutoMigrate(&User{}, &Project{}, &ImageJob{}, &AuditLog{}); err != nil {
		return nil, errors.Wrap(errors.KindStorage, "db.migrate", "failed to migrate schema", err)
	}

	return db, nil
}

// Close 关闭底层连接
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(errors.KindStorage, "db.close", "failed to access underlying connection", err)
	}
	return sqlDB.Close()
}
