package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// NewMySQL returns a connected GORM DB instance.
func NewMySQL(dsn string) (*gorm.DB, error) {
	gormDB, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		// Surface driver errors as gorm sentinels (gorm.ErrDuplicatedKey etc.)
		// so callers can match on them.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return gormDB, nil
}
