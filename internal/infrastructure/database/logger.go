package database

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm/logger"
)

// NewGormLogger routes gorm's SQL logging through logrus. Statements are only
// logged in development; slow queries and errors are always reported.
func NewGormLogger(env string) logger.Interface {
	level := logger.Warn
	if env == "development" {
		level = logger.Info
	}
	return logger.New(logrus.StandardLogger(), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
