package database

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// Connect opens the gorm connection. Docker-базе иногда нужно пару секунд, поэтому несколько попыток.
func Connect(dsn string, log *zap.Logger) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < connectAttempts; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			log.Info("database connected")
			return db, nil
		}

		log.Warn("database connect attempt failed", zap.Int("attempt", i+1), zap.Error(err))
		time.Sleep(connectBackoff)
	}

	return nil, errors.Wrapf(err, "connecting to database after %d attempts", connectAttempts)
}
