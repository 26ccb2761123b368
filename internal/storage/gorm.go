package storage

import (
	"context"

	"gorm.io/gorm"

	"github.com/s/eduportal/internal/models"
)

// Repository is the gorm-backed Store.
type Repository struct {
	db *gorm.DB
}

var _ Store = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) conn(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *Repository) Tx(ctx context.Context, fn func(tx Store) error) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return translate(err, "getting sql.DB")
	}
	return translate(sqlDB.PingContext(ctx), "ping")
}

func (r *Repository) LogActivity(ctx context.Context, entry models.ActivityLog) error {
	return translate(r.conn(ctx).Create(&entry).Error, "logging activity")
}
