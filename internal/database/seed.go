package database

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/s/eduportal/internal/models"
	"github.com/s/eduportal/internal/storage"
)

// SeedAdmin creates the administrator account when it does not exist yet.
// Пустые username/password означают, что сидировать нечего.
func SeedAdmin(ctx context.Context, store storage.Store, username, password string, log *zap.Logger) error {
	if username == "" || password == "" {
		return nil
	}

	_, err := store.UserByLogin(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	admin := models.User{
		Username: username,
		Email:    username,
		FullName: "Administrator",
		IsAdmin:  true,
	}
	if err := admin.SetPassword(password); err != nil {
		return err
	}
	if err := store.CreateUser(ctx, &admin); err != nil {
		return errors.Wrap(err, "seeding admin")
	}
	log.Info("admin account created", zap.String("username", username))
	return nil
}
