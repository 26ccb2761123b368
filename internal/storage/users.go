package storage

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/s/eduportal/internal/models"
)

func (r *Repository) CreateUser(ctx context.Context, u *models.User) error {
	return translate(r.conn(ctx).Create(u).Error, "creating user")
}

func (r *Repository) UserByID(ctx context.Context, id uint) (models.User, error) {
	var u models.User
	err := r.conn(ctx).First(&u, id).Error
	return u, translate(err, "getting user")
}

func (r *Repository) UserByLogin(ctx context.Context, login string) (models.User, error) {
	var u models.User
	login = strings.TrimSpace(login)
	err := r.conn(ctx).Where("username = ? OR email = ?", login, login).First(&u).Error
	return u, translate(err, "getting user by login")
}

func (r *Repository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	res := r.conn(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return translate(res.Error, "updating password")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveOAuthUser finds a user by Google ID, then by email; if found, it links
// and updates the name, otherwise it creates a learner account.
func (r *Repository) SaveOAuthUser(ctx context.Context, info models.User) (models.User, error) {
	var existing models.User
	db := r.conn(ctx)

	err := translate(db.Where("google_id = ?", info.GoogleID).First(&existing).Error, "finding user by google id")
	if errors.Is(err, ErrNotFound) {
		err = translate(db.Where("email = ?", info.Email).First(&existing).Error, "finding user by email")
	}

	switch {
	case err == nil:
		// Роль не трогаем: ею управляет администратор.
		updates := map[string]any{"google_id": info.GoogleID}
		if info.FullName != "" {
			updates["fullname"] = info.FullName
		}
		if err := db.Model(&existing).Updates(updates).Error; err != nil {
			return models.User{}, translate(err, "updating oauth user")
		}
		existing.GoogleID = info.GoogleID
		return existing, nil
	case errors.Is(err, ErrNotFound):
		info.IsAdmin = false
		if info.Username == "" {
			info.Username = info.Email
		}
		if err := db.Create(&info).Error; err != nil {
			return models.User{}, translate(err, "creating oauth user")
		}
		return info, nil
	default:
		return models.User{}, err
	}
}
