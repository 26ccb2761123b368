package storage

import (
	"context"

	"github.com/s/eduportal/internal/models"
)

func (r *Repository) CreateSlide(ctx context.Context, s *models.HeroSlide) error {
	return translate(r.conn(ctx).Create(s).Error, "creating slide")
}

func (r *Repository) UpdateSlide(ctx context.Context, s *models.HeroSlide) error {
	res := r.conn(ctx).Model(&models.HeroSlide{}).Where("id = ?", s.ID).Updates(map[string]any{
		"image_path": s.ImagePath,
		"title_ar":   s.Title.Ar,
		"title_en":   s.Title.En,
		"desc_ar":    s.Desc.Ar,
		"desc_en":    s.Desc.En,
	})
	if res.Error != nil {
		return translate(res.Error, "updating slide")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteSlide(ctx context.Context, id uint) error {
	res := r.conn(ctx).Delete(&models.HeroSlide{}, id)
	if res.Error != nil {
		return translate(res.Error, "deleting slide")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) SlideByID(ctx context.Context, id uint) (models.HeroSlide, error) {
	var s models.HeroSlide
	err := r.conn(ctx).First(&s, id).Error
	return s, translate(err, "getting slide")
}

func (r *Repository) ListSlides(ctx context.Context) ([]models.HeroSlide, error) {
	var slides []models.HeroSlide
	err := r.conn(ctx).Order("id ASC").Find(&slides).Error
	return slides, translate(err, "listing slides")
}
