package storage

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/s/eduportal/internal/models"
)

func (r *Repository) EnrollRequestByID(ctx context.Context, id uint) (models.EnrollRequest, error) {
	var req models.EnrollRequest
	err := r.conn(ctx).First(&req, id).Error
	return req, translate(err, "getting enroll request")
}

func (r *Repository) EnrollRequestFor(ctx context.Context, userID, courseID uint) (models.EnrollRequest, error) {
	var req models.EnrollRequest
	err := r.conn(ctx).Where("user_id = ? AND course_id = ?", userID, courseID).First(&req).Error
	return req, translate(err, "getting enroll request for pair")
}

func (r *Repository) CreateEnrollRequest(ctx context.Context, req *models.EnrollRequest) error {
	if req.Status == "" {
		req.Status = models.StatusPending
	}
	return translate(r.conn(ctx).Create(req).Error, "creating enroll request")
}

func (r *Repository) SetEnrollRequestStatus(ctx context.Context, id uint, status models.RequestStatus) error {
	res := r.conn(ctx).Model(&models.EnrollRequest{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return translate(res.Error, "updating enroll request status")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteEnrollRequest(ctx context.Context, id uint) error {
	res := r.conn(ctx).Delete(&models.EnrollRequest{}, id)
	if res.Error != nil {
		return translate(res.Error, "deleting enroll request")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type pendingRow struct {
	ID           uint
	UserID       uint
	CourseID     uint
	Username     string
	FullName     string `gorm:"column:fullname"`
	Email        string
	CourseTitleA string `gorm:"column:title_ar"`
	CourseTitleE string `gorm:"column:title_en"`
	CreatedAt    time.Time
}

func (r *Repository) PendingEnrollRequests(ctx context.Context) ([]models.PendingRequest, error) {
	var rows []pendingRow
	err := r.conn(ctx).Table("enroll_requests er").
		Select("er.id, er.user_id, er.course_id, er.created_at, u.username, u.fullname, u.email, c.title_ar, c.title_en").
		Joins("JOIN users u ON er.user_id = u.id").
		Joins("JOIN courses c ON er.course_id = c.id").
		Where("er.status IS NULL OR er.status = ?", models.StatusPending).
		Order("er.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, "listing pending requests")
	}

	out := make([]models.PendingRequest, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.PendingRequest{
			ID:          row.ID,
			UserID:      row.UserID,
			CourseID:    row.CourseID,
			Username:    row.Username,
			FullName:    row.FullName,
			Email:       row.Email,
			CourseTitle: models.Text(row.CourseTitleA, row.CourseTitleE),
			CreatedAt:   row.CreatedAt,
		})
	}
	return out, nil
}

func (r *Repository) ApproveEnrollment(ctx context.Context, userID, courseID uint) error {
	e := models.Enrollment{UserID: userID, CourseID: courseID, Approved: true}
	err := r.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoUpdates: clause.Assignments(map[string]any{"approved": true}),
	}).Create(&e).Error
	return translate(err, "approving enrollment")
}

func (r *Repository) IsApproved(ctx context.Context, userID, courseID uint) (bool, error) {
	var n int64
	err := r.conn(ctx).Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ? AND approved = ?", userID, courseID, true).
		Count(&n).Error
	return n > 0, translate(err, "checking enrollment")
}

func (r *Repository) ApprovedUserIDs(ctx context.Context, courseID uint) ([]uint, error) {
	var ids []uint
	err := r.conn(ctx).Model(&models.Enrollment{}).
		Where("course_id = ? AND approved = ?", courseID, true).
		Order("user_id").
		Pluck("user_id", &ids).Error
	return ids, translate(err, "listing enrollees")
}
