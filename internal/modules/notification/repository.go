package notification

import (
	"context"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, n *Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *Repository) GetByUserID(ctx context.Context, userID int64, limit int) ([]Notification, error) {
	var rows []Notification
	tx := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows)
	return rows, tx.Error
}

func (r *Repository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var n int64
	tx := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n)
	return n, tx.Error
}

func (r *Repository) MarkAsRead(ctx context.Context, notificationID, userID int64) error {
	return r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true).Error
}
