package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"tourbook/internal/domain"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID               int64      `gorm:"column:id;primaryKey"`
	ServiceID        int64      `gorm:"column:service_id"`
	UserID           int64      `gorm:"column:user_id"`
	ProviderID       int64      `gorm:"column:provider_id"`
	Quantity         int        `gorm:"column:quantity"`
	BookedFor        time.Time  `gorm:"column:booked_for"`
	Status           string     `gorm:"column:status"`
	Subtotal         float64    `gorm:"column:subtotal"`
	DiscountAmount   float64    `gorm:"column:discount_amount"`
	TaxAmount        float64    `gorm:"column:tax_amount"`
	FinalPrice       float64    `gorm:"column:final_price"`
	PlatformFee      float64    `gorm:"column:platform_fee"`
	ProviderEarnings float64    `gorm:"column:provider_earnings"`
	CouponCode       *string    `gorm:"column:coupon_code"`
	CouponRedeemed   bool       `gorm:"column:coupon_redeemed"`
	ExpiresAt        *time.Time `gorm:"column:expires_at"`
	RejectionReason  *string    `gorm:"column:rejection_reason"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	var couponCode, reason string
	if m.CouponCode != nil {
		couponCode = *m.CouponCode
	}
	if m.RejectionReason != nil {
		reason = *m.RejectionReason
	}

	return &domain.Booking{
		ID:               m.ID,
		ServiceID:        m.ServiceID,
		UserID:           m.UserID,
		ProviderID:       m.ProviderID,
		Quantity:         m.Quantity,
		BookedFor:        m.BookedFor,
		Status:           domain.BookingStatus(m.Status),
		Subtotal:         m.Subtotal,
		DiscountAmount:   m.DiscountAmount,
		TaxAmount:        m.TaxAmount,
		FinalPrice:       m.FinalPrice,
		PlatformFee:      m.PlatformFee,
		ProviderEarnings: m.ProviderEarnings,
		CouponCode:       couponCode,
		CouponRedeemed:   m.CouponRedeemed,
		ExpiresAt:        m.ExpiresAt,
		RejectionReason:  reason,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	var couponCode, reason *string
	if b.CouponCode != "" {
		v := b.CouponCode
		couponCode = &v
	}
	if b.RejectionReason != "" {
		v := b.RejectionReason
		reason = &v
	}

	return bookingModel{
		ID:               b.ID,
		ServiceID:        b.ServiceID,
		UserID:           b.UserID,
		ProviderID:       b.ProviderID,
		Quantity:         b.Quantity,
		BookedFor:        b.BookedFor,
		Status:           string(b.Status),
		Subtotal:         b.Subtotal,
		DiscountAmount:   b.DiscountAmount,
		TaxAmount:        b.TaxAmount,
		FinalPrice:       b.FinalPrice,
		PlatformFee:      b.PlatformFee,
		ProviderEarnings: b.ProviderEarnings,
		CouponCode:       couponCode,
		CouponRedeemed:   b.CouponRedeemed,
		ExpiresAt:        b.ExpiresAt,
		RejectionReason:  reason,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*b = *toDomainBooking(m)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

func (r *BookingRepository) GetByUserID(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error) {
	var rows []bookingModel
	tx := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

func (r *BookingRepository) GetByProviderID(ctx context.Context, providerID int64) ([]domain.Booking, error) {
	var rows []bookingModel
	tx := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at DESC").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

// TransitionStatus flips status only when the stored status still matches
// from. A false return means the precondition no longer held, which the
// caller reports as a state conflict; the row is untouched in that case.
func (r *BookingRepository) TransitionStatus(ctx context.Context, id int64, from, to domain.BookingStatus, updates map[string]any) (bool, error) {
	values := map[string]any{"status": string(to), "updated_at": time.Now().UTC()}
	for k, v := range updates {
		values[k] = v
	}

	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(values)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

// FreezeSettlement writes the computed monetary breakdown onto the record.
// Only valid while the booking is approved_unpaid.
func (r *BookingRepository) FreezeSettlement(ctx context.Context, id int64, b *domain.Booking) (bool, error) {
	var couponCode *string
	if b.CouponCode != "" {
		v := b.CouponCode
		couponCode = &v
	}

	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ? AND status = ?", id, string(domain.BookingApprovedUnpaid)).
		Updates(map[string]any{
			"subtotal":          b.Subtotal,
			"discount_amount":   b.DiscountAmount,
			"tax_amount":        b.TaxAmount,
			"final_price":       b.FinalPrice,
			"platform_fee":      b.PlatformFee,
			"provider_earnings": b.ProviderEarnings,
			"coupon_code":       couponCode,
			"updated_at":        time.Now().UTC(),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

// MarkCouponRedeemed flips the redeemed flag at most once per booking, so
// retried gateway confirmations cannot double-count coupon usage.
func (r *BookingRepository) MarkCouponRedeemed(ctx context.Context, id int64) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ? AND coupon_code IS NOT NULL AND coupon_redeemed = ?", id, false).
		Updates(map[string]any{"coupon_redeemed": true, "updated_at": time.Now().UTC()})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}
