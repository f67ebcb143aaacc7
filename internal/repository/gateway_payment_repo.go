package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"tourbook/internal/domain"
)

var ErrDuplicateOrderID = errors.New("merchant order id already used")

type GatewayPaymentRepository struct {
	db *gorm.DB
}

func NewGatewayPaymentRepository(db *gorm.DB) *GatewayPaymentRepository {
	return &GatewayPaymentRepository{db: db}
}

func (r *GatewayPaymentRepository) Create(ctx context.Context, p *domain.GatewayPayment) error {
	tx := r.db.WithContext(ctx).Create(p)
	if tx.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(tx.Error, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateOrderID
		}
		if errors.Is(tx.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateOrderID
		}
		return tx.Error
	}
	return nil
}

func (r *GatewayPaymentRepository) GetByMerchantOrderID(ctx context.Context, merchantOrderID string) (*domain.GatewayPayment, error) {
	var p domain.GatewayPayment
	tx := r.db.WithContext(ctx).Where("merchant_order_id = ?", merchantOrderID).First(&p)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &p, nil
}

// RecordKeyIssued stores the gateway identifiers once the handshake
// completed and the redirect URL exists.
func (r *GatewayPaymentRepository) RecordKeyIssued(ctx context.Context, id int64, gatewayOrderID, paymentToken, redirectURL string) error {
	return r.db.WithContext(ctx).
		Model(&domain.GatewayPayment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"gateway_order_id": gatewayOrderID,
			"payment_token":    paymentToken,
			"redirect_url":     redirectURL,
			"status":           string(domain.GatewayPaymentKeyIssued),
			"updated_at":       time.Now().UTC(),
		}).Error
}

// MarkFailed records a failure, unless the attempt already settled. A late
// failure callback must never overwrite a paid row.
func (r *GatewayPaymentRepository) MarkFailed(ctx context.Context, id int64, reason string) error {
	return r.db.WithContext(ctx).
		Model(&domain.GatewayPayment{}).
		Where("id = ? AND status <> ?", id, string(domain.GatewayPaymentPaid)).
		Updates(map[string]any{
			"status":         string(domain.GatewayPaymentFailed),
			"failure_reason": reason,
			"updated_at":     time.Now().UTC(),
		}).Error
}

// MarkPaidIdempotent flips the attempt to paid once; repeated confirmations
// report changed=false and leave the row alone.
func (r *GatewayPaymentRepository) MarkPaidIdempotent(ctx context.Context, id int64, rawBody string, paidAt time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&domain.GatewayPayment{}).
		Where("id = ? AND status <> ?", id, string(domain.GatewayPaymentPaid)).
		Updates(map[string]any{
			"status":            string(domain.GatewayPaymentPaid),
			"callback_raw_body": rawBody,
			"paid_at":           paidAt,
			"updated_at":        time.Now().UTC(),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}
