package repository

import "tourbook/internal/domain"

// Models lists every persisted model for AutoMigrate. The notification
// table lives in its own module and is migrated alongside these.
func Models() []any {
	return []any{
		&userModel{},
		&providerModel{},
		&serviceModel{},
		&bookingModel{},
		&couponModel{},
		&domain.PlatformSettings{},
		&domain.GatewayPayment{},
	}
}
