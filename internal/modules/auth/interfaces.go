package auth

import (
	"context"

	"tourbook/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type ProviderRepository interface {
	Create(ctx context.Context, p *domain.ProviderProfile) error
}

type tokenIssuer interface {
	GenerateToken(userID int64, role string) (string, error)
}
