package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tourbook/internal/domain"
	"tourbook/internal/repository"
)

const minPasswordLength = 8

type Service struct {
	users     UserRepository
	providers ProviderRepository
	jwt       tokenIssuer
}

type LoginResult struct {
	User        *domain.User
	AccessToken string
}

func NewService(users UserRepository, providers ProviderRepository, jwt tokenIssuer) *Service {
	return &Service{users: users, providers: providers, jwt: jwt}
}

func (s *Service) RegisterClient(ctx context.Context, req RegisterClientRequest) (*domain.User, error) {
	return s.register(ctx, req.Email, req.Password, req.Name, req.Phone, domain.RoleClient, "")
}

// RegisterProvider creates the user account together with its provider
// profile. The profile carries no custom commission until an operator sets
// one.
func (s *Service) RegisterProvider(ctx context.Context, req RegisterProviderRequest) (*domain.User, error) {
	return s.register(ctx, req.Email, req.Password, req.Name, req.Phone, domain.RoleProvider, req.CompanyName)
}

func (s *Service) register(ctx context.Context, email, password, name, phone string, role domain.UserRole, companyName string) (*domain.User, error) {
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		Name:         name,
		Phone:        phone,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	if role == domain.RoleProvider {
		profile := &domain.ProviderProfile{
			UserID:      user.ID,
			CompanyName: companyName,
			Phone:       phone,
		}
		if err := s.providers.Create(ctx, profile); err != nil {
			return nil, err
		}
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &LoginResult{User: user, AccessToken: token}, nil
}
