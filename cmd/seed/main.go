package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"tourbook/internal/config"
	"tourbook/internal/database"
	"tourbook/internal/domain"
	"tourbook/internal/modules/notification"
	"tourbook/internal/repository"
)

func main() {
	_ = godotenv.Load()
	config.LoadConfig()

	db, err := database.Connect(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	models := append(repository.Models(), &notification.Notification{})
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM notifications")
	db.Exec("DELETE FROM gateway_payments")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM coupons")
	db.Exec("DELETE FROM services")
	db.Exec("DELETE FROM provider_profiles")
	db.Exec("DELETE FROM platform_settings")
	db.Exec("DELETE FROM users")

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	providers := repository.NewProviderRepository(db)
	services := repository.NewServiceRepository(db)
	coupons := repository.NewCouponRepository(db)
	settings := repository.NewSettingsRepository(db)

	// ================== USERS ==================
	log.Println("Creating users...")

	admin := &domain.User{
		Email:        "admin@tourbook.sa",
		PasswordHash: mustHash("admin123"),
		Role:         domain.RoleAdmin,
		Name:         "Platform Admin",
	}
	mustCreate(users.Create(ctx, admin))
	log.Println("Admin created: admin@tourbook.sa / admin123")

	client := &domain.User{
		Email:        "client@example.com",
		PasswordHash: mustHash("client123"),
		Role:         domain.RoleClient,
		Name:         "Demo Client",
		Phone:        "+966 50 123 4567",
	}
	mustCreate(users.Create(ctx, client))
	log.Println("Client created: client@example.com / client123")

	providerUser := &domain.User{
		Email:        "provider@desert-tours.sa",
		PasswordHash: mustHash("provider123"),
		Role:         domain.RoleProvider,
		Name:         "Desert Tours Owner",
		Phone:        "+966 55 987 6543",
	}
	mustCreate(users.Create(ctx, providerUser))
	log.Println("Provider created: provider@desert-tours.sa / provider123")

	provider := &domain.ProviderProfile{
		UserID:      providerUser.ID,
		CompanyName: "Desert Tours LLC",
		Phone:       providerUser.Phone,
	}
	mustCreate(providers.Create(ctx, provider))

	// A second provider with a custom commission rate.
	customUser := &domain.User{
		Email:        "provider@coast-stays.sa",
		PasswordHash: mustHash("provider123"),
		Role:         domain.RoleProvider,
		Name:         "Coast Stays Owner",
	}
	mustCreate(users.Create(ctx, customUser))
	customRate := 12.0
	customProvider := &domain.ProviderProfile{
		UserID:           customUser.ID,
		CompanyName:      "Coast Stays",
		CustomCommission: &customRate,
	}
	mustCreate(providers.Create(ctx, customProvider))

	// ================== SERVICES ==================
	log.Println("Creating services...")

	overrideRate := 8.0
	demoServices := []*domain.TourService{
		{
			ProviderID: provider.ID,
			Name:       "Sunset Desert Safari",
			Price:      1000,
			Category:   domain.CategoryTourist,
		},
		{
			ProviderID: provider.ID,
			Name:       "Old Town Food Walk",
			Price:      250,
			Category:   domain.CategoryFood,
		},
		{
			ProviderID:  customProvider.ID,
			Name:        "Beachfront Chalet",
			Price:       1800,
			Category:    domain.CategoryHousing,
			SubCategory: "chalet",
		},
		{
			ProviderID:         customProvider.ID,
			Name:               "Diving Experience",
			Price:              600,
			Category:           domain.CategoryExperience,
			PlatformCommission: &overrideRate,
		},
	}
	for _, s := range demoServices {
		mustCreate(services.Create(ctx, s))
	}

	// ================== COUPONS ==================
	log.Println("Creating coupons...")
	mustCreate(coupons.Create(ctx, &domain.Coupon{Code: "SAVE5", DiscountPercent: 5}))
	mustCreate(coupons.Create(ctx, &domain.Coupon{Code: "WELCOME10", DiscountPercent: 10}))

	// ================== SETTINGS ==================
	log.Println("Creating platform settings...")
	mustCreate(settings.Save(ctx, &domain.PlatformSettings{
		IsGeneralDiscountActive: true,
		GeneralDiscountPercent:  10,
		CommissionTourist:       15,
		CommissionHousing:       10,
		CommissionFood:          20,
	}))

	log.Println("Seed complete.")
}

func mustHash(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("bcrypt failed:", err)
	}
	return string(hash)
}

func mustCreate(err error) {
	if err != nil {
		log.Fatal("seed insert failed:", err)
	}
}
