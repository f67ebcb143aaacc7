package commission

import "tourbook/internal/domain"

// Resolve returns the commission percentage (0-100) the platform takes on a
// booking of svc. Sources are tried in order and the first non-nil value
// wins; an explicitly stored 0 is a real override and must be honored.
//
// Order: per-service override, provider custom rate, category default.
func Resolve(svc *domain.TourService, provider *domain.ProviderProfile, settings domain.PlatformSettings) float64 {
	sources := []func() *float64{
		func() *float64 {
			if svc == nil {
				return nil
			}
			return svc.PlatformCommission
		},
		func() *float64 {
			if provider == nil {
				return nil
			}
			return provider.CustomCommission
		},
	}

	for _, source := range sources {
		if v := source(); v != nil {
			return *v
		}
	}

	return categoryDefault(svc, settings)
}

func categoryDefault(svc *domain.TourService, settings domain.PlatformSettings) float64 {
	if svc == nil {
		return settings.CommissionFood
	}
	switch svc.Category {
	case domain.CategoryTourist, domain.CategoryExperience:
		return settings.CommissionTourist
	case domain.CategoryHousing:
		return settings.CommissionHousing
	}
	if svc.SubCategory == string(domain.CategoryHousing) {
		return settings.CommissionHousing
	}
	return settings.CommissionFood
}
