package models

import "gorm.io/gorm"

// All lists every model the service persists, in dependency order
func All() []interface{} {
	return []interface{}{
		&VerificationCase{},
		&VerificationDocument{},
		&VerificationHistory{},
		&OnboardingProgress{},
		&Notification{},
		&ProviderContact{},
		&VerificationBlob{},
	}
}

// AutoMigrate creates or updates the schema
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
