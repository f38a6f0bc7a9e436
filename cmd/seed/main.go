package main

import (
	"context"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"agrimap/internal/config"
	"agrimap/internal/db"
	"agrimap/internal/model"
	"agrimap/internal/repository"
)

// Soil classifications used by the survey forms. Upserted so reruns refresh
// suitability without duplicating rows.
var soilTypes = []model.SoilType{
	{Name: "Clay", Suitability: "Rice, Taro"},
	{Name: "Clay Loam", Suitability: "Corn, Sugarcane"},
	{Name: "Loam", Suitability: "Vegetables, Corn"},
	{Name: "Sandy Loam", Suitability: "Root crops, Peanut"},
	{Name: "Silt Loam", Suitability: "Rice, Vegetables"},
	{Name: "Sandy", Suitability: "Coconut, Cassava"},
}

const (
	demoEmail    = "demo@agrimap.local"
	demoPassword = "demo-password"
)

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.SoilType{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()
	soilRepo := repository.NewSoilTypeRepository(gormDB)
	for i := range soilTypes {
		if err := soilRepo.Upsert(ctx, &soilTypes[i]); err != nil {
			log.Fatalf("Failed to seed soil type %q: %v", soilTypes[i].Name, err)
		}
	}
	log.Printf("Seeded %d soil types", len(soilTypes))

	if err := seedDemoUser(ctx, repository.NewUserRepository(gormDB)); err != nil {
		log.Fatalf("Failed to seed demo user: %v", err)
	}

	log.Println("Seed completed successfully!")
}

func seedDemoUser(ctx context.Context, users repository.UserRepository) error {
	if _, err := users.FindByEmail(ctx, demoEmail); err == nil {
		log.Println("Demo user already present")
		return nil
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(demoPassword), 10)
	if err != nil {
		return err
	}

	user := &model.User{
		Email:        demoEmail,
		PasswordHash: string(hashed),
		FirstName:    "Demo",
		LastName:     "Surveyor",
		Sex:          "N/A",
		ContactNo:    "0000000000",
		Role:         model.DefaultRole,
	}
	if err := users.Create(ctx, user); err != nil {
		return err
	}
	log.Printf("Created demo user %s (id %d)", demoEmail, user.ID)
	return nil
}
