package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gorm.io/gorm"

	"github.com/foodgram-app/backend/config"
	"github.com/foodgram-app/backend/internal/database"
	"github.com/foodgram-app/backend/internal/models"
)

type ingredientFixture struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type tagFixture struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	if err := seedIngredients(db, filepath.Join(cfg.DataDir, "ingredients.json")); err != nil {
		log.Fatalf("Failed to seed ingredients: %v", err)
	}
	if err := seedTags(db, filepath.Join(cfg.DataDir, "tags.json")); err != nil {
		log.Fatalf("Failed to seed tags: %v", err)
	}

	log.Println("Seeding completed successfully")
}

// seedIngredients loads ingredient fixtures, skipping name/unit pairs that
// already exist so the command can be re-run safely.
func seedIngredients(db *gorm.DB, path string) error {
	var fixtures []ingredientFixture
	if err := loadFixtures(path, &fixtures); err != nil {
		return err
	}

	created, skipped := 0, 0
	for _, f := range fixtures {
		var count int64
		if err := db.Model(&models.Ingredient{}).
			Where("name = ? AND measurement_unit = ?", f.Name, f.MeasurementUnit).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			skipped++
			continue
		}
		if err := db.Create(&models.Ingredient{Name: f.Name, MeasurementUnit: f.MeasurementUnit}).Error; err != nil {
			return fmt.Errorf("failed to create ingredient %q: %w", f.Name, err)
		}
		created++
	}
	log.Printf("Ingredients: %d created, %d already present", created, skipped)
	return nil
}

func seedTags(db *gorm.DB, path string) error {
	var fixtures []tagFixture
	if err := loadFixtures(path, &fixtures); err != nil {
		return err
	}

	created, skipped := 0, 0
	for _, f := range fixtures {
		var count int64
		if err := db.Model(&models.Tag{}).Where("slug = ?", f.Slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			skipped++
			continue
		}
		if err := db.Create(&models.Tag{Name: f.Name, Color: f.Color, Slug: f.Slug}).Error; err != nil {
			return fmt.Errorf("failed to create tag %q: %w", f.Slug, err)
		}
		created++
	}
	log.Printf("Tags: %d created, %d already present", created, skipped)
	return nil
}

func loadFixtures(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read fixture file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse fixture file %s: %w", path, err)
	}
	return nil
}
