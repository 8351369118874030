package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recipe is owned by exactly one author and carries a set of tags and an
// ordered set of ingredient lines. Listings are ordered newest first.
type Recipe struct {
	ID          uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	AuthorID    uuid.UUID      `gorm:"type:varchar(36);not null;index" json:"author_id"`
	Author      *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Name        string         `gorm:"size:200;not null;index" json:"name"`
	Text        string         `gorm:"type:text;not null" json:"text"`
	ImageURL    string         `gorm:"size:255" json:"image"`
	CookingTime int            `gorm:"not null;default:1" json:"cooking_time"`

	Tags        []Tag              `gorm:"many2many:recipe_tags" json:"tags,omitempty"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients,omitempty"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RecipeIngredient is an ingredient line: one ingredient with a quantity
// inside one recipe. An ingredient may appear at most once per recipe.
type RecipeIngredient struct {
	ID           uuid.UUID   `gorm:"type:varchar(36);primarykey" json:"id"`
	RecipeID     uuid.UUID   `gorm:"type:varchar(36);not null;uniqueIndex:idx_recipe_ingredient" json:"recipe_id"`
	IngredientID uuid.UUID   `gorm:"type:varchar(36);not null;uniqueIndex:idx_recipe_ingredient" json:"ingredient_id"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
	Amount       int         `gorm:"not null;default:1" json:"amount"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}

func (ri *RecipeIngredient) BeforeCreate(tx *gorm.DB) error {
	if ri.ID == uuid.Nil {
		ri.ID = uuid.New()
	}
	return nil
}
