package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service units the catalog accepts.
const (
	UnitKg    = "kg"
	UnitPiece = "piece"
	UnitItem  = "item"
)

// ValidServiceUnit reports whether value is an accepted pricing unit.
func ValidServiceUnit(value string) bool {
	return value == UnitKg || value == UnitPiece || value == UnitItem
}

// Service is a laundry catalog entry. Orders snapshot its name, price and unit
// at creation time instead of referencing it.
type Service struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name        string              `bson:"name" json:"name"`
	Price       float64             `bson:"price" json:"price"`
	Unit        string              `bson:"unit" json:"unit"`
	Color       string              `bson:"color" json:"color"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	CreatedBy   *primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}
