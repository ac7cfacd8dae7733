package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user account can hold.
const (
	RoleUser  = "user"
	RoleRider = "rider"
	RoleAdmin = "admin"
)

// Address is a single address entry embedded in the owning user document.
// Addresses never live outside their user, which keeps the default-address
// invariant enforceable with a single document write.
type Address struct {
	ID           string    `bson:"id" json:"id"`
	AddressLine1 string    `bson:"addressLine1" json:"addressLine1"`
	AddressLine2 string    `bson:"addressLine2,omitempty" json:"addressLine2,omitempty"`
	City         string    `bson:"city" json:"city"`
	State        string    `bson:"state" json:"state"`
	Pincode      string    `bson:"pincode" json:"pincode"`
	Country      string    `bson:"country" json:"country"`
	Label        string    `bson:"label" json:"label"`
	IsDefault    bool      `bson:"isDefault" json:"isDefault"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// User represents the application user account.
type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Email           string             `bson:"email" json:"email"`
	PasswordHash    string             `bson:"passwordHash" json:"-"`
	PhoneNumber     string             `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	ProfileImageURL string             `bson:"profileImageUrl,omitempty" json:"profileImageUrl,omitempty"`
	Role            string             `bson:"role" json:"role"`
	Addresses       []Address          `bson:"addresses" json:"addresses"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
