package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"laundry/internal/models"
)

type addressRequest struct {
	AddressLine1 string `json:"addressLine1" binding:"required"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state" binding:"required"`
	Pincode      string `json:"pincode" binding:"required"`
	Country      string `json:"country"`
	Label        string `json:"label"`
	IsDefault    bool   `json:"isDefault"`
}

func loadUser(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) (models.User, error) {
	var user models.User
	err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	return user, err
}

func saveAddresses(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, addresses []models.Address) error {
	_, err := db.Collection("users").UpdateByID(ctx, userID, bson.M{
		"$set": bson.M{
			"addresses": addresses,
			"updatedAt": time.Now(),
		},
	})
	return err
}

func CreateAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/addresses"
		defer handlePanic(c, route)

		userID, ok := callerID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := loadUser(ctx, db, userID)
		if err != nil {
			log.Println("[ADDRESS] [ERROR] user not found:", err)
			respondError(c, http.StatusNotFound, route, "user not found")
			return
		}

		// The first address is always the default.
		isDefault := resolveDefaultFlag(req.IsDefault, len(user.Addresses))
		if isDefault {
			unsetDefaults(user.Addresses)
		}

		country := strings.TrimSpace(req.Country)
		if country == "" {
			country = "India"
		}
		label := strings.TrimSpace(req.Label)
		if label == "" {
			label = "home"
		}

		now := time.Now()
		address := models.Address{
			ID:           uuid.NewString(),
			AddressLine1: strings.TrimSpace(req.AddressLine1),
			AddressLine2: strings.TrimSpace(req.AddressLine2),
			City:         strings.TrimSpace(req.City),
			State:        strings.TrimSpace(req.State),
			Pincode:      strings.TrimSpace(req.Pincode),
			Country:      country,
			Label:        label,
			IsDefault:    isDefault,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		user.Addresses = append(user.Addresses, address)

		if err := saveAddresses(ctx, db, userID, user.Addresses); err != nil {
			log.Println("[ADDRESS] [ERROR] insert address failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[ADDRESS] [INFO] address created:", address.ID)
		respondData(c, http.StatusCreated, address)
	}
}

func GetAddresses(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/addresses"
		defer handlePanic(c, route)

		userID, ok := callerID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := loadUser(ctx, db, userID)
		if err != nil {
			log.Println("[ADDRESS] [ERROR] get addresses failed:", err)
			respondError(c, http.StatusNotFound, route, "user not found")
			return
		}

		sorted := sortDefaultFirst(user.Addresses)
		respondList(c, len(sorted), sorted)
	}
}

func GetAddressByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/addresses/:id"
		defer handlePanic(c, route)

		userID, ok := callerID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		addressID := strings.TrimSpace(c.Param("id"))
		if addressID == "" {
			respondError(c, http.StatusBadRequest, route, "invalid address id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := loadUser(ctx, db, userID)
		if err != nil {
			log.Println("[ADDRESS] [ERROR] user not found:", err)
			respondError(c, http.StatusNotFound, route, "user not found")
			return
		}

		index := findAddressIndex(user.Addresses, addressID)
		if index == -1 {
			respondError(c, http.StatusNotFound, route, "Address not found")
			return
		}

		respondData(c, http.StatusOK, user.Addresses[index])
	}
}

func UpdateAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/addresses/:id"
		defer handlePanic(c, route)

		userID, ok := callerID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		addressID := strings.TrimSpace(c.Param("id"))
		if addressID == "" {
			respondError(c, http.StatusBadRequest, route, "invalid address id")
			return
		}

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := loadUser(ctx, db, userID)
		if err != nil {
			log.Println("[ADDRESS] [ERROR] user not found:", err)
			respondError(c, http.StatusNotFound, route, "user not found")
			return
		}

		index := findAddressIndex(user.Addresses, addressID)
		if index == -1 {
			respondError(c, http.StatusNotFound, route, "Address not found")
			return
		}

		if req.IsDefault {
			unsetDefaults(user.Addresses)
		}

		address := &user.Addresses[index]
		address.AddressLine1 = strings.TrimSpace(req.AddressLine1)
		address.AddressLine2 = strings.TrimSpace(req.AddressLine2)
		address.City = strings.TrimSpace(req.City)
		address.State = strings.TrimSpace(req.State)
		address.Pincode = strings.TrimSpace(req.Pincode)
		if country := strings.TrimSpace(req.Country); country != "" {
			address.Country = country
		}
		if label := strings.TrimSpace(req.Label); label != "" {
			address.Label = label
		}
		// An update can set the default but never unset it; deleting or adding
		// another default is how the flag moves away.
		address.IsDefault = req.IsDefault || address.IsDefault
		address.UpdatedAt = time.Now()

		if err := saveAddresses(ctx, db, userID, user.Addresses); err != nil {
			log.Println("[ADDRESS] [ERROR] update address failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[ADDRESS] [INFO] address updated:", addressID)
		respondData(c, http.StatusOK, user.Addresses[index])
	}
}

func DeleteAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/addresses/:id"
		defer handlePanic(c, route)

		userID, ok := callerID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		addressID := strings.TrimSpace(c.Param("id"))
		if addressID == "" {
			respondError(c, http.StatusBadRequest, route, "invalid address id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := loadUser(ctx, db, userID)
		if err != nil {
			log.Println("[ADDRESS] [ERROR] user not found:", err)
			respondError(c, http.StatusNotFound, route, "user not found")
			return
		}

		index := findAddressIndex(user.Addresses, addressID)
		if index == -1 {
			respondError(c, http.StatusNotFound, route, "Address not found")
			return
		}

		wasDefault := user.Addresses[index].IsDefault
		user.Addresses = append(user.Addresses[:index], user.Addresses[index+1:]...)
		promoteDefaultAfterDelete(user.Addresses, wasDefault)

		if err := saveAddresses(ctx, db, userID, user.Addresses); err != nil {
			log.Println("[ADDRESS] [ERROR] delete address failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[ADDRESS] [INFO] address deleted:", addressID)
		respondData(c, http.StatusOK, gin.H{})
	}
}
