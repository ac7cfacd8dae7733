package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"laundry/internal/models"
)

type createRiderRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type updateRiderStatusRequest struct {
	Status string `json:"status"`
}

type updateRiderLocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type riderUserNotFoundError struct {
	UserID primitive.ObjectID
}

func (e riderUserNotFoundError) Error() string {
	return "user not found"
}

type duplicateRiderError struct {
	UserID primitive.ObjectID
}

func (e duplicateRiderError) Error() string {
	return "user is already a rider"
}

// findRiderForCaller loads a rider and enforces that a rider-role caller only
// touches their own record. Admins pass through.
func findRiderForCaller(ctx context.Context, db *mongo.Database, c *gin.Context, route, idParam string) (models.Rider, bool) {
	riderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(idParam))
	if err != nil {
		respondError(c, http.StatusBadRequest, route, "invalid rider id")
		return models.Rider{}, false
	}

	var rider models.Rider
	if err := db.Collection("riders").FindOne(ctx, bson.M{"_id": riderID}).Decode(&rider); err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "Rider not found")
			return models.Rider{}, false
		}
		log.Println("[RIDER] [ERROR] lookup failed:", err)
		respondError(c, http.StatusInternalServerError, route, "db error")
		return models.Rider{}, false
	}

	if callerRole(c) == models.RoleRider {
		caller, ok := callerID(c)
		if !ok || rider.UserID != caller {
			respondError(c, http.StatusForbidden, route, "Not authorized to access this rider profile")
			return models.Rider{}, false
		}
	}

	return rider, true
}

func GetRiders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/riders"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("riders").Find(ctx, bson.M{})
		if err != nil {
			log.Println("[RIDER] [ERROR] list failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		riders := make([]models.Rider, 0)
		if err := cursor.All(ctx, &riders); err != nil {
			log.Println("[RIDER] [ERROR] decode failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondList(c, len(riders), riders)
	}
}

func GetRider(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/riders/:id"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		rider, ok := findRiderForCaller(ctx, db, c, route, c.Param("id"))
		if !ok {
			return
		}

		respondData(c, http.StatusOK, rider)
	}
}

// CreateRider promotes an existing user to the rider role and inserts the
// rider profile in one transaction. If the insert fails the role flip is
// rolled back with it.
func CreateRider(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/riders"
		defer handlePanic(c, route)

		var req createRiderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		userID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.UserID))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid userId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		session, err := db.Client().StartSession()
		if err != nil {
			log.Println("[RIDER] [ERROR] session start failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		var rider models.Rider
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			var user models.User
			if err := db.Collection("users").FindOne(sessCtx, bson.M{"_id": userID}).Decode(&user); err != nil {
				if err == mongo.ErrNoDocuments {
					return nil, riderUserNotFoundError{UserID: userID}
				}
				return nil, err
			}

			count, err := db.Collection("riders").CountDocuments(sessCtx, bson.M{"userId": userID})
			if err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, duplicateRiderError{UserID: userID}
			}

			now := time.Now()
			_, err = db.Collection("users").UpdateByID(sessCtx, userID, bson.M{
				"$set": bson.M{"role": models.RoleRider, "updatedAt": now},
			})
			if err != nil {
				return nil, err
			}

			rider = models.Rider{
				UserID:           userID,
				Status:           models.RiderOffline,
				Location:         models.NewGeoPoint(0, 0, now),
				AssignedOrders:   []primitive.ObjectID{},
				CurrentOrder:     nil,
				ActiveOrderCount: 0,
				Ratings:          []models.RiderRating{},
				AverageRating:    0,
				CreatedAt:        now,
				UpdatedAt:        now,
			}

			res, err := db.Collection("riders").InsertOne(sessCtx, rider)
			if err != nil {
				return nil, err
			}
			if id, ok := res.InsertedID.(primitive.ObjectID); ok {
				rider.ID = id
			}
			return nil, nil
		})
		if err != nil {
			var notFoundErr riderUserNotFoundError
			if errors.As(err, &notFoundErr) {
				respondError(c, http.StatusNotFound, route, "User not found")
				return
			}
			var dupErr duplicateRiderError
			if errors.As(err, &dupErr) {
				respondError(c, http.StatusBadRequest, route, "User is already a rider")
				return
			}
			log.Println("[RIDER] [ERROR] create transaction failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[RIDER] [INFO] rider created for user:", userID.Hex())
		respondData(c, http.StatusCreated, rider)
	}
}

func UpdateRiderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/riders/:id/status"
		defer handlePanic(c, route)

		var req updateRiderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid body")
			return
		}

		status := strings.TrimSpace(req.Status)
		if !models.ValidRiderStatus(status) {
			respondError(c, http.StatusBadRequest, route, "Invalid status. Must be available, busy, or offline")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		rider, ok := findRiderForCaller(ctx, db, c, route, c.Param("id"))
		if !ok {
			return
		}

		if status == models.RiderOffline && !rider.CanGoOffline() {
			respondError(c, http.StatusBadRequest, route, "Cannot go offline with active orders")
			return
		}

		rider.Status = status
		rider.UpdatedAt = time.Now()

		_, err := db.Collection("riders").UpdateByID(ctx, rider.ID, bson.M{
			"$set": bson.M{"status": rider.Status, "updatedAt": rider.UpdatedAt},
		})
		if err != nil {
			log.Println("[RIDER] [ERROR] status update failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[RIDER] [INFO] rider", rider.ID.Hex(), "status set to", status)
		respondData(c, http.StatusOK, rider)
	}
}

func UpdateRiderLocation(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/riders/:id/location"
		defer handlePanic(c, route)

		var req updateRiderLocationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid body")
			return
		}
		if req.Latitude == nil || req.Longitude == nil {
			respondError(c, http.StatusBadRequest, route, "Latitude and longitude are required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		rider, ok := findRiderForCaller(ctx, db, c, route, c.Param("id"))
		if !ok {
			return
		}

		now := time.Now()
		rider.Location = models.NewGeoPoint(*req.Latitude, *req.Longitude, now)
		rider.UpdatedAt = now

		_, err := db.Collection("riders").UpdateByID(ctx, rider.ID, bson.M{
			"$set": bson.M{"location": rider.Location, "updatedAt": now},
		})
		if err != nil {
			log.Println("[RIDER] [ERROR] location update failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		// Mirror the coordinate onto the in-flight order. Best-effort: the
		// rider write above already succeeded and is not rolled back if this
		// one fails.
		if rider.CurrentOrder != nil {
			_, err := db.Collection("orders").UpdateByID(ctx, *rider.CurrentOrder, bson.M{
				"$set": bson.M{"riderLocation": rider.Location, "updatedAt": now},
			})
			if err != nil {
				log.Println("[RIDER] [ERROR] order location mirror failed:", err)
			}
		}

		respondData(c, http.StatusOK, rider)
	}
}

func GetRiderOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/riders/:id/orders"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		rider, ok := findRiderForCaller(ctx, db, c, route, c.Param("id"))
		if !ok {
			return
		}

		filter := bson.M{"assignedRider": rider.ID}
		if status := strings.TrimSpace(c.Query("status")); status != "" {
			filter["status"] = status
		}

		findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, filter, findOptions)
		if err != nil {
			log.Println("[RIDER] [ERROR] orders list failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			log.Println("[RIDER] [ERROR] orders decode failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondList(c, len(orders), orders)
	}
}
