package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"laundry/internal/models"
)

type serviceRequest struct {
	Name        string  `json:"name" binding:"required"`
	Price       float64 `json:"price" binding:"required"`
	Unit        string  `json:"unit"`
	Color       string  `json:"color"`
	Description string  `json:"description"`
}

func GetServices(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/services"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("services").Find(ctx, bson.M{})
		if err != nil {
			log.Println("[SERVICE] [ERROR] list failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		services := make([]models.Service, 0)
		if err := cursor.All(ctx, &services); err != nil {
			log.Println("[SERVICE] [ERROR] decode failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondList(c, len(services), services)
	}
}

func GetService(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/services/:id"
		defer handlePanic(c, route)

		serviceID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid service id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var service models.Service
		if err := db.Collection("services").FindOne(ctx, bson.M{"_id": serviceID}).Decode(&service); err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, route, "Service not found")
				return
			}
			log.Println("[SERVICE] [ERROR] lookup failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondData(c, http.StatusOK, service)
	}
}

func CreateService(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/services"
		defer handlePanic(c, route)

		var req serviceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		unit := strings.TrimSpace(req.Unit)
		if unit == "" {
			unit = models.UnitKg
		}
		if !models.ValidServiceUnit(unit) {
			respondError(c, http.StatusBadRequest, route, "unit must be kg, piece or item")
			return
		}

		color := strings.TrimSpace(req.Color)
		if color == "" {
			color = "#2196F3"
		}

		now := time.Now()
		service := models.Service{
			Name:        strings.TrimSpace(req.Name),
			Price:       req.Price,
			Unit:        unit,
			Color:       color,
			Description: strings.TrimSpace(req.Description),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if creator, ok := callerID(c); ok {
			service.CreatedBy = &creator
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("services").InsertOne(ctx, service)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondError(c, http.StatusBadRequest, route, "Service name already exists")
				return
			}
			log.Println("[SERVICE] [ERROR] insert failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			service.ID = id
		}

		logAdminAction(c, db, models.ActionCreateService, bson.M{
			"serviceId":   service.ID,
			"serviceName": service.Name,
		})

		log.Println("[SERVICE] [INFO] service created:", service.Name)
		respondData(c, http.StatusCreated, service)
	}
}

func UpdateService(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/services/:id"
		defer handlePanic(c, route)

		serviceID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid service id")
			return
		}

		var req serviceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		unit := strings.TrimSpace(req.Unit)
		if unit != "" && !models.ValidServiceUnit(unit) {
			respondError(c, http.StatusBadRequest, route, "unit must be kg, piece or item")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existing models.Service
		if err := db.Collection("services").FindOne(ctx, bson.M{"_id": serviceID}).Decode(&existing); err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, route, "Service not found")
				return
			}
			log.Println("[SERVICE] [ERROR] lookup failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		update := bson.M{
			"name":        strings.TrimSpace(req.Name),
			"price":       req.Price,
			"description": strings.TrimSpace(req.Description),
			"updatedAt":   time.Now(),
		}
		if unit != "" {
			update["unit"] = unit
		}
		if color := strings.TrimSpace(req.Color); color != "" {
			update["color"] = color
		}

		if _, err := db.Collection("services").UpdateByID(ctx, serviceID, bson.M{"$set": update}); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondError(c, http.StatusBadRequest, route, "Service name already exists")
				return
			}
			log.Println("[SERVICE] [ERROR] update failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		var service models.Service
		if err := db.Collection("services").FindOne(ctx, bson.M{"_id": serviceID}).Decode(&service); err != nil {
			log.Println("[SERVICE] [ERROR] reload failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		logAdminAction(c, db, models.ActionUpdateService, bson.M{
			"serviceId":   service.ID,
			"serviceName": service.Name,
			"changes": bson.M{
				"name":  bson.M{"from": existing.Name, "to": service.Name},
				"price": bson.M{"from": existing.Price, "to": service.Price},
			},
		})

		log.Println("[SERVICE] [INFO] service updated:", service.Name)
		respondData(c, http.StatusOK, service)
	}
}

func DeleteService(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/services/:id"
		defer handlePanic(c, route)

		serviceID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid service id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var service models.Service
		if err := db.Collection("services").FindOne(ctx, bson.M{"_id": serviceID}).Decode(&service); err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, route, "Service not found")
				return
			}
			log.Println("[SERVICE] [ERROR] lookup failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if _, err := db.Collection("services").DeleteOne(ctx, bson.M{"_id": serviceID}); err != nil {
			log.Println("[SERVICE] [ERROR] delete failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		logAdminAction(c, db, models.ActionDeleteService, bson.M{
			"serviceId":   serviceID,
			"serviceName": service.Name,
		})

		log.Println("[SERVICE] [INFO] service deleted:", service.Name)
		respondData(c, http.StatusOK, gin.H{})
	}
}
