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

type createOrderRequest struct {
	ServiceID    string  `json:"serviceId" binding:"required"`
	ServiceName  string  `json:"serviceName"`
	ServicePrice float64 `json:"servicePrice"`
	ServiceUnit  string  `json:"serviceUnit"`
	Quantity     int     `json:"quantity"`
	TotalPrice   float64 `json:"totalPrice"`
	PickupDate   string  `json:"pickupDate" binding:"required"`
	DeliveryDate string  `json:"deliveryDate" binding:"required"`
	TimeSlot     string  `json:"timeSlot" binding:"required"`
	AddressID    string  `json:"addressId" binding:"required"`
	AddressText  string  `json:"addressText" binding:"required"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

// parseOrderDate accepts a plain date or a full RFC 3339 timestamp.
func parseOrderDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", trimmed)
}

func buildOrderFromRequest(req createOrderRequest, userID primitive.ObjectID, now time.Time) (models.Order, error) {
	pickupDate, err := parseOrderDate(req.PickupDate)
	if err != nil {
		return models.Order{}, errors.New("invalid pickupDate")
	}

	deliveryDate, err := parseOrderDate(req.DeliveryDate)
	if err != nil {
		return models.Order{}, errors.New("invalid deliveryDate")
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	order := models.Order{
		UserID:        userID,
		ServiceID:     strings.TrimSpace(req.ServiceID),
		ServiceName:   strings.TrimSpace(req.ServiceName),
		ServicePrice:  req.ServicePrice,
		ServiceUnit:   strings.TrimSpace(req.ServiceUnit),
		Quantity:      quantity,
		TotalPrice:    req.TotalPrice,
		AssignedRider: nil,
		RiderLocation: models.GeoPoint{Type: "Point", Coordinates: []float64{0, 0}},
		PickupDate:    pickupDate,
		DeliveryDate:  deliveryDate,
		TimeSlot:      strings.TrimSpace(req.TimeSlot),
		AddressID:     strings.TrimSpace(req.AddressID),
		AddressText:   strings.TrimSpace(req.AddressText),
		CreatedAt:     now,
	}
	order.SetStatus(models.StatusScheduled, now)

	return order, nil
}

func CreateOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders"
		defer handlePanic(c, route)

		userID, ok := callerID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "Not authorized: user not authenticated")
			return
		}
		if userID.IsZero() {
			respondError(c, http.StatusBadRequest, route, "Invalid user ID")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		order, err := buildOrderFromRequest(req, userID, time.Now())
		if err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("orders").InsertOne(ctx, order)
		if err != nil {
			log.Println("[ORDER] [ERROR] insert failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			order.ID = id
		}

		log.Println("[ORDER] [INFO] order created for user:", userID.Hex())
		respondData(c, http.StatusCreated, order)
	}
}

func GetUserOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders"
		defer handlePanic(c, route)

		userID, ok := callerID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "Not authorized: user not authenticated")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, bson.M{"userId": userID}, findOptions)
		if err != nil {
			log.Println("[ORDER] [ERROR] list failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			log.Println("[ORDER] [ERROR] decode failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondList(c, len(orders), orders)
	}
}

// findOrderForCaller loads an order and enforces ownership when a caller is
// attached to the request. Requests without a caller are tolerated; see the
// note on the order routes in main.go.
func findOrderForCaller(ctx context.Context, db *mongo.Database, c *gin.Context, route, idParam string) (models.Order, bool) {
	orderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(idParam))
	if err != nil {
		respondError(c, http.StatusBadRequest, route, "invalid order id")
		return models.Order{}, false
	}

	var order models.Order
	if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "Order not found")
			return models.Order{}, false
		}
		log.Println("[ORDER] [ERROR] lookup failed:", err)
		respondError(c, http.StatusInternalServerError, route, "db error")
		return models.Order{}, false
	}

	if caller, ok := callerID(c); ok && order.UserID != caller {
		respondError(c, http.StatusUnauthorized, route, "Not authorized to access this order")
		return models.Order{}, false
	}

	return order, true
}

func GetOrderByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/:id"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, ok := findOrderForCaller(ctx, db, c, route, c.Param("id"))
		if !ok {
			return
		}

		respondData(c, http.StatusOK, order)
	}
}

func UpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/orders/:id/status"
		defer handlePanic(c, route)

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Status) == "" {
			respondError(c, http.StatusBadRequest, route, "Please provide a status")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, ok := findOrderForCaller(ctx, db, c, route, c.Param("id"))
		if !ok {
			return
		}

		// Any status string is accepted here; there is no enforced transition
		// graph. Cancellation is the only guarded move and has its own
		// endpoint.
		order.SetStatus(strings.TrimSpace(req.Status), time.Now())

		_, err := db.Collection("orders").UpdateByID(ctx, order.ID, bson.M{
			"$set": bson.M{
				"status":           order.Status,
				"statusTimestamps": order.StatusTimestamps,
				"updatedAt":        order.UpdatedAt,
			},
		})
		if err != nil {
			log.Println("[ORDER] [ERROR] status update failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[ORDER] [INFO] order", order.ID.Hex(), "status set to", order.Status)
		respondData(c, http.StatusOK, order)
	}
}

func CancelOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/orders/:id"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, ok := findOrderForCaller(ctx, db, c, route, c.Param("id"))
		if !ok {
			return
		}

		if !order.CanCancel() {
			respondError(c, http.StatusBadRequest, route, "Order cannot be cancelled at this stage")
			return
		}

		order.SetStatus(models.StatusCancelled, time.Now())

		_, err := db.Collection("orders").UpdateByID(ctx, order.ID, bson.M{
			"$set": bson.M{
				"status":           order.Status,
				"statusTimestamps": order.StatusTimestamps,
				"updatedAt":        order.UpdatedAt,
			},
		})
		if err != nil {
			log.Println("[ORDER] [ERROR] cancel failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[ORDER] [INFO] order cancelled:", order.ID.Hex())
		respondData(c, http.StatusOK, gin.H{})
	}
}

type rateOrderRequest struct {
	Rating int    `json:"rating" binding:"required"`
	Review string `json:"review"`
}

// RateOrder lets the order's owner rate the rider who delivered it.
func RateOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders/:id/rating"
		defer handlePanic(c, route)

		var req rateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if req.Rating < 1 || req.Rating > 5 {
			respondError(c, http.StatusBadRequest, route, "rating must be between 1 and 5")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, ok := findOrderForCaller(ctx, db, c, route, c.Param("id"))
		if !ok {
			return
		}

		if order.Status != models.StatusDelivered {
			respondError(c, http.StatusBadRequest, route, "only delivered orders can be rated")
			return
		}
		if order.AssignedRider == nil {
			respondError(c, http.StatusBadRequest, route, "order has no assigned rider")
			return
		}

		var rider models.Rider
		if err := db.Collection("riders").FindOne(ctx, bson.M{"_id": *order.AssignedRider}).Decode(&rider); err != nil {
			log.Println("[ORDER] [ERROR] rider lookup failed:", err)
			respondError(c, http.StatusNotFound, route, "Rider not found")
			return
		}

		for _, rating := range rider.Ratings {
			if rating.OrderID == order.ID {
				respondError(c, http.StatusBadRequest, route, "order already rated")
				return
			}
		}

		rider.Ratings = append(rider.Ratings, models.RiderRating{
			OrderID:   order.ID,
			Rating:    req.Rating,
			Review:    strings.TrimSpace(req.Review),
			CreatedAt: time.Now(),
		})
		rider.RecalculateAverageRating()

		_, err := db.Collection("riders").UpdateByID(ctx, rider.ID, bson.M{
			"$set": bson.M{
				"ratings":       rider.Ratings,
				"averageRating": rider.AverageRating,
				"updatedAt":     time.Now(),
			},
		})
		if err != nil {
			log.Println("[ORDER] [ERROR] rating update failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[ORDER] [INFO] order rated:", order.ID.Hex())
		respondData(c, http.StatusCreated, gin.H{"averageRating": rider.AverageRating})
	}
}
