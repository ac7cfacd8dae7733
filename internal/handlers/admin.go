package handlers

import (
	"context"
	"fmt"
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

// logAdminAction appends an audit record. Best-effort: a failed write is
// logged and the request proceeds.
func logAdminAction(c *gin.Context, db *mongo.Database, action string, details bson.M) {
	adminID, ok := callerID(c)
	if !ok {
		return
	}

	entry := models.AdminLog{
		AdminID:   adminID,
		Action:    action,
		Details:   details,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Timestamp: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.Collection("admin_logs").InsertOne(ctx, entry); err != nil {
		log.Println("[ADMIN] [ERROR] audit log write failed:", err)
	}
}

func Dashboard(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/dashboard"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		orders := db.Collection("orders")

		totalOrders, err := orders.CountDocuments(ctx, bson.M{})
		if err != nil {
			log.Println("[ADMIN] [ERROR] dashboard count failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		pendingOrders, err := orders.CountDocuments(ctx, bson.M{
			"status": bson.M{"$in": []string{
				models.StatusScheduled,
				models.StatusPickedUp,
				models.StatusInProcess,
				models.StatusOutForDelivery,
			}},
		})
		if err != nil {
			log.Println("[ADMIN] [ERROR] dashboard pending count failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		completedOrders, err := orders.CountDocuments(ctx, bson.M{"status": models.StatusDelivered})
		if err != nil {
			log.Println("[ADMIN] [ERROR] dashboard completed count failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		// Revenue is the sum of totalPrice over delivered orders.
		pipeline := mongo.Pipeline{
			{{Key: "$match", Value: bson.M{"status": models.StatusDelivered}}},
			{{Key: "$group", Value: bson.M{
				"_id":          nil,
				"totalRevenue": bson.M{"$sum": "$totalPrice"},
			}}},
		}
		cursor, err := orders.Aggregate(ctx, pipeline)
		if err != nil {
			log.Println("[ADMIN] [ERROR] dashboard revenue aggregate failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		revenue := 0.0
		var revenueRows []struct {
			TotalRevenue float64 `bson:"totalRevenue"`
		}
		if err := cursor.All(ctx, &revenueRows); err != nil {
			log.Println("[ADMIN] [ERROR] dashboard revenue decode failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if len(revenueRows) > 0 {
			revenue = revenueRows[0].TotalRevenue
		}

		totalUsers, err := db.Collection("users").CountDocuments(ctx, bson.M{"role": models.RoleUser})
		if err != nil {
			log.Println("[ADMIN] [ERROR] dashboard user count failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondData(c, http.StatusOK, gin.H{
			"totalOrders":     totalOrders,
			"pendingOrders":   pendingOrders,
			"completedOrders": completedOrders,
			"revenue":         revenue,
			"totalUsers":      totalUsers,
		})
	}
}

func AdminGetUsers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/users"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid pagination params")
			return
		}

		filter := bson.M{"role": models.RoleUser}
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			pattern := primitive.Regex{Pattern: search, Options: "i"}
			filter["$or"] = []bson.M{
				{"name": pattern},
				{"email": pattern},
				{"phoneNumber": pattern},
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("users").CountDocuments(ctx, filter)
		if err != nil {
			log.Println("[ADMIN] [ERROR] users count failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		cursor, err := db.Collection("users").Find(ctx, filter, findOptions)
		if err != nil {
			log.Println("[ADMIN] [ERROR] users list failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		users := make([]models.User, 0)
		if err := cursor.All(ctx, &users); err != nil {
			log.Println("[ADMIN] [ERROR] users decode failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"count":   len(users),
			"pagination": gin.H{
				"total": total,
				"page":  page,
				"pages": totalPages(total, limit),
			},
			"data": users,
		})
	}
}

func AdminGetOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/orders"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid pagination params")
			return
		}

		filter := bson.M{}
		if status := strings.TrimSpace(c.Query("status")); status != "" {
			filter["status"] = status
		}
		if userIDValue := strings.TrimSpace(c.Query("userId")); userIDValue != "" {
			userID, err := primitive.ObjectIDFromHex(userIDValue)
			if err != nil {
				respondError(c, http.StatusBadRequest, route, "invalid userId")
				return
			}
			filter["userId"] = userID
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("orders").CountDocuments(ctx, filter)
		if err != nil {
			log.Println("[ADMIN] [ERROR] orders count failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		cursor, err := db.Collection("orders").Find(ctx, filter, findOptions)
		if err != nil {
			log.Println("[ADMIN] [ERROR] orders list failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			log.Println("[ADMIN] [ERROR] orders decode failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"count":   len(orders),
			"pagination": gin.H{
				"total": total,
				"page":  page,
				"pages": totalPages(total, limit),
			},
			"data": orders,
		})
	}
}

// AdminUpdateOrderStatus sets any status on any order. Moving an assigned
// order into a terminal status releases it from its rider.
func AdminUpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/orders/:id/status"
		defer handlePanic(c, route)

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Status) == "" {
			respondError(c, http.StatusBadRequest, route, "Please provide a status")
			return
		}
		status := strings.TrimSpace(req.Status)

		orderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid order id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, route, "Order not found")
				return
			}
			log.Println("[ADMIN] [ERROR] order lookup failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		previousStatus := order.Status
		order.SetStatus(status, time.Now())

		_, err = db.Collection("orders").UpdateByID(ctx, order.ID, bson.M{
			"$set": bson.M{
				"status":           order.Status,
				"statusTimestamps": order.StatusTimestamps,
				"updatedAt":        order.UpdatedAt,
			},
		})
		if err != nil {
			log.Println("[ADMIN] [ERROR] order status update failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if order.AssignedRider != nil && models.IsTerminal(order.Status) {
			releaseOrderFromRider(ctx, db, *order.AssignedRider, order.ID)
		}

		logAdminAction(c, db, models.ActionUpdateOrderStatus, bson.M{
			"orderId": order.ID,
			"from":    previousStatus,
			"to":      order.Status,
		})

		log.Println("[ADMIN] [INFO] order", order.ID.Hex(), "status set to", order.Status)
		respondData(c, http.StatusOK, order)
	}
}

// releaseOrderFromRider takes a finished order off the rider's books.
// Best-effort relative to the already-committed order write.
func releaseOrderFromRider(ctx context.Context, db *mongo.Database, riderID, orderID primitive.ObjectID) {
	var rider models.Rider
	if err := db.Collection("riders").FindOne(ctx, bson.M{"_id": riderID}).Decode(&rider); err != nil {
		log.Println("[ADMIN] [ERROR] rider release lookup failed:", err)
		return
	}

	rider.ReleaseOrder(orderID, time.Now())

	_, err := db.Collection("riders").UpdateByID(ctx, rider.ID, bson.M{
		"$set": bson.M{
			"assignedOrders":   rider.AssignedOrders,
			"currentOrder":     rider.CurrentOrder,
			"activeOrderCount": rider.ActiveOrderCount,
			"status":           rider.Status,
			"updatedAt":        rider.UpdatedAt,
		},
	})
	if err != nil {
		log.Println("[ADMIN] [ERROR] rider release update failed:", err)
	}
}

type assignRiderRequest struct {
	RiderID string `json:"riderId" binding:"required"`
}

// AssignRider attaches a rider to an order and marks the rider busy.
func AssignRider(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/orders/:id/assign"
		defer handlePanic(c, route)

		var req assignRiderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		orderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid order id")
			return
		}

		riderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.RiderID))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid riderId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, route, "Order not found")
				return
			}
			log.Println("[ADMIN] [ERROR] order lookup failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if models.IsTerminal(order.Status) {
			respondError(c, http.StatusBadRequest, route, "cannot assign a rider to a finished order")
			return
		}

		var rider models.Rider
		if err := db.Collection("riders").FindOne(ctx, bson.M{"_id": riderID}).Decode(&rider); err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, route, "Rider not found")
				return
			}
			log.Println("[ADMIN] [ERROR] rider lookup failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if rider.Status == models.RiderOffline {
			respondError(c, http.StatusBadRequest, route, "rider is offline")
			return
		}

		now := time.Now()
		order.SetAssignedRider(&rider.ID, now)
		rider.AssignOrder(order.ID, now)

		_, err = db.Collection("orders").UpdateByID(ctx, order.ID, bson.M{
			"$set": bson.M{
				"assignedRider": order.AssignedRider,
				"isAssigned":    order.IsAssigned,
				"assignedAt":    order.AssignedAt,
				"updatedAt":     order.UpdatedAt,
			},
		})
		if err != nil {
			log.Println("[ADMIN] [ERROR] order assign update failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		_, err = db.Collection("riders").UpdateByID(ctx, rider.ID, bson.M{
			"$set": bson.M{
				"assignedOrders":   rider.AssignedOrders,
				"currentOrder":     rider.CurrentOrder,
				"activeOrderCount": rider.ActiveOrderCount,
				"status":           rider.Status,
				"updatedAt":        rider.UpdatedAt,
			},
		})
		if err != nil {
			log.Println("[ADMIN] [ERROR] rider assign update failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		logAdminAction(c, db, models.ActionAssignDeliveryAgent, bson.M{
			"orderId": order.ID,
			"riderId": rider.ID,
		})

		log.Println("[ADMIN] [INFO] order", order.ID.Hex(), "assigned to rider", rider.ID.Hex())
		respondData(c, http.StatusOK, order)
	}
}

type sendNotificationRequest struct {
	UserID  string `json:"userId"`
	Title   string `json:"title" binding:"required"`
	Message string `json:"message" binding:"required"`
	Type    string `json:"type"`
}

func SendNotification(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/notifications"
		defer handlePanic(c, route)

		adminID, ok := callerID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req sendNotificationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		notificationType := strings.TrimSpace(req.Type)
		if notificationType == "" {
			notificationType = "info"
		}
		if !models.ValidNotificationType(notificationType) {
			respondError(c, http.StatusBadRequest, route, "type must be info, warning, success or error")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		// Absent userId means broadcast.
		var targetID *primitive.ObjectID
		if userIDValue := strings.TrimSpace(req.UserID); userIDValue != "" {
			userID, err := primitive.ObjectIDFromHex(userIDValue)
			if err != nil {
				respondError(c, http.StatusBadRequest, route, "invalid userId")
				return
			}
			count, err := db.Collection("users").CountDocuments(ctx, bson.M{"_id": userID})
			if err != nil {
				log.Println("[ADMIN] [ERROR] notification target lookup failed:", err)
				respondError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			if count == 0 {
				respondError(c, http.StatusNotFound, route, "User not found")
				return
			}
			targetID = &userID
		}

		notification := models.Notification{
			UserID:    targetID,
			Title:     strings.TrimSpace(req.Title),
			Message:   strings.TrimSpace(req.Message),
			Type:      notificationType,
			IsRead:    false,
			CreatedBy: adminID,
			CreatedAt: time.Now(),
		}

		res, err := db.Collection("notifications").InsertOne(ctx, notification)
		if err != nil {
			log.Println("[ADMIN] [ERROR] notification insert failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			notification.ID = id
		}

		target := "broadcast"
		if targetID != nil {
			target = targetID.Hex()
		}
		logAdminAction(c, db, models.ActionSendNotification, bson.M{
			"notificationId": notification.ID,
			"userId":         target,
			"title":          notification.Title,
		})

		log.Println("[ADMIN] [INFO] notification sent to:", target)
		respondData(c, http.StatusCreated, notification)
	}
}

// GenerateInvoice assembles the data an invoice is rendered from.
func GenerateInvoice(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/orders/:id/invoice"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid order id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, route, "Order not found")
				return
			}
			log.Println("[ADMIN] [ERROR] invoice order lookup failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": order.UserID}).Decode(&user); err != nil {
			respondError(c, http.StatusNotFound, route, "User not found")
			return
		}

		logAdminAction(c, db, models.ActionGenerateInvoice, bson.M{
			"orderId": order.ID,
			"userId":  order.UserID,
		})

		hex := order.ID.Hex()
		invoiceNumber := fmt.Sprintf("INV-%s", strings.ToUpper(hex[len(hex)-6:]))

		respondData(c, http.StatusOK, gin.H{
			"order": order,
			"user": gin.H{
				"name":        user.Name,
				"email":       user.Email,
				"phoneNumber": user.PhoneNumber,
			},
			"company": gin.H{
				"name":    "Whites & Brights Laundry",
				"address": "Your Company Address",
				"phone":   "Your Company Phone",
				"email":   "Your Company Email",
			},
			"invoiceNumber": invoiceNumber,
			"invoiceDate":   time.Now(),
		})
	}
}
