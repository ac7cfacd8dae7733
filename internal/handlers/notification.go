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
	"go.mongodb.org/mongo-driver/mongo/options"

	"laundry/internal/models"
)

// GetNotifications lists the caller's notifications plus broadcasts, newest
// first.
func GetNotifications(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/notifications"
		defer handlePanic(c, route)

		userID, ok := callerID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		filter := bson.M{"$or": []bson.M{
			{"userId": userID},
			{"userId": nil},
		}}
		findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("notifications").Find(ctx, filter, findOptions)
		if err != nil {
			log.Println("[NOTIFICATION] [ERROR] list failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		notifications := make([]models.Notification, 0)
		if err := cursor.All(ctx, &notifications); err != nil {
			log.Println("[NOTIFICATION] [ERROR] decode failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		// Broadcasts carry read state per-user; resolve it for the caller.
		for i := range notifications {
			notifications[i].IsRead = notifications[i].ReadByUser(userID)
		}

		respondList(c, len(notifications), notifications)
	}
}

// MarkNotificationRead marks one of the caller's notifications as read.
// Targeted notifications flip their own isRead flag; broadcasts record the
// caller in readBy so one user's read does not hide the broadcast from
// everyone else.
func MarkNotificationRead(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/notifications/:id/read"
		defer handlePanic(c, route)

		userID, ok := callerID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		notificationID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid notification id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("notifications").UpdateOne(ctx, bson.M{
			"_id":    notificationID,
			"userId": userID,
		}, bson.M{"$set": bson.M{"isRead": true}})
		if err != nil {
			log.Println("[NOTIFICATION] [ERROR] mark read failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			res, err = db.Collection("notifications").UpdateOne(ctx, bson.M{
				"_id":    notificationID,
				"userId": nil,
			}, bson.M{"$addToSet": bson.M{"readBy": userID}})
			if err != nil {
				log.Println("[NOTIFICATION] [ERROR] broadcast mark read failed:", err)
				respondError(c, http.StatusInternalServerError, route, "db error")
				return
			}
		}
		if res.MatchedCount == 0 {
			respondError(c, http.StatusNotFound, route, "Notification not found")
			return
		}

		respondData(c, http.StatusOK, gin.H{})
	}
}
