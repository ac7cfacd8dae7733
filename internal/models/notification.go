package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is a message for a single user, or a broadcast when UserID is
// nil. A targeted notification tracks read state in IsRead; a broadcast is
// shared between all users, so its read state lives per-user in ReadBy.
type Notification struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID    *primitive.ObjectID  `bson:"userId" json:"userId"`
	Title     string               `bson:"title" json:"title"`
	Message   string               `bson:"message" json:"message"`
	Type      string               `bson:"type" json:"type"`
	IsRead    bool                 `bson:"isRead" json:"isRead"`
	ReadBy    []primitive.ObjectID `bson:"readBy,omitempty" json:"-"`
	CreatedBy primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
}

// IsBroadcast reports whether the notification targets every user.
func (n *Notification) IsBroadcast() bool {
	return n.UserID == nil
}

// ReadByUser reports whether userID has read this notification.
func (n *Notification) ReadByUser(userID primitive.ObjectID) bool {
	if !n.IsBroadcast() {
		return n.IsRead
	}
	for _, id := range n.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}

// ValidNotificationType reports whether value is an accepted notification type.
func ValidNotificationType(value string) bool {
	switch value {
	case "info", "warning", "success", "error":
		return true
	}
	return false
}
