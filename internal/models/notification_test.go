package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestValidNotificationType(t *testing.T) {
	for _, value := range []string{"info", "warning", "success", "error"} {
		if !ValidNotificationType(value) {
			t.Fatalf("expected %s to be valid", value)
		}
	}
	if ValidNotificationType("urgent") {
		t.Fatal("expected unknown type to be rejected")
	}
}

func TestReadByUserTargeted(t *testing.T) {
	userID := primitive.NewObjectID()
	notification := Notification{UserID: &userID}

	if notification.IsBroadcast() {
		t.Fatal("expected targeted notification not to be a broadcast")
	}
	if notification.ReadByUser(userID) {
		t.Fatal("expected targeted notification to start unread")
	}

	notification.IsRead = true
	if !notification.ReadByUser(userID) {
		t.Fatal("expected targeted notification to follow isRead")
	}
}

func TestReadByUserBroadcastIsPerUser(t *testing.T) {
	reader := primitive.NewObjectID()
	other := primitive.NewObjectID()
	broadcast := Notification{UserID: nil, ReadBy: []primitive.ObjectID{reader}}

	if !broadcast.IsBroadcast() {
		t.Fatal("expected nil userId to mean broadcast")
	}
	if !broadcast.ReadByUser(reader) {
		t.Fatal("expected broadcast to be read for a user in readBy")
	}
	if broadcast.ReadByUser(other) {
		t.Fatal("expected broadcast to stay unread for other users")
	}

	// The shared isRead flag never decides a broadcast's per-user state.
	broadcast.IsRead = true
	if broadcast.ReadByUser(other) {
		t.Fatal("expected per-user read state to ignore the shared flag")
	}
}
