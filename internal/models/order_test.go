package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSetStatusStampsEveryStatus(t *testing.T) {
	order := Order{}
	start := time.Now()

	order.SetStatus(StatusScheduled, start)
	if order.Status != StatusScheduled {
		t.Fatalf("expected status scheduled, got %s", order.Status)
	}
	if _, ok := order.StatusTimestamps[StatusScheduled]; !ok {
		t.Fatal("expected scheduled timestamp to be recorded")
	}

	later := start.Add(time.Hour)
	order.SetStatus(StatusDelivered, later)
	if order.Status != StatusDelivered {
		t.Fatalf("expected status delivered, got %s", order.Status)
	}
	if _, ok := order.StatusTimestamps[StatusDelivered]; !ok {
		t.Fatal("expected delivered timestamp to be recorded")
	}
	if _, ok := order.StatusTimestamps[StatusScheduled]; !ok {
		t.Fatal("expected scheduled timestamp to be preserved")
	}
	if !order.UpdatedAt.Equal(later) {
		t.Fatalf("expected updatedAt %v, got %v", later, order.UpdatedAt)
	}
}

func TestSetAssignedRiderKeepsFlagInSync(t *testing.T) {
	order := Order{}
	riderID := primitive.NewObjectID()
	now := time.Now()

	order.SetAssignedRider(&riderID, now)
	if !order.IsAssigned {
		t.Fatal("expected isAssigned true after assignment")
	}
	if order.AssignedAt == nil {
		t.Fatal("expected assignedAt to be set")
	}

	order.SetAssignedRider(nil, now.Add(time.Minute))
	if order.IsAssigned {
		t.Fatal("expected isAssigned false after detaching the rider")
	}
	if order.AssignedAt != nil {
		t.Fatal("expected assignedAt cleared after detaching the rider")
	}
}

func TestCanCancelOnlyWhileScheduled(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{StatusScheduled, true},
		{StatusPickedUp, false},
		{StatusInProcess, false},
		{StatusOutForDelivery, false},
		{StatusDelivered, false},
		{StatusCancelled, false},
	}

	for _, tt := range tests {
		order := Order{Status: tt.status}
		if got := order.CanCancel(); got != tt.want {
			t.Fatalf("CanCancel with status %s: expected %v, got %v", tt.status, tt.want, got)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if !IsTerminal(StatusDelivered) || !IsTerminal(StatusCancelled) {
		t.Fatal("expected delivered and cancelled to be terminal")
	}
	if IsTerminal(StatusScheduled) || IsTerminal(StatusOutForDelivery) {
		t.Fatal("expected in-flight statuses to be non-terminal")
	}
}
