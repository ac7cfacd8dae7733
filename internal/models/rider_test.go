package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRecalculateAverageRating(t *testing.T) {
	rider := Rider{}

	rider.RecalculateAverageRating()
	if rider.AverageRating != 0 {
		t.Fatalf("expected 0 average with no ratings, got %v", rider.AverageRating)
	}

	rider.Ratings = []RiderRating{
		{Rating: 5},
		{Rating: 4},
		{Rating: 4},
	}
	rider.RecalculateAverageRating()
	if rider.AverageRating != 4.3 {
		t.Fatalf("expected average 4.3, got %v", rider.AverageRating)
	}

	rider.Ratings = []RiderRating{{Rating: 3}, {Rating: 4}}
	rider.RecalculateAverageRating()
	if rider.AverageRating != 3.5 {
		t.Fatalf("expected average 3.5, got %v", rider.AverageRating)
	}
}

func TestCanGoOffline(t *testing.T) {
	rider := Rider{ActiveOrderCount: 0}
	if !rider.CanGoOffline() {
		t.Fatal("expected rider without active orders to be allowed offline")
	}

	rider.ActiveOrderCount = 2
	if rider.CanGoOffline() {
		t.Fatal("expected rider with active orders to be refused offline")
	}
}

func TestAssignAndReleaseOrderBookkeeping(t *testing.T) {
	rider := Rider{Status: RiderAvailable}
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	now := time.Now()

	rider.AssignOrder(first, now)
	rider.AssignOrder(second, now)

	if rider.ActiveOrderCount != 2 {
		t.Fatalf("expected 2 active orders, got %d", rider.ActiveOrderCount)
	}
	if rider.Status != RiderBusy {
		t.Fatalf("expected busy rider, got %s", rider.Status)
	}
	if rider.CurrentOrder == nil || *rider.CurrentOrder != second {
		t.Fatal("expected currentOrder to point at the latest assignment")
	}

	// Assigning the same order twice is a no-op.
	rider.AssignOrder(second, now)
	if rider.ActiveOrderCount != 2 {
		t.Fatalf("expected duplicate assignment to be ignored, got count %d", rider.ActiveOrderCount)
	}

	rider.ReleaseOrder(second, now)
	if rider.ActiveOrderCount != 1 {
		t.Fatalf("expected 1 active order after release, got %d", rider.ActiveOrderCount)
	}
	if rider.CurrentOrder == nil || *rider.CurrentOrder != first {
		t.Fatal("expected currentOrder to fall back to the remaining assignment")
	}
	if rider.Status != RiderBusy {
		t.Fatalf("expected rider to stay busy, got %s", rider.Status)
	}

	rider.ReleaseOrder(first, now)
	if rider.ActiveOrderCount != 0 {
		t.Fatalf("expected 0 active orders, got %d", rider.ActiveOrderCount)
	}
	if rider.CurrentOrder != nil {
		t.Fatal("expected currentOrder cleared")
	}
	if rider.Status != RiderAvailable {
		t.Fatalf("expected available rider, got %s", rider.Status)
	}

	// Releasing an unknown order changes nothing.
	rider.ReleaseOrder(primitive.NewObjectID(), now)
	if rider.ActiveOrderCount != 0 || rider.Status != RiderAvailable {
		t.Fatal("expected release of unknown order to be a no-op")
	}
}

func TestValidRiderStatus(t *testing.T) {
	for _, status := range []string{RiderAvailable, RiderBusy, RiderOffline} {
		if !ValidRiderStatus(status) {
			t.Fatalf("expected %s to be valid", status)
		}
	}
	if ValidRiderStatus("sleeping") {
		t.Fatal("expected unknown status to be rejected")
	}
}
