package handlers

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"laundry/internal/models"
)

func TestBuildOrderFromRequestStartsScheduled(t *testing.T) {
	userID := primitive.NewObjectID()
	now := time.Now()

	order, err := buildOrderFromRequest(createOrderRequest{
		ServiceID:    "s1",
		ServiceName:  "Wash & Fold",
		ServicePrice: 100,
		ServiceUnit:  "kg",
		Quantity:     2,
		TotalPrice:   200,
		PickupDate:   "2024-01-01",
		DeliveryDate: "2024-01-03",
		TimeSlot:     "10-12",
		AddressID:    "a1",
		AddressText:  "123 Main St",
	}, userID, now)
	if err != nil {
		t.Fatalf("buildOrderFromRequest returned error: %v", err)
	}

	if order.Status != models.StatusScheduled {
		t.Fatalf("expected scheduled status, got %s", order.Status)
	}
	if _, ok := order.StatusTimestamps[models.StatusScheduled]; !ok {
		t.Fatal("expected scheduled timestamp to be set at creation")
	}
	if order.UserID != userID {
		t.Fatal("expected order to belong to the caller")
	}
	if order.TotalPrice != 200 || order.Quantity != 2 {
		t.Fatalf("expected snapshot totals preserved, got total=%v quantity=%d", order.TotalPrice, order.Quantity)
	}
	if order.IsAssigned || order.AssignedRider != nil {
		t.Fatal("expected new order to start unassigned")
	}
	if order.PickupDate.After(order.DeliveryDate) {
		t.Fatal("expected pickup date before delivery date")
	}
}

func TestBuildOrderFromRequestDefaultsQuantity(t *testing.T) {
	order, err := buildOrderFromRequest(createOrderRequest{
		ServiceID:    "s1",
		PickupDate:   "2024-01-01",
		DeliveryDate: "2024-01-03",
		TimeSlot:     "10-12",
		AddressID:    "a1",
		AddressText:  "123 Main St",
	}, primitive.NewObjectID(), time.Now())
	if err != nil {
		t.Fatalf("buildOrderFromRequest returned error: %v", err)
	}
	if order.Quantity != 1 {
		t.Fatalf("expected quantity to default to 1, got %d", order.Quantity)
	}
}

func TestBuildOrderFromRequestRejectsBadDates(t *testing.T) {
	_, err := buildOrderFromRequest(createOrderRequest{
		ServiceID:    "s1",
		PickupDate:   "not-a-date",
		DeliveryDate: "2024-01-03",
		TimeSlot:     "10-12",
		AddressID:    "a1",
		AddressText:  "123 Main St",
	}, primitive.NewObjectID(), time.Now())
	if err == nil {
		t.Fatal("expected error for malformed pickupDate")
	}
}

func TestParseOrderDateAcceptsRFC3339(t *testing.T) {
	parsed, err := parseOrderDate("2024-01-01T09:30:00Z")
	if err != nil {
		t.Fatalf("parseOrderDate returned error: %v", err)
	}
	if parsed.Hour() != 9 || parsed.Minute() != 30 {
		t.Fatalf("expected 09:30, got %v", parsed)
	}
}
