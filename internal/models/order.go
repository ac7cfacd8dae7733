package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. Terminal statuses are delivered and cancelled.
const (
	StatusScheduled      = "scheduled"
	StatusPickedUp       = "pickedUp"
	StatusInProcess      = "inProcess"
	StatusOutForDelivery = "outForDelivery"
	StatusDelivered      = "delivered"
	StatusCancelled      = "cancelled"
)

// GeoPoint is a GeoJSON point with the time of its last update.
// Coordinates are stored [longitude, latitude].
type GeoPoint struct {
	Type        string     `bson:"type" json:"type"`
	Coordinates []float64  `bson:"coordinates" json:"coordinates"`
	LastUpdated *time.Time `bson:"lastUpdated" json:"lastUpdated"`
}

// NewGeoPoint builds a point from a latitude/longitude pair.
func NewGeoPoint(latitude, longitude float64, at time.Time) GeoPoint {
	return GeoPoint{
		Type:        "Point",
		Coordinates: []float64{longitude, latitude},
		LastUpdated: &at,
	}
}

// Order is a persisted order document. Service fields are a snapshot taken at
// creation time; the order never references the catalog entry afterwards.
type Order struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID   `bson:"userId" json:"userId"`
	ServiceID     string               `bson:"serviceId" json:"serviceId"`
	ServiceName   string               `bson:"serviceName" json:"serviceName"`
	ServicePrice  float64              `bson:"servicePrice" json:"servicePrice"`
	ServiceUnit   string               `bson:"serviceUnit" json:"serviceUnit"`
	Quantity      int                  `bson:"quantity" json:"quantity"`
	TotalPrice    float64              `bson:"totalPrice" json:"totalPrice"`
	Status        string               `bson:"status" json:"status"`
	AssignedRider *primitive.ObjectID  `bson:"assignedRider" json:"assignedRider"`
	RiderLocation GeoPoint             `bson:"riderLocation" json:"riderLocation"`
	IsAssigned    bool                 `bson:"isAssigned" json:"isAssigned"`
	AssignedAt    *time.Time           `bson:"assignedAt" json:"assignedAt"`
	PickupDate    time.Time            `bson:"pickupDate" json:"pickupDate"`
	DeliveryDate  time.Time            `bson:"deliveryDate" json:"deliveryDate"`
	TimeSlot      string               `bson:"timeSlot" json:"timeSlot"`
	AddressID     string               `bson:"addressId" json:"addressId"`
	AddressText   string               `bson:"addressText" json:"addressText"`
	// StatusTimestamps records when each status value was entered. The set of
	// statuses reached over an order's life is sparse, so this stays a map
	// rather than a fixed struct.
	StatusTimestamps map[string]time.Time `bson:"statusTimestamps" json:"statusTimestamps"`
	CreatedAt        time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// SetStatus moves the order to the given status and stamps it. Every status
// write goes through here so the timestamp map always holds an entry for the
// current status.
func (o *Order) SetStatus(status string, at time.Time) {
	if o.StatusTimestamps == nil {
		o.StatusTimestamps = make(map[string]time.Time)
	}
	o.Status = status
	o.StatusTimestamps[status] = at
	o.UpdatedAt = at
}

// SetAssignedRider attaches or detaches a rider, keeping the isAssigned flag
// and assignedAt stamp in sync with the reference.
func (o *Order) SetAssignedRider(riderID *primitive.ObjectID, at time.Time) {
	o.AssignedRider = riderID
	if riderID != nil {
		o.IsAssigned = true
		o.AssignedAt = &at
	} else {
		o.IsAssigned = false
		o.AssignedAt = nil
	}
	o.UpdatedAt = at
}

// CanCancel reports whether the order may still be cancelled by its owner.
// Cancellation is only permitted before pickup.
func (o *Order) CanCancel() bool {
	return o.Status == StatusScheduled
}

// IsTerminal reports whether the given status ends the order's lifecycle.
func IsTerminal(status string) bool {
	return status == StatusDelivered || status == StatusCancelled
}
