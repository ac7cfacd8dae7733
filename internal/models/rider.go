package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rider operational statuses.
const (
	RiderAvailable = "available"
	RiderBusy      = "busy"
	RiderOffline   = "offline"
)

// ValidRiderStatus reports whether value is one of the rider statuses.
func ValidRiderStatus(value string) bool {
	return value == RiderAvailable || value == RiderBusy || value == RiderOffline
}

// RiderRating is a single per-order rating left for a rider.
type RiderRating struct {
	OrderID   primitive.ObjectID `bson:"orderId" json:"orderId"`
	Rating    int                `bson:"rating" json:"rating"`
	Review    string             `bson:"review,omitempty" json:"review,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Rider is the delivery rider profile, one-to-one with a user account.
type Rider struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID   `bson:"userId" json:"userId"`
	Status           string               `bson:"status" json:"status"`
	Location         GeoPoint             `bson:"location" json:"location"`
	AssignedOrders   []primitive.ObjectID `bson:"assignedOrders" json:"assignedOrders"`
	CurrentOrder     *primitive.ObjectID  `bson:"currentOrder" json:"currentOrder"`
	ActiveOrderCount int                  `bson:"activeOrderCount" json:"activeOrderCount"`
	Ratings          []RiderRating        `bson:"ratings" json:"ratings"`
	AverageRating    float64              `bson:"averageRating" json:"averageRating"`
	CreatedAt        time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// RecalculateAverageRating refreshes the cached average from the ratings list,
// rounded to one decimal place. Zero when no ratings exist.
func (r *Rider) RecalculateAverageRating() {
	if len(r.Ratings) == 0 {
		r.AverageRating = 0
		return
	}

	total := 0
	for _, item := range r.Ratings {
		total += item.Rating
	}
	r.AverageRating = math.Round(float64(total)/float64(len(r.Ratings))*10) / 10
}

// RefreshStatus derives busy/available from the assigned order list. Offline
// is never set here; going offline is an explicit request.
func (r *Rider) RefreshStatus() {
	if len(r.AssignedOrders) > 0 {
		r.Status = RiderBusy
	} else {
		r.Status = RiderAvailable
	}
}

// CanGoOffline reports whether the rider may switch to offline. A rider with
// in-flight orders must finish or hand them off first.
func (r *Rider) CanGoOffline() bool {
	return r.ActiveOrderCount == 0
}

// AssignOrder records a new in-flight order on the rider and marks it busy.
func (r *Rider) AssignOrder(orderID primitive.ObjectID, at time.Time) {
	for _, assigned := range r.AssignedOrders {
		if assigned == orderID {
			return
		}
	}
	r.AssignedOrders = append(r.AssignedOrders, orderID)
	r.CurrentOrder = &orderID
	r.ActiveOrderCount++
	r.RefreshStatus()
	r.UpdatedAt = at
}

// ReleaseOrder drops a finished or cancelled order from the rider's books and
// derives the busy/available status from what remains.
func (r *Rider) ReleaseOrder(orderID primitive.ObjectID, at time.Time) {
	kept := make([]primitive.ObjectID, 0, len(r.AssignedOrders))
	for _, assigned := range r.AssignedOrders {
		if assigned != orderID {
			kept = append(kept, assigned)
		}
	}
	if len(kept) == len(r.AssignedOrders) {
		return
	}
	r.AssignedOrders = kept

	if r.ActiveOrderCount > 0 {
		r.ActiveOrderCount--
	}
	if r.CurrentOrder != nil && *r.CurrentOrder == orderID {
		r.CurrentOrder = nil
		if len(kept) > 0 {
			r.CurrentOrder = &kept[len(kept)-1]
		}
	}
	r.RefreshStatus()
	r.UpdatedAt = at
}
