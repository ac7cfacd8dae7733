package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin actions recorded in the audit trail.
const (
	ActionUpdateOrderStatus   = "UPDATE_ORDER_STATUS"
	ActionAssignDeliveryAgent = "ASSIGN_DELIVERY_AGENT"
	ActionCreateService       = "CREATE_SERVICE"
	ActionUpdateService       = "UPDATE_SERVICE"
	ActionDeleteService       = "DELETE_SERVICE"
	ActionSendNotification    = "SEND_NOTIFICATION"
	ActionGenerateInvoice     = "GENERATE_INVOICE"
)

// AdminLog is an audit record of an admin mutation. Writes are best-effort;
// a failed log never fails the request it describes.
type AdminLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AdminID   primitive.ObjectID `bson:"adminId" json:"adminId"`
	Action    string             `bson:"action" json:"action"`
	Details   bson.M             `bson:"details,omitempty" json:"details,omitempty"`
	IP        string             `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent string             `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}
