package models

import (
	"time"

	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusPaid     OrderStatus = "paid"
	OrderStatusFailed   OrderStatus = "failed"
	OrderStatusRefunded OrderStatus = "refunded"
)

type FulfillmentStatus string

const (
	FulfillmentStatusPending    FulfillmentStatus = "pending"
	FulfillmentStatusProcessing FulfillmentStatus = "processing"
	FulfillmentStatusCompleted  FulfillmentStatus = "completed"
	FulfillmentStatusCancelled  FulfillmentStatus = "cancelled"
)

// Order records a single purchase. StripeSessionID is unique: a redelivered
// checkout.session.completed for the same session must conflict at the
// database rather than create a second row.
type Order struct {
	ID                string            `gorm:"column:id;type:uuid;primary_key" json:"id"`
	StripeSessionID   string            `gorm:"column:stripe_session_id;type:varchar(255);not null;uniqueIndex:unique_stripe_session_id" json:"stripe_session_id"`
	CustomerName      string            `gorm:"column:customer_name;type:varchar(255)" json:"customer_name"`
	CustomerEmail     string            `gorm:"column:customer_email;type:varchar(255);not null;index" json:"customer_email"`
	PackageType       string            `gorm:"column:package_type;type:varchar(64)" json:"package_type"`
	Amount            int64             `gorm:"column:amount;type:bigint;not null" json:"amount"`
	Currency          string            `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	Status            OrderStatus       `gorm:"column:status;type:varchar(32);not null" json:"status"`
	FulfillmentStatus FulfillmentStatus `gorm:"column:fulfillment_status;type:varchar(32);not null" json:"fulfillment_status"`
	Metadata          datatypes.JSON    `gorm:"column:metadata;type:jsonb;default:'{}'" json:"metadata"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func (Order) TableName() string { return "orders" }
