package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/brightharbor/storefront/pkg/types"
)

// Customer is upserted by email on every successful checkout and accumulates
// aggregate purchase counters. Tier is nil when the customer holds no active
// subscription; subscription deletion clears the tier, never the row.
type Customer struct {
	ID               string         `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Email            string         `gorm:"column:email;type:varchar(255);not null;uniqueIndex:unique_customer_email" json:"email"`
	Name             string         `gorm:"column:name;type:varchar(255)" json:"name"`
	StripeCustomerID string         `gorm:"column:stripe_customer_id;type:varchar(255);index" json:"stripe_customer_id"`
	Tier             *types.Tier    `gorm:"column:tier;type:varchar(32);default:null" json:"tier"`
	TotalSpent       int64          `gorm:"column:total_spent;type:bigint;not null;default:0" json:"total_spent"`
	OrderCount       int            `gorm:"column:order_count;not null;default:0" json:"order_count"`
	LastOrderAt      *time.Time     `gorm:"column:last_order_at;default:null" json:"last_order_at"`
	Metadata         datatypes.JSON `gorm:"column:metadata;type:jsonb;default:'{}'" json:"metadata"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }
