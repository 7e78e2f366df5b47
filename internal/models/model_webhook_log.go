package models

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookLog is the append-style audit record of every inbound webhook
// delivery. A row is written before dispatch (Processed=false) and rewritten
// after handler execution. EventID is the provider-assigned idempotency key.
type WebhookLog struct {
	ID           string         `gorm:"column:id;type:uuid;primary_key" json:"id"`
	EventID      string         `gorm:"column:event_id;type:varchar(128);not null;uniqueIndex:unique_event_id" json:"event_id"`
	EventType    string         `gorm:"column:event_type;type:varchar(128);not null" json:"event_type"`
	Processed    bool           `gorm:"column:processed;not null;default:false" json:"processed"`
	ErrorMessage *string        `gorm:"column:error_message;type:text" json:"error_message"`
	Payload      datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload"`
	TraceID      string         `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	CreatedAt    time.Time      `json:"created_at"`
	ProcessedAt  *time.Time     `gorm:"column:processed_at;default:null" json:"processed_at"`
}

func (WebhookLog) TableName() string { return "webhook_log" }
