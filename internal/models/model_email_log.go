package models

import (
	"time"

	"gorm.io/datatypes"
)

type EmailStatus string

const (
	EmailStatusPending EmailStatus = "pending"
	EmailStatusSent    EmailStatus = "sent"
	EmailStatusFailed  EmailStatus = "failed"
)

// EmailLog records one row per outbound transactional email attempt.
type EmailLog struct {
	ID           string         `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Recipient    string         `gorm:"column:recipient;type:varchar(255);not null;index" json:"recipient"`
	Subject      string         `gorm:"column:subject;type:varchar(255)" json:"subject"`
	Template     string         `gorm:"column:template;type:varchar(64);not null" json:"template"`
	Status       EmailStatus    `gorm:"column:status;type:varchar(32);not null" json:"status"`
	ErrorMessage *string        `gorm:"column:error_message;type:text" json:"error_message"`
	SentAt       *time.Time     `gorm:"column:sent_at;default:null" json:"sent_at"`
	Metadata     datatypes.JSON `gorm:"column:metadata;type:jsonb;default:'{}'" json:"metadata"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (EmailLog) TableName() string { return "email_log" }
