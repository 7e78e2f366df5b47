package models

import "time"

type ContactStatus string

const (
	ContactStatusNew       ContactStatus = "new"
	ContactStatusContacted ContactStatus = "contacted"
	ContactStatusQualified ContactStatus = "qualified"
	ContactStatusClosed    ContactStatus = "closed"
)

// ContactSubmission is a lead captured by the contact form. Status is
// advanced manually by staff through the admin endpoints.
type ContactSubmission struct {
	ID         string        `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Name       string        `gorm:"column:name;type:varchar(100);not null" json:"name"`
	Email      string        `gorm:"column:email;type:varchar(255);not null;index" json:"email"`
	Phone      *string       `gorm:"column:phone;type:varchar(32)" json:"phone"`
	Topic      *string       `gorm:"column:topic;type:varchar(128)" json:"topic"`
	Message    string        `gorm:"column:message;type:text;not null" json:"message"`
	Source     string        `gorm:"column:source;type:varchar(64)" json:"source"`
	Status     ContactStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	AssignedTo *string       `gorm:"column:assigned_to;type:varchar(255)" json:"assigned_to"`
	Notes      *string       `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func (ContactSubmission) TableName() string { return "contact_submissions" }
