package entity

import (
	"fmt"
	"net/http"
	"strings"
	"time"
	"tgadmin/lib/validate"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Maintenance is the singleton document describing the maintenance banner.
type Maintenance struct {
	Id        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Enabled   bool               `json:"enabled" bson:"enabled"`
	Title     string             `json:"title,omitempty" bson:"title,omitempty"`
	Message   string             `json:"message,omitempty" bson:"message,omitempty"`
	StartTime *time.Time         `json:"start_time,omitempty" bson:"start_time,omitempty"`
	EndTime   *time.Time         `json:"end_time,omitempty" bson:"end_time,omitempty"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// MaintenanceUpdate holds the fields sent by the client; nil fields are left untouched.
type MaintenanceUpdate struct {
	Enabled   *bool      `json:"enabled" bson:"enabled,omitempty"`
	Title     *string    `json:"title" bson:"title,omitempty" validate:"omitempty,max=200"`
	Message   *string    `json:"message" bson:"message,omitempty" validate:"omitempty,max=4000"`
	StartTime *time.Time `json:"start_time" bson:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time" bson:"end_time,omitempty"`
	UpdatedAt time.Time  `json:"-" bson:"updated_at"`
}

func (m *MaintenanceUpdate) Bind(_ *http.Request) error {
	if m.Title != nil {
		title := strings.TrimSpace(*m.Title)
		m.Title = &title
	}
	if m.Message != nil {
		message := strings.TrimSpace(*m.Message)
		m.Message = &message
	}
	if err := validate.Struct(m); err != nil {
		return err
	}
	if m.StartTime != nil && m.EndTime != nil && m.EndTime.Before(*m.StartTime) {
		return fmt.Errorf("end_time is before start_time")
	}
	return nil
}
