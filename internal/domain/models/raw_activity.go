package models

import "time"

// RawActivity is an activity document exactly as stored, before the
// normalization boundary. Discriminant fields stay untyped strings and audit
// timestamps stay optional so malformed or partial records can be inspected
// and rejected instead of leaking inward.
type RawActivity struct {
	ID          string          `bson:"_id" json:"id"`
	Title       string          `bson:"title" json:"title" validate:"required"`
	Description string          `bson:"description" json:"description"`
	Type        string          `bson:"type" json:"type" validate:"required"`
	Status      string          `bson:"status" json:"status" validate:"required"`
	Date        time.Time       `bson:"date" json:"date"`
	Location    string          `bson:"location" json:"location"`
	Responsible string          `bson:"responsible" json:"responsible"`
	PropertyID  string          `bson:"property_id" json:"propertyId" validate:"required"`
	Photos      []Photo         `bson:"photos,omitempty" json:"photos,omitempty"`
	Files       []FileRef       `bson:"files,omitempty" json:"files,omitempty"`
	Soil        *SoilData       `bson:"soil_data,omitempty" json:"soilData,omitempty"`
	Management  *ManagementData `bson:"management_data,omitempty" json:"managementData,omitempty"`
	Task        *TaskData       `bson:"task_data,omitempty" json:"taskData,omitempty"`
	CreatedAt   *time.Time      `bson:"created_at,omitempty" json:"createdAt,omitempty"`
	UpdatedAt   *time.Time      `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}
