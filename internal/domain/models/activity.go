package models

import "time"

// ActivityType discriminates the three kinds of farm-operation records.
type ActivityType string

const (
	ActivitySoilAnalysis ActivityType = "soil_analysis"
	ActivityManagement   ActivityType = "management"
	ActivityTask         ActivityType = "task"
)

// Valid reports whether the discriminant is one of the known activity types.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivitySoilAnalysis, ActivityManagement, ActivityTask:
		return true
	}
	return false
}

// ActivityStatus tracks the lifecycle of an activity.
type ActivityStatus string

const (
	StatusCompleted  ActivityStatus = "completed"
	StatusInProgress ActivityStatus = "in_progress"
	StatusPending    ActivityStatus = "pending"
	StatusCancelled  ActivityStatus = "cancelled"
)

// Valid reports whether the status is one of the known activity statuses.
func (s ActivityStatus) Valid() bool {
	switch s {
	case StatusCompleted, StatusInProgress, StatusPending, StatusCancelled:
		return true
	}
	return false
}

// Photo references an externally stored image attached to an activity.
type Photo struct {
	URL     string `bson:"url" json:"url"`
	Caption string `bson:"caption,omitempty" json:"caption,omitempty"`
}

// FileRef references an externally stored document attached to an activity.
type FileRef struct {
	Name string `bson:"name" json:"name"`
	URL  string `bson:"url" json:"url"`
	Size string `bson:"size" json:"size"`
	Type string `bson:"type" json:"type"`
}

// SoilData carries the metrics of a soil analysis.
type SoilData struct {
	PH              float64 `bson:"ph" json:"ph"`
	Phosphorus      float64 `bson:"phosphorus" json:"phosphorus"`
	Potassium       float64 `bson:"potassium" json:"potassium"`
	OrganicMatter   float64 `bson:"organic_matter" json:"organicMatter"`
	Recommendations string  `bson:"recommendations,omitempty" json:"recommendations,omitempty"`
}

// ManagementData carries the metrics of a management operation.
type ManagementData struct {
	AreaHa       float64 `bson:"area" json:"area"`
	Product      string  `bson:"product" json:"product"`
	Dosage       string  `bson:"dosage" json:"dosage"`
	Method       string  `bson:"method" json:"method"`
	Observations string  `bson:"observations,omitempty" json:"observations,omitempty"`
}

// TaskData carries the metrics of a scheduled task.
type TaskData struct {
	DurationHours float64  `bson:"duration" json:"duration"`
	Priority      string   `bson:"priority" json:"priority"`
	Equipment     []string `bson:"equipment,omitempty" json:"equipment,omitempty"`
	Notes         string   `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Activity is a dated, typed farm-operation record belonging to a property.
// Exactly one of SoilData, ManagementData and TaskData is populated, and it
// must match Type.
type Activity struct {
	ID          string          `bson:"_id" json:"id"`
	Title       string          `bson:"title" json:"title" validate:"required"`
	Description string          `bson:"description" json:"description"`
	Type        ActivityType    `bson:"type" json:"type" validate:"required"`
	Status      ActivityStatus  `bson:"status" json:"status" validate:"required"`
	Date        time.Time       `bson:"date" json:"date"`
	Location    string          `bson:"location" json:"location"`
	Responsible string          `bson:"responsible" json:"responsible"`
	PropertyID  string          `bson:"property_id" json:"propertyId" validate:"required"`
	Photos      []Photo         `bson:"photos,omitempty" json:"photos,omitempty"`
	Files       []FileRef       `bson:"files,omitempty" json:"files,omitempty"`
	Soil        *SoilData       `bson:"soil_data,omitempty" json:"soilData,omitempty"`
	Management  *ManagementData `bson:"management_data,omitempty" json:"managementData,omitempty"`
	Task        *TaskData       `bson:"task_data,omitempty" json:"taskData,omitempty"`
	CreatedAt   time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `bson:"updated_at" json:"updatedAt"`
}
