package models

import "time"

// KPIData is the headline metric block shown on the dashboard: each value is
// paired with its percentage change versus the preceding period of equal
// length. Trends are exactly 0 when no prior-period data exists.
type KPIData struct {
	TotalArea        float64 `json:"totalArea"`
	AreaTrend        float64 `json:"areaTrend"`
	TotalActivities  int     `json:"totalActivities"`
	ActivitiesTrend  float64 `json:"activitiesTrend"`
	UpcomingTasks    int     `json:"upcomingTasks"`
	TasksTrend       float64 `json:"tasksTrend"`
	ActiveIrrigation float64 `json:"activeIrrigation"`
	IrrigationTrend  float64 `json:"irrigationTrend"`
}

// IrrigationUnavailable marks a snapshot taken while the telemetry source was
// not configured or unreachable. KPIs derived from it report 0, never the
// sentinel itself.
const IrrigationUnavailable = -1

// KPISnapshot is a daily per-property capture of the slow-moving metrics.
// Snapshots are the deterministic data source for area and irrigation trends.
type KPISnapshot struct {
	ID            string    `bson:"_id" json:"id"`
	PropertyID    string    `bson:"property_id" json:"propertyId"`
	AreaHa        float64   `bson:"area" json:"area"`
	IrrigationPct float64   `bson:"irrigation_pct" json:"irrigationPct"`
	CapturedAt    time.Time `bson:"captured_at" json:"capturedAt"`
}
