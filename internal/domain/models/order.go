package models

import "time"

// Checklist is a named set of boolean completion items with a derived
// percent-complete. The progress field is always recomputed server side.
type Checklist struct {
	Items    map[string]bool `bson:"items" json:"items"`
	Progress int             `bson:"progress" json:"progress"`
}

// Done reports whether every configured item of the checklist is checked.
func (c Checklist) Done() bool {
	return c.Progress >= 100
}

// OrderStatus tracks a production order through its lifecycle. The completed
// transition is gated on both checklists reaching 100%.
type OrderStatus string

const (
	OrderInProgress OrderStatus = "in_progress"
	OrderCompleted  OrderStatus = "completed"
)

// Checklist identifiers used by production orders.
const (
	ChecklistProduction = "ordemDeProducao"
	ChecklistSale       = "vendaRealizada"
)

// ProductionOrder is a sale being fulfilled, driven by two checklists.
type ProductionOrder struct {
	ID         string               `bson:"_id" json:"id"`
	ClientID   string               `bson:"client_id" json:"clientId"`
	PropertyID string               `bson:"property_id" json:"propertyId"`
	Label      string               `bson:"label" json:"label"`
	Status     OrderStatus          `bson:"status" json:"status"`
	Checklists map[string]Checklist `bson:"checklists" json:"checklists"`
	CreatedAt  time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time            `bson:"updated_at" json:"updatedAt"`
}
