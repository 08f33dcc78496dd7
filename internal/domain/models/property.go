package models

import "time"

// Coordinates pins a property on the map.
type Coordinates struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Property represents a managed land parcel owned by a client user.
type Property struct {
	ID          string       `bson:"_id" json:"id"`
	Name        string       `bson:"name" json:"name" validate:"required"`
	Location    string       `bson:"location" json:"location"`
	AreaHa      float64      `bson:"area" json:"area" validate:"gte=0"`
	OwnerID     string       `bson:"owner" json:"owner" validate:"required"`
	Coordinates *Coordinates `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
	CreatedAt   time.Time    `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time    `bson:"updated_at" json:"updatedAt"`
}
