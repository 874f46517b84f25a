package entity

import "time"

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is a location shared by a user. Creator is the id of the user
// that created it and never changes afterwards.
type Place struct {
	ID          string
	Title       string
	Description string
	Address     string
	Location    Coordinates
	ImageURL    string
	Creator     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone returns a shallow copy of the place.
func (p *Place) Clone() *Place {
	c := *p
	return &c
}
