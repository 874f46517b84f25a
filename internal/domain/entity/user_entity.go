package entity

import (
	"slices"
	"time"
)

// User is the aggregate root for accounts.
// Password holds the bcrypt hash. Places lists the ids of places this
// user created, in creation order.
type User struct {
	ID        string
	Name      string
	Email     string
	Password  string
	ImageURL  string
	Places    []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnsPlace reports whether placeID is in the user's place list.
func (u *User) OwnsPlace(placeID string) bool {
	return slices.Contains(u.Places, placeID)
}

// Clone returns a copy that does not share the Places backing array.
func (u *User) Clone() *User {
	c := *u
	c.Places = slices.Clone(u.Places)
	if c.Places == nil {
		c.Places = []string{}
	}
	return &c
}
