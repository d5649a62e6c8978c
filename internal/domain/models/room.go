// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

// Room is a bookable space.
type Room struct {
	ID             string `json:"id" db:"id" msgpack:"id"`
	OrganizationID string `json:"organization_id,omitempty" db:"organization_id" msgpack:"organization_id"`
	Name           string `json:"name" db:"name" msgpack:"name"`
	Capacity       int    `json:"capacity,omitempty" db:"capacity" msgpack:"capacity"`
	// AllowOverlap disables conflict detection for the room.
	AllowOverlap bool `json:"allow_overlap" db:"allow_overlap" msgpack:"allow_overlap"`
}

// Profile is the public profile of a user.
type Profile struct {
	ID       string `json:"id" db:"id"`
	FullName string `json:"full_name" db:"full_name"`
	Email    string `json:"email" db:"email"`
}

// Actor is the user performing an operation, as resolved by the identity
// provider.
type Actor struct {
	UserID     string `json:"user_id"`
	Privileged bool   `json:"privileged"`
}

// CanModify reports whether the actor may edit or delete e.
func (a Actor) CanModify(e *Event) bool {
	return a.Privileged || (a.UserID != "" && a.UserID == e.CreatedBy)
}
