// Package model defines the data structures used throughout the application.
//
// Records reference each other by identifier. When a read joins a referenced
// record in, the relation is exposed as two fields: the raw id (nil when the
// reference was never set) and a summary pointer (nil when the id no longer
// resolves to a stored record).
package model

import "time"

// Role is a user's position in the lab.
type Role string

const (
	RolePrincipalInvestigator Role = "principal investigator"
	RoleResearchAssistant     Role = "research assistant"
	RoleVolunteer             Role = "volunteer"
	RoleUser                  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePrincipalInvestigator, RoleResearchAssistant, RoleVolunteer, RoleUser:
		return true
	}
	return false
}

// User represents a registered researcher account.
//
// PasswordHash is the bcrypt output. It is returned by the store so the
// service can compare credentials, but the json:"-" tag keeps it out of every
// API response.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	LabID        *string   `json:"labId"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserSummary is the slice of a user joined into other records.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
