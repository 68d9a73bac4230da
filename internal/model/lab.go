package model

import "time"

// Lab groups researchers, mice and log entries.
type Lab struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// LabSummary is the slice of a lab joined into other records.
type LabSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Protocol is an approved research protocol that mice can be assigned to.
type Protocol struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	LabID     *string   `json:"labId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProtocolSummary is the slice of a protocol joined into other records.
type ProtocolSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
