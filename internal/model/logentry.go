package model

import "time"

// LogEntry is a free-text note written by a user about one or more mice in a
// lab. CreatedAt never changes; Content is the only editable field.
type LogEntry struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	LabID     string     `json:"labId"`
	Mice      []MouseRef `json:"mice"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`

	// Joined on read.
	User *UserSummary `json:"user"`
	Lab  *LabSummary  `json:"lab"`
}
