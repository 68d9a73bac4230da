package model

import "time"

// Sex of an animal.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// Mouse is an animal record with its lineage references.
//
// Only Available and Notes change after creation. The *ID pointer fields are
// nil when the relation was never set; the matching summary fields are filled
// by reads and stay nil when the referenced record is gone.
type Mouse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Sex         Sex        `json:"sex"`
	Genotype    StringList `json:"genotype"`
	Strain      string     `json:"strain"`
	BirthDate   time.Time  `json:"birthDate"`
	Available   bool       `json:"availability"`
	Notes       *string    `json:"notes"`
	UserID      string     `json:"userId"`
	LabID       *string    `json:"labId"`
	ProtocolID  *string    `json:"protocolId"`
	MotherID    *string    `json:"motherId"`
	FatherID    *string    `json:"fatherId"`
	Littermates []MouseRef `json:"littermates"`
	CreatedAt   time.Time  `json:"createdAt"`

	// Joined on read.
	User     *UserSummary     `json:"user"`
	Lab      *LabSummary      `json:"lab"`
	Protocol *ProtocolSummary `json:"protocol"`
	Mother   *MouseSummary    `json:"mother"`
	Father   *MouseSummary    `json:"father"`
}

// MouseSummary is the slice of a mouse joined into other records.
type MouseSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Strain string `json:"strain"`
}

// MouseRef is one entry of a list of mouse references. Mouse is nil when ID
// no longer resolves.
type MouseRef struct {
	ID    string        `json:"id"`
	Mouse *MouseSummary `json:"mouse"`
}

// RefIDs returns the raw ids of refs in order.
func RefIDs(refs []MouseRef) []string {
	ids := make([]string, len(refs))
	for i, r := range refs {
		ids[i] = r.ID
	}
	return ids
}

// NewRefs wraps ids as unresolved references.
func NewRefs(ids []string) []MouseRef {
	refs := make([]MouseRef, len(ids))
	for i, id := range ids {
		refs[i] = MouseRef{ID: id}
	}
	return refs
}
