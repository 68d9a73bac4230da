// Package ident generates and validates entity identifiers.
//
// Every record (user, mouse, log entry, lab, protocol) is keyed by an xid:
// a 20-character, URL-safe, time-sortable token such as "cv37rs3pp9olc6atsptg".
// New is the only generator the persistence layer uses, so IsValid accepts
// exactly the tokens New can produce.
package ident

import "github.com/rs/xid"

// New returns a freshly generated identifier.
func New() string {
	return xid.New().String()
}

// IsValid reports whether s is a well-formed identifier.
//
// The empty string is rejected. xid.FromString checks both the length and the
// base32hex alphabet, so "../etc", a Mongo-style hex id or a truncated token
// all fail here before any query is issued.
func IsValid(s string) bool {
	if s == "" {
		return false
	}
	_, err := xid.FromString(s)
	return err == nil
}
