package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// StringList is a sequence of strings that also accepts a single JSON string.
//
//	"WT"          → ["WT"]
//	["WT", "Cre"] → ["WT", "Cre"]
//	null          → nil
//
// Genotypes and log-entry mouse references are both posted either way.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return fmt.Errorf("model: decoding string: %w", err)
		}
		if single == "" {
			*l = StringList{}
			return nil
		}
		*l = StringList{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("model: expected a string or an array of strings: %w", err)
	}
	*l = many
	return nil
}
