package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestStringList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    StringList
		wantErr bool
	}{
		{name: "scalar", input: `"WT"`, want: StringList{"WT"}},
		{name: "array", input: `["WT","Cre"]`, want: StringList{"WT", "Cre"}},
		{name: "empty array", input: `[]`, want: StringList{}},
		{name: "empty string", input: `""`, want: StringList{}},
		{name: "null", input: `null`, want: nil},
		{name: "number", input: `42`, wantErr: true},
		{name: "mixed array", input: `["WT", 1]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got StringList
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Unmarshal(%s) should fail", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Unmarshal(%s) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestStringList_InsideStruct(t *testing.T) {
	var body struct {
		Genotype StringList `json:"genotype"`
	}
	if err := json.Unmarshal([]byte(`{"genotype":"WT"}`), &body); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if len(body.Genotype) != 1 || body.Genotype[0] != "WT" {
		t.Errorf("Genotype = %v, want [WT]", body.Genotype)
	}
}
