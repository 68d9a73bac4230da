package apperror

import (
	"errors"
	"fmt"
	"testing"
)

// TABLE-DRIVEN TESTS:
// Each case is one struct in the slice; t.Run gives every case its own name
// in the output, e.g. TestErrorsIs/NotFound_wraps_ErrNotFound.

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("Mouse", "M1"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("sex", "sex must be male or female"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "AlreadyExists wraps ErrAlreadyExists",
			err:       AlreadyExists("Mouse already exists"),
			target:    ErrAlreadyExists,
			wantMatch: true,
		},
		{
			name:      "MissingFields wraps ErrMissingFields",
			err:       MissingFields("name"),
			target:    ErrMissingFields,
			wantMatch: true,
		},
		{
			name:      "InvalidIdentifier wraps ErrInvalidIdentifier",
			err:       InvalidIdentifier("labId"),
			target:    ErrInvalidIdentifier,
			wantMatch: true,
		},
		{
			name:      "UserNotFound is not ErrNotFound",
			err:       UserNotFound(),
			target:    ErrNotFound,
			wantMatch: false,
		},
		{
			name:      "WrongPassword wraps ErrWrongPassword",
			err:       WrongPassword(),
			target:    ErrWrongPassword,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("Mouse", "M1"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "wrapped with fmt.Errorf still matches",
			err:       fmt.Errorf("creating mouse: %w", AlreadyExists("Mouse already exists")),
			target:    ErrAlreadyExists,
			wantMatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "missing fields", err: MissingFields("a", "b"), want: KindMissingFields},
		{name: "invalid id", err: InvalidIdentifier("id"), want: KindInvalidIdentifier},
		{name: "validation", err: ValidationFailed("x", "bad"), want: KindValidation},
		{name: "not found", err: NotFound("Log entry", "x"), want: KindNotFound},
		{name: "already exists", err: AlreadyExists("dup"), want: KindAlreadyExists},
		{name: "user not found", err: UserNotFound(), want: KindUserNotFound},
		{name: "wrong password", err: WrongPassword(), want: KindWrongPassword},
		{name: "wrapped", err: fmt.Errorf("outer: %w", NotFound("User", "x")), want: KindNotFound},
		{name: "plain error", err: errors.New("disk on fire"), want: KindUnknown},
		{name: "nil", err: nil, want: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{name: "NotFound names the resource", err: NotFound("Log entry", "abc"), wantMessage: "Log entry not found"},
		{name: "MissingFields is generic", err: MissingFields("name", "sex"), wantMessage: MsgMissingFields},
		{name: "InvalidIdentifier is generic", err: InvalidIdentifier("userId"), wantMessage: MsgInvalidID},
		{name: "ValidationFailed uses custom message", err: ValidationFailed("password", "too short"), wantMessage: "too short"},
		{name: "UserNotFound", err: UserNotFound(), wantMessage: "User not found"},
		{name: "WrongPassword", err: WrongPassword(), wantMessage: "Wrong password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestMissingFieldsRecordsFieldNames(t *testing.T) {
	err := MissingFields("name", "strain")
	if err.Field != "name,strain" {
		t.Errorf("Field = %q, want %q", err.Field, "name,strain")
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("Mouse", "abc123")
	if unwrapped := err.Unwrap(); unwrapped != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrNotFound)
	}
}
