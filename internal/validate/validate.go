// Package validate checks operation input structs and translates failures
// into apperror kinds.
//
// Input structs declare their rules with go-playground/validator tags:
//
//	type PostLogEntryInput struct {
//	    UserID  string   `json:"userId"  validate:"required,xid"`
//	    Mice    []string `json:"mice"    validate:"required,min=1,dive,xid"`
//	    Content string   `json:"content" validate:"required"`
//	}
//
// The custom "xid" tag delegates to ident.IsValid and "role" to
// model.Role.Valid. When several rules fail at
// once the error reported follows a fixed priority: missing fields first, then
// shape problems, then malformed identifiers.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/lab-records/internal/apperror"
	"github.com/sakif/lab-records/internal/ident"
	"github.com/sakif/lab-records/internal/model"
)

var structValidator *validator.Validate

func init() {
	structValidator = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name ("birthDate", not "BirthDate").
	structValidator.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	if err := structValidator.RegisterValidation("xid", isIdentifier); err != nil {
		panic(fmt.Sprintf("validate: registering xid tag: %v", err))
	}
	if err := structValidator.RegisterValidation("role", isRole); err != nil {
		panic(fmt.Sprintf("validate: registering role tag: %v", err))
	}
	if err := structValidator.RegisterValidation("date", isDate); err != nil {
		panic(fmt.Sprintf("validate: registering date tag: %v", err))
	}
}

// dateLayouts are the accepted calendar date spellings, tried in order.
var dateLayouts = []string{"2006-01-02", time.RFC3339Nano}

// ParseDate parses a calendar date ("2024-01-01") or a full RFC 3339
// timestamp. The result is in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("validate: %q is not a date", s)
}

func isDate(fl validator.FieldLevel) bool {
	_, err := ParseDate(fl.Field().String())
	return err == nil
}

func isIdentifier(fl validator.FieldLevel) bool {
	return ident.IsValid(fl.Field().String())
}

func isRole(fl validator.FieldLevel) bool {
	return model.Role(fl.Field().String()).Valid()
}

// Struct validates s and returns nil or an *apperror.AppError.
func Struct(s any) error {
	err := structValidator.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}

	var (
		missing  []string
		invalid  validator.FieldError
		badIDFld string
	)
	for _, fe := range fieldErrs {
		switch {
		case isMissing(fe):
			missing = append(missing, fe.Field())
		case fe.Tag() == "xid":
			if badIDFld == "" {
				badIDFld = fe.Field()
			}
		default:
			if invalid == nil {
				invalid = fe
			}
		}
	}

	switch {
	case len(missing) > 0:
		return apperror.MissingFields(missing...)
	case invalid != nil:
		return apperror.ValidationFailed(invalid.Field(), message(invalid))
	default:
		return apperror.InvalidIdentifier(badIDFld)
	}
}

// isMissing treats an empty collection the same as an absent value.
func isMissing(fe validator.FieldError) bool {
	switch fe.Tag() {
	case "required", "required_if", "required_with":
		return true
	case "min":
		return fe.Kind() == reflect.Slice && fe.Param() == "1"
	}
	return false
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "date":
		return fmt.Sprintf("%s must be a date like 2024-01-31", fe.Field())
	case "role":
		return fmt.Sprintf("%s must be one of: %s, %s, %s, %s", fe.Field(),
			model.RolePrincipalInvestigator, model.RoleResearchAssistant, model.RoleVolunteer, model.RoleUser)
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
