// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Each store (users, mice, log entries, labs) is a service struct that takes
// its repository interface in its constructor. The services never see HTTP
// and never see SQL.
//
// PRECONDITION ORDER:
// Every operation fails with the first violated precondition, checked in this
// order:
//
//  1. missing fields        → apperror.MissingFields
//  2. shape (enums, dates)  → apperror.ValidationFailed
//  3. identifier syntax     → apperror.InvalidIdentifier
//  4. existence             → apperror.NotFound
//  5. uniqueness            → apperror.AlreadyExists
//
// Steps 1 to 3 come from the validate tags on each input struct.
package service

import (
	"log/slog"
	"strings"

	"github.com/sakif/lab-records/internal/apperror"
	"github.com/sakif/lab-records/internal/ident"
)

// checkID trims id and reports it as missing or malformed.
func checkID(field, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", apperror.MissingFields(field)
	}
	if !ident.IsValid(id) {
		return "", apperror.InvalidIdentifier(field)
	}
	return id, nil
}

// optional trims s and maps an empty result to nil.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// logStoreError logs err at Error level unless it is an expected domain
// failure (not found, duplicate, bad input), which the caller simply returns.
func logStoreError(logger *slog.Logger, msg string, err error, attrs ...any) {
	if apperror.KindOf(err) != apperror.KindUnknown {
		return
	}
	logger.Error(msg, append(attrs, slog.String("error", err.Error()))...)
}
