package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/lab-records/internal/service"
)

// MouseHandler serves the /mouse routes.
type MouseHandler struct {
	mice   *service.MouseService
	logger *slog.Logger
}

// NewMouseHandler creates a new MouseHandler.
func NewMouseHandler(mice *service.MouseService, logger *slog.Logger) *MouseHandler {
	return &MouseHandler{mice: mice, logger: logger}
}

// Routes returns the router mounted at /mouse.
func (h *MouseHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/create", h.HandleCreate)
	r.Get("/user/{userId}", h.HandleListByUser)
	r.Get("/name/{name}", h.HandleInfo)
	r.Get("/lab/{labId}", h.HandleListByLab)
	r.Get("/lab/{labId}/available", h.HandleListAvailable)
	r.Put("/update-availability/{id}", h.HandleUpdateAvailability)
	r.Put("/update-notes/{id}", h.HandleUpdateNotes)
	r.Delete("/delete/{id}", h.HandleDelete)
	return r
}

// HandleCreate stores a new mouse.
//
// HTTP: POST /mouse/create
// REQUEST BODY: {"name": "M1", "sex": "female", "genotype": "WT",
// "strain": "C57BL/6J", "birthDate": "2024-01-01", "userId": "..."}
func (h *MouseHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.CreateMouseInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	mouse, err := h.mice.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeResult(w, http.StatusCreated, "Mouse created successfully", "mouse", mouse)
}

// HandleInfo looks a mouse up by name.
//
// HTTP: GET /mouse/name/{name}
func (h *MouseHandler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	name, err := pathParam(r, "name")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	mouse, err := h.mice.Info(r.Context(), name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeResult(w, http.StatusOK, "Mouse retrieved successfully", "mouse", mouse)
}

// HandleListByUser returns a user's mice, newest first.
//
// HTTP: GET /mouse/user/{userId}
func (h *MouseHandler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	mice, err := h.mice.ListByUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeResult(w, http.StatusOK, fmt.Sprintf("Found %d mice for user", len(mice)), "mice", mice)
}

// HandleListByLab returns a lab's mice by name.
//
// HTTP: GET /mouse/lab/{labId}
func (h *MouseHandler) HandleListByLab(w http.ResponseWriter, r *http.Request) {
	mice, err := h.mice.ListByLab(r.Context(), chi.URLParam(r, "labId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeResult(w, http.StatusOK, fmt.Sprintf("Found %d mice in lab", len(mice)), "mice", mice)
}

// HandleListAvailable returns a lab's available mice by name.
//
// HTTP: GET /mouse/lab/{labId}/available
func (h *MouseHandler) HandleListAvailable(w http.ResponseWriter, r *http.Request) {
	mice, err := h.mice.ListAvailable(r.Context(), chi.URLParam(r, "labId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeResult(w, http.StatusOK, fmt.Sprintf("Found %d available mice in lab", len(mice)), "mice", mice)
}

// HandleUpdateAvailability sets the availability flag.
//
// HTTP: PUT /mouse/update-availability/{id}
// REQUEST BODY: {"availability": false}
//
// The field is decoded as `any` so that "false" (a string) or 0 count as
// missing instead of being coerced.
func (h *MouseHandler) HandleUpdateAvailability(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Availability any `json:"availability"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, h.logger, err)
		return
	}

	var available *bool
	if b, ok := body.Availability.(bool); ok {
		available = &b
	}

	mouse, err := h.mice.UpdateAvailability(r.Context(), chi.URLParam(r, "id"), available)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeResult(w, http.StatusOK, "Mouse availability updated successfully", "mouse", mouse)
}

// HandleUpdateNotes replaces a mouse's notes.
//
// HTTP: PUT /mouse/update-notes/{id}
// REQUEST BODY: {"notes": "..."}
func (h *MouseHandler) HandleUpdateNotes(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Notes string `json:"notes"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, h.logger, err)
		return
	}

	mouse, err := h.mice.UpdateNotes(r.Context(), chi.URLParam(r, "id"), body.Notes)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeResult(w, http.StatusOK, "Mouse notes updated successfully", "mouse", mouse)
}

// HandleDelete removes a mouse.
//
// HTTP: DELETE /mouse/delete/{id}
func (h *MouseHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := h.mice.Delete(r.Context(), id)
	writeDeleted(w, h.logger, "Mouse", id, deleted, err)
}
