package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/lab-records/internal/service"
)

// LogEntryHandler serves the /log-entry routes.
type LogEntryHandler struct {
	entries *service.LogEntryService
	logger  *slog.Logger
}

// NewLogEntryHandler creates a new LogEntryHandler.
func NewLogEntryHandler(entries *service.LogEntryService, logger *slog.Logger) *LogEntryHandler {
	return &LogEntryHandler{entries: entries, logger: logger}
}

// Routes returns the router mounted at /log-entry.
func (h *LogEntryHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/create", h.HandleCreate)
	r.Get("/mouse/{mouseId}", h.HandleListByMouse)
	r.Get("/lab/{labId}", h.HandleListByLab)
	r.Get("/user/{userId}", h.HandleListByUser)
	r.Put("/update/{id}", h.HandleUpdate)
	r.Delete("/delete/{id}", h.HandleDelete)
	r.Get("/{id}", h.HandleGet)
	return r
}

// HandleCreate posts an entry.
//
// HTTP: POST /log-entry/create
// REQUEST BODY: {"userId": "...", "labId": "...", "mice": ["..."], "content": "..."}
func (h *LogEntryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.PostLogEntryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	entry, err := h.entries.Post(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeResult(w, http.StatusCreated, "Log entry created successfully", "logEntry", entry)
}

// HandleGet returns one entry.
//
// HTTP: GET /log-entry/{id}
func (h *LogEntryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	entry, err := h.entries.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeResult(w, http.StatusOK, "Log entry retrieved successfully", "logEntry", entry)
}

// HandleListByMouse returns entries that mention a mouse.
//
// HTTP: GET /log-entry/mouse/{mouseId}
func (h *LogEntryHandler) HandleListByMouse(w http.ResponseWriter, r *http.Request) {
	entries, err := h.entries.ListByMouse(r.Context(), chi.URLParam(r, "mouseId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeResult(w, http.StatusOK, fmt.Sprintf("Found %d log entries for mouse", len(entries)), "logEntries", entries)
}

// HandleListByLab returns a lab's entries.
//
// HTTP: GET /log-entry/lab/{labId}
func (h *LogEntryHandler) HandleListByLab(w http.ResponseWriter, r *http.Request) {
	entries, err := h.entries.ListByLab(r.Context(), chi.URLParam(r, "labId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeResult(w, http.StatusOK, fmt.Sprintf("Found %d log entries for lab", len(entries)), "logEntries", entries)
}

// HandleListByUser returns a user's entries.
//
// HTTP: GET /log-entry/user/{userId}
func (h *LogEntryHandler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	entries, err := h.entries.ListByUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeResult(w, http.StatusOK, fmt.Sprintf("Found %d log entries by user", len(entries)), "logEntries", entries)
}

// HandleUpdate replaces an entry's content.
//
// HTTP: PUT /log-entry/update/{id}
// REQUEST BODY: {"content": "..."}
func (h *LogEntryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, h.logger, err)
		return
	}

	entry, err := h.entries.UpdateContent(r.Context(), chi.URLParam(r, "id"), body.Content)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeResult(w, http.StatusOK, "Log entry updated successfully", "logEntry", entry)
}

// HandleDelete removes an entry.
//
// HTTP: DELETE /log-entry/delete/{id}
func (h *LogEntryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := h.entries.Delete(r.Context(), id)
	writeDeleted(w, h.logger, "Log entry", id, deleted, err)
}
