package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/lab-records/internal/service"
)

// LabHandler serves the /lab and /protocol routes.
type LabHandler struct {
	labs   *service.LabService
	logger *slog.Logger
}

// NewLabHandler creates a new LabHandler.
func NewLabHandler(labs *service.LabService, logger *slog.Logger) *LabHandler {
	return &LabHandler{labs: labs, logger: logger}
}

// LabRoutes returns the router mounted at /lab.
func (h *LabHandler) LabRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/create", h.HandleCreateLab)
	r.Get("/", h.HandleListLabs)
	r.Get("/{id}", h.HandleGetLab)
	return r
}

// ProtocolRoutes returns the router mounted at /protocol.
func (h *LabHandler) ProtocolRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/create", h.HandleCreateProtocol)
	r.Get("/{id}", h.HandleGetProtocol)
	return r
}

// HandleCreateLab stores a lab.
//
// HTTP: POST /lab/create
// REQUEST BODY: {"name": "Smith Lab"}
func (h *LabHandler) HandleCreateLab(w http.ResponseWriter, r *http.Request) {
	var in service.CreateLabInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	lab, err := h.labs.CreateLab(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeResult(w, http.StatusCreated, "Lab created successfully", "lab", lab)
}

// HandleListLabs returns every lab.
//
// HTTP: GET /lab/
func (h *LabHandler) HandleListLabs(w http.ResponseWriter, r *http.Request) {
	labs, err := h.labs.ListLabs(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeResult(w, http.StatusOK, fmt.Sprintf("Found %d labs", len(labs)), "labs", labs)
}

// HandleGetLab returns one lab.
//
// HTTP: GET /lab/{id}
func (h *LabHandler) HandleGetLab(w http.ResponseWriter, r *http.Request) {
	lab, err := h.labs.GetLab(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeResult(w, http.StatusOK, "Lab retrieved successfully", "lab", lab)
}

// HandleCreateProtocol stores a protocol.
//
// HTTP: POST /protocol/create
// REQUEST BODY: {"title": "IACUC-42", "labId": "..."}
func (h *LabHandler) HandleCreateProtocol(w http.ResponseWriter, r *http.Request) {
	var in service.CreateProtocolInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	protocol, err := h.labs.CreateProtocol(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeResult(w, http.StatusCreated, "Protocol created successfully", "protocol", protocol)
}

// HandleGetProtocol returns one protocol.
//
// HTTP: GET /protocol/{id}
func (h *LabHandler) HandleGetProtocol(w http.ResponseWriter, r *http.Request) {
	protocol, err := h.labs.GetProtocol(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeResult(w, http.StatusOK, "Protocol retrieved successfully", "protocol", protocol)
}
