package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/lab-records/internal/service"
)

// UserHandler serves the /user routes.
//
// model.User tags its password hash json:"-", so none of these responses can
// leak it.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// Routes returns the router mounted at /user.
func (h *UserHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.Put("/update-password", h.HandleUpdatePassword)
	r.Delete("/delete/{id}", h.HandleDelete)
	r.Get("/{id}", h.HandleGet)
	return r
}

// HandleRegister creates an account.
//
// HTTP: POST /user/register
// REQUEST BODY: {"username": "alice", "email": "alice@x.com", "password": "secret1"}
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.users.Register(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeResult(w, http.StatusCreated, "User registered successfully", "user", user)
}

// HandleLogin checks credentials.
//
// HTTP: POST /user/login
// REQUEST BODY: {"username": "alice", "password": "secret1"}
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.users.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeResult(w, http.StatusOK, "Login successful", "user", user)
}

// HandleUpdatePassword replaces a password.
//
// HTTP: PUT /user/update-password
// REQUEST BODY: {"id": "...", "password": "newsecret"}
func (h *UserHandler) HandleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var in service.UpdatePasswordInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.users.UpdatePassword(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeResult(w, http.StatusOK, "Password updated successfully", "user", user)
}

// HandleGet returns one account.
//
// HTTP: GET /user/{id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeResult(w, http.StatusOK, "User retrieved successfully", "user", user)
}

// HandleDelete removes an account.
//
// HTTP: DELETE /user/delete/{id}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := h.users.DeleteUser(r.Context(), id)
	writeDeleted(w, h.logger, "User", id, deleted, err)
}
