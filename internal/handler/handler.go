package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Dan9191/bankshot/internal/middleware"
	"github.com/Dan9191/bankshot/internal/models"
	"github.com/Dan9191/bankshot/internal/service"
	"github.com/Dan9191/bankshot/internal/session"
	"github.com/Dan9191/bankshot/internal/utils"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc      *service.Service
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

func NewHandler(svc *service.Service, log *logrus.Logger, allowedOrigins []string) *Handler {
	h := &Handler{svc: svc, log: log}
	h.upgrader = websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)}
	return h
}

// Router registers every route on a new mux router
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods("GET")

	// Public routes
	r.HandleFunc("/api/auth/signup", h.SignUp).Methods("POST")
	r.HandleFunc("/api/auth/signin", h.SignIn).Methods("POST")
	r.HandleFunc("/api/auth/forgot-password", h.ForgotPassword).Methods("POST")
	r.HandleFunc("/api/auth/reset-password", h.ResetPassword).Methods("POST")
	r.HandleFunc("/api/session", h.SessionState).Methods("GET")

	// Protected routes
	auth := middleware.AuthMiddleware(h.svc)
	api := r.PathPrefix("/api").Subrouter()
	api.Use(auth)
	api.HandleFunc("/auth/signout", h.SignOut).Methods("POST")
	api.HandleFunc("/session/tutorial", h.CompleteTutorial).Methods("POST")
	api.HandleFunc("/session/navigate", h.Navigate).Methods("POST")
	api.HandleFunc("/dashboard", h.Dashboard).Methods("GET")
	api.HandleFunc("/dashboard/refresh", h.Refresh).Methods("POST")
	api.HandleFunc("/dashboard/goal", h.UpdateGoal).Methods("POST")
	api.HandleFunc("/dashboard/simulate", h.Simulate).Methods("POST")
	api.HandleFunc("/dashboard/chat", h.Chat).Methods("POST")
	api.HandleFunc("/dashboard/statement.xml", h.Statement).Methods("GET")

	r.Handle("/ws/chat", auth(http.HandlerFunc(h.ChatSocket))).Methods("GET")
	return r
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type signUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp handles user registration
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrWeakPassword):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrUserExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case err != nil:
		h.log.Errorf("Registration failed: %v", err)
		http.Error(w, "Registration failed", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusCreated, user)
	}
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	Token string        `json:"token"`
	State session.State `json:"state"`
	View  session.View  `json:"view"`
}

// SignIn handles user authentication
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decode(w, r, &req) {
		return
	}
	token, sess, err := h.svc.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case err != nil:
		h.log.Errorf("Sign-in failed: %v", err)
		http.Error(w, "Sign-in failed", http.StatusInternalServerError)
	default:
		st := sess.State()
		writeJSON(w, http.StatusOK, signInResponse{Token: token, State: st, View: session.Route(st)})
	}
}

// SignOut ends the caller's session
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())
	h.svc.Logout(sess)
	w.WriteHeader(http.StatusNoContent)
}

// ForgotPassword starts a password reset
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}
	err := h.svc.ForgotPassword(r.Context(), req.Email)
	switch {
	case errors.Is(err, service.ErrInvalidEmail):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case err != nil:
		h.log.Errorf("Password reset failed: %v", err)
		http.Error(w, "Password reset failed", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusAccepted, map[string]string{
			"message": "If that email is registered, a reset link is on its way.",
		})
	}
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPassword sets a new password from an emailed reset token
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	err := h.svc.ResetPassword(r.Context(), req.Token, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidResetToken), errors.Is(err, service.ErrWeakPassword):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case err != nil:
		h.log.Errorf("Password reset failed: %v", err)
		http.Error(w, "Password reset failed", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

type stateResponse struct {
	State session.State `json:"state"`
	View  session.View  `json:"view"`
}

// SessionState returns the navigation state. Callers without a valid token
// get the signed-out landing state.
func (h *Handler) SessionState(w http.ResponseWriter, r *http.Request) {
	st := session.AuthChecked(session.Initial())
	if token := middleware.BearerToken(r); token != "" {
		if sess, err := h.svc.Authenticate(token); err == nil {
			st = sess.State()
		}
	}
	writeJSON(w, http.StatusOK, stateResponse{State: st, View: session.Route(st)})
}

// CompleteTutorial hides the tutorial
func (h *Handler) CompleteTutorial(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())
	st := h.svc.CompleteTutorial(sess)
	writeJSON(w, http.StatusOK, stateResponse{State: st, View: session.Route(st)})
}

// Navigate moves the session to another page
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if !decode(w, r, &req) {
		return
	}
	sess, _ := middleware.SessionFrom(r.Context())
	st := h.svc.Navigate(sess, req.Path)
	writeJSON(w, http.StatusOK, stateResponse{State: st, View: session.Route(st)})
}

// Dashboard returns the dashboard, building the first snapshot on demand
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())
	if snap, _ := sess.Snapshot(); snap == nil && !sess.Loading() {
		h.svc.Refresh(r.Context(), sess)
	}
	writeJSON(w, http.StatusOK, h.svc.Dashboard(sess))
}

// Refresh replaces the snapshot
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())
	h.svc.Refresh(r.Context(), sess)
	writeJSON(w, http.StatusOK, h.svc.Dashboard(sess))
}

// UpdateGoal sets the savings goal. The goal may be sent as a number or as
// the raw text of the input field; invalid input is ignored.
func (h *Handler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Goal json.RawMessage `json:"goal"`
	}
	if !decode(w, r, &req) {
		return
	}
	input := strings.Trim(string(bytes.TrimSpace(req.Goal)), `"`)

	sess, _ := middleware.SessionFrom(r.Context())
	applied, err := h.svc.UpdateGoal(r.Context(), sess, input)
	if !applied {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		h.log.WithField("session", sess.ID).Debugf("Goal kept locally: %v", err)
	}
	writeJSON(w, http.StatusOK, h.svc.Dashboard(sess))
}

// Simulate runs an investment simulation
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())
	writeJSON(w, http.StatusOK, h.svc.Simulate(r.Context(), sess))
}

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	Answer string            `json:"answer"`
	Chat   []models.ChatTurn `json:"chat"`
}

// Chat answers one question
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decode(w, r, &req) {
		return
	}
	sess, _ := middleware.SessionFrom(r.Context())
	answer, err := h.svc.Ask(r.Context(), sess, req.Question)
	switch {
	case errors.Is(err, service.ErrEmptyQuestion):
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, service.ErrChatBusy):
		http.Error(w, err.Error(), http.StatusConflict)
	case err != nil:
		h.log.Errorf("Chat failed: %v", err)
		http.Error(w, "Chat failed", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, chatResponse{Answer: answer, Chat: sess.Chat()})
	}
}

// Statement exports the current snapshot as XML
func (h *Handler) Statement(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())
	snap, derived := sess.Snapshot()
	if snap == nil {
		http.Error(w, "No snapshot yet", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := utils.WriteStatement(&buf, snap, derived, time.Now()); err != nil {
		h.log.Errorf("Statement export failed: %v", err)
		http.Error(w, "Statement export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Content-Disposition", `attachment; filename="statement.xml"`)
	w.Write(buf.Bytes())
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}
