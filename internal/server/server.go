// Package server exposes the group service over a REST-style JSON API.
//
// Members read and write whole group documents keyed by group id; the admin
// dashboard logs in for an observer token and reads raw, unfiltered documents.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/kf5fay/group-gifting/internal/auth"
	"github.com/kf5fay/group-gifting/internal/httpx"
	"github.com/kf5fay/group-gifting/internal/metrics"
	"github.com/kf5fay/group-gifting/internal/service"
	"github.com/kf5fay/group-gifting/internal/storage"
	"github.com/kf5fay/group-gifting/internal/validate"
)

// Server wires the group service, auth manager and metrics into an HTTP
// handler.
type Server struct {
	groups *service.GroupService
	auth   *auth.Manager
	router *mux.Router
}

// New creates the server and registers all routes.
func New(groups *service.GroupService, authManager *auth.Manager, m *metrics.Metrics) *Server {
	s := &Server{
		groups: groups,
		auth:   authManager,
		router: mux.NewRouter(),
	}

	s.router.Use(timeRequests(m))

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", m.Handler()).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/groups/{groupId}", s.handlePutGroup).Methods("PUT", "POST")
	api.HandleFunc("/groups/{groupId}", s.handleGetGroup).Methods("GET")
	api.HandleFunc("/groups/{groupId}", s.handleDeleteGroup).Methods("DELETE")

	api.HandleFunc("/admin/login", s.handleAdminLogin).Methods("POST")
	api.HandleFunc("/admin/groups/{groupId}",
		requireObserver(s.auth, s.handleAdminGetGroup)).Methods("GET")

	return s
}

// Handler returns the fully wrapped handler chain.
func (s *Server) Handler() http.Handler {
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(s.router)

	return requestLogger(corsHandler)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handlePutGroup accepts a whole group document and upserts it. The body is
// the raw client JSON; validation problems come back as a list the front end
// shows verbatim.
func (s *Server) handlePutGroup(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["groupId"]

	body, err := io.ReadAll(io.LimitReader(r.Body, validate.MaxDocumentBytes+1))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "could not read request body")
		return
	}

	group, err := s.groups.CreateOrUpdate(r.Context(), groupID, body)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			httpx.ValidationErrors(w, verr.Problems)
			return
		}
		httpx.Error(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}

	httpx.JSON(w, http.StatusOK, group)
}

// handleGetGroup returns the member-specific view of a group. The member
// query parameter names the requester; their own claim state is hidden.
func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["groupId"]
	member := r.URL.Query().Get("member")
	if member == "" {
		httpx.Error(w, http.StatusBadRequest, "member query parameter required")
		return
	}

	group, err := s.groups.Get(r.Context(), groupID, member)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, "group not found")
			return
		}
		httpx.Error(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}

	httpx.JSON(w, http.StatusOK, group)
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["groupId"]

	if err := s.groups.Delete(r.Context(), groupID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, "group not found")
			return
		}
		httpx.Error(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleAdminLogin exchanges the admin password for an observer token.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := s.auth.Login(req.Password)
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "invalid password")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]string{"token": token})
}

// handleAdminGetGroup returns the raw stored document, unfiltered. Observer
// identity never touches the document; reads leave no trace in it.
func (s *Server) handleAdminGetGroup(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["groupId"]

	group, err := s.groups.Get(r.Context(), groupID, "")
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, "group not found")
			return
		}
		httpx.Error(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}

	httpx.JSON(w, http.StatusOK, group)
}
