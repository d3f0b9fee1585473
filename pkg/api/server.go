// Package api provides the HTTP API for comments and notifications.
package api

import (
	"encoding/json"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/icinga/icingacore/pkg/comments"
	"github.com/icinga/icingacore/pkg/logging"
	"github.com/icinga/icingacore/pkg/metrics"
	"github.com/icinga/icingacore/pkg/notification"
	"github.com/icinga/icingacore/pkg/objects"
	"github.com/icinga/icingacore/pkg/types"
	"go.uber.org/zap"
	"net/http"
	"strconv"
	"time"
)

// ErrorResponse is an error in problem+json format.
type ErrorResponse struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// AddCommentRequest is the body of POST /v1/comments.
type AddCommentRequest struct {
	Host    string            `json:"host"`
	Service string            `json:"service"`
	Type    types.CommentType `json:"type"`
	Author  string            `json:"author"`
	Text    string            `json:"text"`
	// ExpireTime in milliseconds since the epoch. Zero or absent means never.
	ExpireTime types.UnixMilli `json:"expire_time"`
}

// AddCommentResponse is returned after adding a comment.
type AddCommentResponse struct {
	ID       string `json:"id"`
	LegacyID int    `json:"legacy_id"`
}

// CommentResponse is a comment together with its owner.
type CommentResponse struct {
	*comments.Comment
	Host    string `json:"host"`
	Service string `json:"service,omitempty"`
}

// SendRequest is the body of the notification endpoints.
type SendRequest struct {
	Type types.NotificationType `json:"type"`
}

// Server serves the HTTP API.
type Server struct {
	registry *objects.Registry
	cache    *comments.Cache
	engine   *notification.Engine
	logger   *logging.Logger
	config   Config
}

// NewServer returns a new Server.
func NewServer(
	registry *objects.Registry, cache *comments.Cache, engine *notification.Engine, logger *logging.Logger, config Config,
) *Server {
	return &Server{
		registry: registry,
		cache:    cache,
		engine:   engine,
		logger:   logger,
		config:   config,
	}
}

// Handler returns the router of all API endpoints and /metrics.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.config.RequestTimeout))
	r.Use(s.logRequests)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/comments", s.AddComment)
		r.Get("/comments/{id}", s.GetComment)
		r.Delete("/comments/{id}", s.RemoveComment)
		r.Get("/comments/legacy/{legacy_id}", s.GetLegacyComment)
		r.Delete("/comments/legacy/{legacy_id}", s.RemoveLegacyComment)

		r.Delete("/hosts/{host}/comments", s.RemoveAllComments)
		r.Delete("/hosts/{host}/services/{service}/comments", s.RemoveAllComments)
		r.Post("/hosts/{host}/notify", s.NotifyService)
		r.Post("/hosts/{host}/services/{service}/notify", s.NotifyService)

		r.Post("/notifications/{name}/send", s.SendNotification)
	})

	r.Handle("/metrics", metrics.Handler())

	return r
}

// AddComment handles POST /v1/comments.
func (s *Server) AddComment(w http.ResponseWriter, r *http.Request) {
	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body", err.Error())
		return
	}

	if req.Host == "" || req.Author == "" || req.Text == "" {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "Missing required fields", "host, author and text are required")
		return
	}

	if !req.Type.Valid() {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid type", "type must be one of 1, 2, 3 or 4")
		return
	}

	owner, ok := s.owner(w, req.Host, req.Service)
	if !ok {
		return
	}

	id := s.cache.AddComment(owner, req.Type, req.Author, req.Text, req.ExpireTime.Time())

	comment, ok := owner.Comments().Get(id)
	if !ok {
		s.writeError(w, http.StatusConflict, "conflict", "Comment removed concurrently", "")
		return
	}

	s.writeJSON(w, http.StatusCreated, AddCommentResponse{ID: id, LegacyID: comment.LegacyID})
}

// GetComment handles GET /v1/comments/{id}.
func (s *Server) GetComment(w http.ResponseWriter, r *http.Request) {
	s.writeComment(w, chi.URLParam(r, "id"))
}

// GetLegacyComment handles GET /v1/comments/legacy/{legacy_id}.
func (s *Server) GetLegacyComment(w http.ResponseWriter, r *http.Request) {
	id, ok := s.legacyID(w, r)
	if !ok {
		return
	}

	s.writeComment(w, id)
}

// RemoveComment handles DELETE /v1/comments/{id}. Unknown IDs are ignored.
func (s *Server) RemoveComment(w http.ResponseWriter, r *http.Request) {
	s.cache.RemoveComment(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// RemoveLegacyComment handles DELETE /v1/comments/legacy/{legacy_id}.
func (s *Server) RemoveLegacyComment(w http.ResponseWriter, r *http.Request) {
	id, ok := s.legacyID(w, r)
	if !ok {
		return
	}

	s.cache.RemoveComment(id)
	w.WriteHeader(http.StatusNoContent)
}

// RemoveAllComments handles DELETE /v1/hosts/{host}[/services/{service}]/comments.
func (s *Server) RemoveAllComments(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, chi.URLParam(r, "host"), chi.URLParam(r, "service"))
	if !ok {
		return
	}

	s.cache.RemoveAllComments(owner)
	w.WriteHeader(http.StatusNoContent)
}

// SendNotification handles POST /v1/notifications/{name}/send.
func (s *Server) SendNotification(w http.ResponseWriter, r *http.Request) {
	req, ok := s.sendRequest(w, r)
	if !ok {
		return
	}

	n, err := s.registry.Notification(chi.URLParam(r, "name"))
	if err != nil {
		s.writeNotFound(w, err)
		return
	}

	if err := s.engine.BeginExecuteNotification(r.Context(), n, req.Type); err != nil {
		s.writeDispatchError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// NotifyService handles POST /v1/hosts/{host}[/services/{service}]/notify.
func (s *Server) NotifyService(w http.ResponseWriter, r *http.Request) {
	req, ok := s.sendRequest(w, r)
	if !ok {
		return
	}

	service, err := s.registry.Service(chi.URLParam(r, "host"), chi.URLParam(r, "service"))
	if err != nil {
		s.writeNotFound(w, err)
		return
	}

	if err := s.engine.NotifyService(r.Context(), service, req.Type); err != nil {
		s.writeDispatchError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// owner resolves a host or, if service is not empty, a service. It writes 404 if there is no such object.
func (s *Server) owner(w http.ResponseWriter, host, service string) (comments.Owner, bool) {
	var owner comments.Owner
	var err error

	if service == "" {
		owner, err = s.registry.Host(host)
	} else {
		owner, err = s.registry.Service(host, service)
	}

	if err != nil {
		s.writeNotFound(w, err)
		return nil, false
	}

	return owner, true
}

// legacyID resolves the legacy_id URL parameter to a comment ID. It writes 400 or 404 on failure.
func (s *Server) legacyID(w http.ResponseWriter, r *http.Request) (string, bool) {
	legacyID, err := strconv.Atoi(chi.URLParam(r, "legacy_id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid legacy ID", "legacy_id must be an integer")
		return "", false
	}

	id, ok := s.cache.GetCommentIDFromLegacyID(legacyID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "not_found", "Comment not found", "")
		return "", false
	}

	return id, true
}

func (s *Server) sendRequest(w http.ResponseWriter, r *http.Request) (SendRequest, bool) {
	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body", err.Error())
		return req, false
	}

	if req.Type.String() == types.UnknownNotificationType {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid type", "type must be a notification type, e.g. PROBLEM")
		return req, false
	}

	return req, true
}

func (s *Server) writeComment(w http.ResponseWriter, id string) {
	owner, ok := s.cache.GetOwnerByCommentID(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "not_found", "Comment not found", "")
		return
	}

	comment, ok := owner.Comments().Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "not_found", "Comment not found", "")
		return
	}

	res := CommentResponse{Comment: comment}
	switch o := owner.(type) {
	case *objects.Host:
		res.Host = o.Name()
	case *objects.Service:
		res.Host = o.HostName()
		res.Service = o.ShortName()
	}

	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) writeNotFound(w http.ResponseWriter, err error) {
	s.writeError(w, http.StatusNotFound, "not_found", "Object not found", err.Error())
}

func (s *Server) writeDispatchError(w http.ResponseWriter, err error) {
	if objects.IsNotFound(err) {
		s.writeNotFound(w, err)
		return
	}

	s.logger.Errorw("Can't dispatch notification", zap.Error(err))
	s.writeError(w, http.StatusInternalServerError, "dispatch_error", "Can't dispatch notification", err.Error())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debugw("Can't write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, errType, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Type:   errType,
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Debugw("Handled request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
