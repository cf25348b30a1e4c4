package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jpalmerr/livefeed/internal/accounts"
	"github.com/jpalmerr/livefeed/internal/posts"
)

// maxBodyBytes caps inbound JSON bodies.
const maxBodyBytes = 1 << 20

// AuthResponse is the result of account creation and login.
type AuthResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	User    *accounts.Public `json:"user,omitempty"`
}

// CreateAccountRequest is the body of POST /api/accounts.
type CreateAccountRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreatePostRequest is the body of POST /api/posts.
type CreatePostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	AuthorID string `json:"authorId"`
}

// ErrorResponse is the body of a failed non-auth request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Info is the body of GET /api/info.
type Info struct {
	Title   string `json:"title"`
	Viewers int    `json:"viewers"`
}

const (
	msgFieldsRequired      = "All fields are required"
	msgInvalidEmail        = "Please enter a valid email address"
	msgDuplicateEmail      = "An account with this email already exists"
	msgAccountCreated      = "Account created successfully"
	msgCredentialsRequired = "Email and password are required"
	msgInvalidCredentials  = "Invalid email or password"
	msgLoginSuccessful     = "Login successful"
	msgBadRequest          = "Invalid request body"
	msgInternal            = "Internal server error"
)

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if !s.decode(w, r, &req) {
		s.writeJSON(w, http.StatusBadRequest, AuthResponse{Message: msgBadRequest})
		return
	}

	user, err := s.cfg.Accounts.CreateAccount(req.Name, req.Email, req.Password)
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusCreated, AuthResponse{Success: true, Message: msgAccountCreated, User: &user})
	case errors.Is(err, accounts.ErrValidation):
		s.writeJSON(w, http.StatusBadRequest, AuthResponse{Message: msgFieldsRequired})
	case errors.Is(err, accounts.ErrInvalidEmail):
		s.writeJSON(w, http.StatusBadRequest, AuthResponse{Message: msgInvalidEmail})
	case errors.Is(err, accounts.ErrDuplicateEmail):
		s.writeJSON(w, http.StatusConflict, AuthResponse{Message: msgDuplicateEmail})
	default:
		s.logger.Error("create account failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, AuthResponse{Message: msgInternal})
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !s.decode(w, r, &req) {
		s.writeJSON(w, http.StatusBadRequest, AuthResponse{Message: msgBadRequest})
		return
	}

	user, err := s.cfg.Accounts.Authenticate(req.Email, req.Password)
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, AuthResponse{Success: true, Message: msgLoginSuccessful, User: &user})
	case errors.Is(err, accounts.ErrValidation):
		s.writeJSON(w, http.StatusBadRequest, AuthResponse{Message: msgCredentialsRequired})
	case errors.Is(err, accounts.ErrInvalidCredentials):
		s.writeJSON(w, http.StatusUnauthorized, AuthResponse{Message: msgInvalidCredentials})
	default:
		s.logger.Error("login failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, AuthResponse{Message: msgInternal})
	}
}

func (s *Server) handleListUsers(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.cfg.Accounts.List())
}

func (s *Server) handleListPosts(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.cfg.Posts.List())
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if !s.decode(w, r, &req) {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgBadRequest})
		return
	}

	post, err := s.cfg.Posts.Publish(req.Title, req.Content, req.AuthorID)
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusCreated, post)
	case errors.Is(err, posts.ErrAuthorNotFound):
		s.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Author not found"})
	default:
		s.logger.Error("publish failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgInternal})
	}
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	viewers := 0
	if s.cfg.Hub != nil {
		viewers = s.cfg.Hub.Len()
	}
	s.writeJSON(w, http.StatusOK, Info{Title: s.cfg.Title, Viewers: viewers})
}

// decode reads a JSON body into v and reports whether it succeeded.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.logger.Debug("rejected request body", "path", r.URL.Path, "error", err)
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}
