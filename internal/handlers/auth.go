package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"sprout/internal/session"
	"sprout/pkg/utils"
)

// Login RATE LIMITER (Brute Force Protection)
var loginVisitors = make(map[string]*rate.Limiter)
var loginMu sync.Mutex

// getLoginVisitor creates a strict rate limiter specifically for login endpoints.
// Limits: 1 request/sec, Burst: 10.
func getLoginVisitor(ip string) *rate.Limiter {
	loginMu.Lock()
	defer loginMu.Unlock()

	limiter, exists := loginVisitors[ip]
	if !exists {
		limiter = rate.NewLimiter(1, 10)
		loginVisitors[ip] = limiter
	}
	return limiter
}

// LoginRateLimitMiddleware enforces strict limits on authentication attempts.
func LoginRateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limiter := getLoginVisitor(utils.GetRealIP(r))
		if !limiter.Allow() {
			utils.WriteError(w, http.StatusTooManyRequests, utils.ErrAuthRateLimitExceed, "Too many login attempts. Please wait.")
			return
		}
		next(w, r)
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionUser is the identity shape returned by auth endpoints. Never the
// full user row: the password hash stays server-side.
type sessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// RegisterHandler creates an account and logs the caller straight in.
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	r.Body = http.MaxBytesReader(w, r.Body, 4096)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Invalid request body.")
		return
	}

	if req.Email == "" || req.Name == "" || req.Password == "" {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrValidationFailed, "Email, name, and password are required")
		return
	}
	if len(req.Password) < 6 {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrValidationFailed, "Password must be at least 6 characters long")
		return
	}

	user, err := h.repo.CreateUser(req.Email, req.Name, req.Password)
	if err != nil {
		h.writeRepoError(w, err, "User not found", "Registration failed")
		return
	}

	su := sessionUser{ID: user.ID, Email: user.Email, Name: user.Name}
	if err := h.sessions.Set(w, r, &session.Session{ID: su.ID, Email: su.Email, Name: su.Name}); err != nil {
		h.writeRepoError(w, err, "", "Registration failed")
		return
	}

	utils.WriteDataMessage(w, http.StatusOK, map[string]interface{}{"user": su}, "Registration successful")
}

// LoginHandler validates credentials and sets the signed session cookie.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	r.Body = http.MaxBytesReader(w, r.Body, 4096)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Invalid request body.")
		return
	}

	if req.Email == "" || req.Password == "" {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrValidationFailed, "Email and password are required")
		return
	}

	user, err := h.repo.Authenticate(req.Email, req.Password)
	if err != nil {
		// Artificial delay to slow down brute-force scripts
		time.Sleep(500 * time.Millisecond)
		h.writeRepoError(w, err, "", "Login failed")
		return
	}

	su := sessionUser{ID: user.ID, Email: user.Email, Name: user.Name}
	if err := h.sessions.Set(w, r, &session.Session{ID: su.ID, Email: su.Email, Name: su.Name}); err != nil {
		h.writeRepoError(w, err, "", "Login failed")
		return
	}

	utils.WriteDataMessage(w, http.StatusOK, map[string]interface{}{"user": su}, "Login successful")
}

// LogoutHandler invalidates the session cookie.
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	utils.WriteMessage(w, http.StatusOK, "Logout successful")
}

// MeHandler returns the identity carried by the current session.
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(r)
	if s == nil {
		utils.WriteError(w, http.StatusUnauthorized, utils.ErrAuthRequired, "Not authenticated")
		return
	}

	utils.WriteData(w, http.StatusOK, map[string]interface{}{
		"user": sessionUser{ID: s.ID, Email: s.Email, Name: s.Name},
	})
}

// DeleteAccountHandler removes the account with everything it owns: plants,
// watering history and photos go with it.
func (h *Handler) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	if err := h.repo.DeleteUserCascade(s.ID); err != nil {
		h.writeRepoError(w, err, "User not found", "Failed to delete account")
		return
	}

	h.sessions.Clear(w)
	utils.WriteMessage(w, http.StatusOK, "Account successfully deleted")
}
