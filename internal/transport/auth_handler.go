package transport

import (
	"net/http"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Answer   string `json:"answer"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest represents the password reset payload
type ForgotPasswordRequest struct {
	Email       string `json:"email"`
	Answer      string `json:"answer"`
	NewPassword string `json:"newPassword"`
}

// ProfileRequest represents the partial profile update payload
type ProfileRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// UserProfile represents user profile data returned to clients
type UserProfile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Role    int    `json:"role"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	middleware.Envelope
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// UserResponse wraps a single profile in the response envelope
type UserResponse struct {
	middleware.Envelope
	User UserProfile `json:"user"`
}

func profileOf(user *domain.User) UserProfile {
	return UserProfile{
		ID:      user.ID.String(),
		Name:    user.Name,
		Email:   user.Email,
		Phone:   user.Phone,
		Address: user.Address,
		Role:    user.Role,
	}
}

// AuthHandler handles HTTP requests for account operations
type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// RegisterRoutes registers the auth routes. The order handler registers
// its routes on the protected group because the original API nests order
// endpoints under the auth prefix.
func (h *AuthHandler) RegisterRoutes(r chi.Router, orders *OrderHandler, authMiddleware, adminMiddleware, rateLimiter func(http.Handler) http.Handler) {
	r.Route("/api/v1/auth", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			if rateLimiter != nil {
				r.Use(rateLimiter)
			}
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/forgot-password", h.ForgotPassword)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Put("/profile", h.UpdateProfile)
			r.Get("/user-auth", h.Probe)

			orders.RegisterRoutes(r, adminMiddleware)

			r.Group(func(r chi.Router) {
				r.Use(adminMiddleware)
				r.Get("/admin-auth", h.Probe)
			})
		})
	})
}

// validateRegistration checks each field in order, returning the message
// for the first failing check
func validateRegistration(req *RegisterRequest) (string, bool) {
	if strings.TrimSpace(req.Name) == "" {
		return "Name is required", false
	}
	if len(req.Name) > 150 {
		return "Name can not be longer than 150 characters", false
	}
	if middleware.ValidateVar(req.Email, "required,email") != nil {
		return "A valid email is required", false
	}
	if len(req.Password) < 6 {
		return "Password must be at least 6 characters long", false
	}
	if !middleware.ValidPhone(req.Phone) {
		return "The phone number must start with 6,8 or 9 and be 8 digits long", false
	}
	if strings.TrimSpace(req.Address) == "" {
		return "Address is required", false
	}
	if len(req.Address) > 150 {
		return "Address can not be longer than 150 characters", false
	}
	if strings.TrimSpace(req.Answer) == "" {
		return "Answer is required", false
	}
	if len(req.Answer) > 100 {
		return "Answer can not be longer than 100 characters", false
	}
	return "", true
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Registration decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg, ok := validateRegistration(&req); !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, msg)
		return
	}

	user, err := h.authService.Register(r.Context(), req.Name, req.Email, req.Password, req.Phone, req.Address, req.Answer)
	if err != nil {
		if err == repository.ErrUserAlreadyExists {
			middleware.RespondWithError(w, http.StatusConflict, "Already registered, please login")
			return
		}
		h.logger.Error("Registration failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	h.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, UserResponse{
		Envelope: middleware.Envelope{Success: true, Message: "User registered successfully"},
		User:     profileOf(user),
	})
}

// Login handles user authentication. Unknown email and wrong password
// produce identical responses.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		middleware.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if err == service.ErrInvalidCredentials {
			middleware.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.logger.Error("Login failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	h.logger.Info("User logged in", zap.String("user_id", user.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, LoginResponse{
		Envelope: middleware.Envelope{Success: true, Message: "Logged in successfully"},
		Token:    token,
		User:     profileOf(user),
	})
}

// ForgotPassword resets the password when email and security answer match
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Forgot-password decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if middleware.ValidateVar(req.Email, "required,email") != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "A valid email is required")
		return
	}
	if strings.TrimSpace(req.Answer) == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "Answer is required")
		return
	}
	if len(req.NewPassword) < 6 {
		middleware.RespondWithError(w, http.StatusBadRequest, "Password must be at least 6 characters long")
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), req.Email, req.Answer, req.NewPassword); err != nil {
		if err == service.ErrWrongEmailOrAnswer {
			middleware.RespondWithError(w, http.StatusNotFound, "Wrong email or security answer")
			return
		}
		h.logger.Error("Password reset failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, middleware.Envelope{
		Success: true,
		Message: "Password reset successfully",
	})
}

// UpdateProfile applies a partial profile update for the authenticated user
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized access")
		return
	}

	var req ProfileRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Profile decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Empty password means "no change"; anything else must meet the
	// registration minimum.
	if req.Password != "" && len(req.Password) < 6 {
		middleware.RespondWithError(w, http.StatusBadRequest, "Password must be at least 6 characters long")
		return
	}
	if len(req.Name) > 150 {
		middleware.RespondWithError(w, http.StatusBadRequest, "Name can not be longer than 150 characters")
		return
	}
	if req.Phone != "" && !middleware.ValidPhone(req.Phone) {
		middleware.RespondWithError(w, http.StatusBadRequest, "The phone number must start with 6,8 or 9 and be 8 digits long")
		return
	}
	if len(req.Address) > 150 {
		middleware.RespondWithError(w, http.StatusBadRequest, "Address can not be longer than 150 characters")
		return
	}

	user, err := h.authService.UpdateProfile(r.Context(), userID, service.ProfileUpdate{
		Name:     req.Name,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		h.logger.Error("Profile update failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, UserResponse{
		Envelope: middleware.Envelope{Success: true, Message: "Profile updated successfully"},
		User:     profileOf(user),
	})
}

// Probe confirms the caller passed the route's middleware chain
func (h *AuthHandler) Probe(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
