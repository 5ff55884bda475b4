package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gas-booking-service/internal/usecase/user"
)

// UserHandler handles HTTP requests for registration and login
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// RegisterRequest represents the HTTP request body for registration
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	PhoneNo  string `json:"phoneNo"`
	Password string `json:"password"`
}

// LoginRequest represents the HTTP request body for login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles POST /register
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid register request", zap.Error(err))
		c.String(http.StatusBadRequest, msgInvalidBody)
		return
	}

	_, err := h.uc.Register(c.Request.Context(), user.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		PhoneNo:  req.PhoneNo,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.log, err, http.StatusBadRequest, "Registration failed")
		return
	}

	c.String(http.StatusCreated, "User registered")
}

// Login handles POST /login. Every failure, including an unknown user, is a 400.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid login request", zap.Error(err))
		c.String(http.StatusBadRequest, msgInvalidBody)
		return
	}

	if _, err := h.uc.Login(c.Request.Context(), user.LoginRequest{
		Username: req.Username,
		Password: req.Password,
	}); err != nil {
		respondError(c, h.log, err, http.StatusBadRequest, "Login failed")
		return
	}

	c.String(http.StatusOK, "Login successful")
}
