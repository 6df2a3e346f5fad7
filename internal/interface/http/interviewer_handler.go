package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/interview-tracker/internal/application"
	"github.com/oksasatya/interview-tracker/internal/interface/middleware"
	"github.com/oksasatya/interview-tracker/pkg/helpers"
	"github.com/oksasatya/interview-tracker/pkg/response"
)

type InterviewerHandler struct {
	Svc     *application.InterviewerService
	Cookies *helpers.CookieManager
	Logger  logrus.FieldLogger
}

func NewInterviewerHandler(svc *application.InterviewerService, cookies *helpers.CookieManager, logger logrus.FieldLogger) *InterviewerHandler {
	return &InterviewerHandler{Svc: svc, Cookies: cookies, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email" binding:"omitempty,email"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword" binding:"omitempty,pwd"`
}

// Register POST /api/auth/register
func (h *InterviewerHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	sess, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(c, h.Logger, err)
		return
	}
	h.Cookies.Set(c, sess.Token, sess.ExpiresAt)
	response.Success(c, http.StatusCreated, sess.Interviewer, "Registered successfully")
}

// Login POST /api/auth/login
func (h *InterviewerHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	sess, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(c, h.Logger, err)
		return
	}
	h.Cookies.Set(c, sess.Token, sess.ExpiresAt)
	response.Success(c, http.StatusOK, sess.Interviewer, "Login successful")
}

// Logout POST /api/auth/logout. Tokens are stateless, so this only expires the cookie.
func (h *InterviewerHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, nil, "Logged out successfully")
}

// Profile GET /api/auth/profile
func (h *InterviewerHandler) Profile(c *gin.Context) {
	me := middleware.Principal(c)
	if me == nil {
		handleServiceError(c, h.Logger, application.ErrUnauthorized)
		return
	}
	response.Success(c, http.StatusOK, me, "Profile retrieved")
}

// UpdateProfile PATCH /api/auth/profile
func (h *InterviewerHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	me := middleware.Principal(c)
	if me == nil {
		handleServiceError(c, h.Logger, application.ErrUnauthorized)
		return
	}
	updated, err := h.Svc.UpdateProfile(c.Request.Context(), me.ID, application.UpdateProfileInput{
		Name:            req.Name,
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		handleServiceError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, updated, "Profile updated successfully")
}
