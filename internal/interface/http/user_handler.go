package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lostudea/lostudea-api/internal/application"
	"github.com/lostudea/lostudea-api/internal/domain/entity"
	"github.com/lostudea/lostudea-api/internal/interface/middleware"
	"github.com/lostudea/lostudea-api/pkg/helpers"
	"github.com/lostudea/lostudea-api/pkg/response"
	"github.com/lostudea/lostudea-api/pkg/validation"
)

type UserHandler struct {
	Svc     *application.UserService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type registerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	FullName    string `json:"full_name" binding:"required"`
	Password    string `json:"password" binding:"required,pwd"`
	PhoneNumber string `json:"phone_number"`
	IDNumber    string `json:"id_number"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type completeRegistrationRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	IDNumber    string `json:"id_number" binding:"required"`
}

type updateProfileRequest struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}

// Register creates a finder, or a seeker when both contact fields are
// supplied.
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	var (
		u   *entity.User
		err error
	)
	if req.PhoneNumber != "" && req.IDNumber != "" {
		u, err = h.Svc.RegisterSeeker(c.Request.Context(), req.Email, req.FullName, req.Password, req.PhoneNumber, req.IDNumber)
	} else {
		u, err = h.Svc.RegisterFinder(c.Request.Context(), req.Email, req.FullName, req.Password)
	}
	if err != nil {
		if errors.Is(err, application.ErrEmailTaken) {
			response.Error[any](c, http.StatusConflict, "email already registered", nil)
			return
		}
		response.Error[any](c, http.StatusBadRequest, "failed to register", err.Error())
		return
	}

	pair, err := h.Svc.IssueTokens(c.Request.Context(), u)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to start session", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusCreated, profileView(u), "registered", nil)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, res, "login successful", map[string]any{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

func (h *UserHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, _, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success[any](c, http.StatusOK, map[string]any{"refreshed": true}, "token refreshed", map[string]any{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

func (h *UserHandler) Logout(c *gin.Context) {
	h.Svc.Logout(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, map[string]any{"logged_out": true}, "logged out", nil)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, profileView(u), "profile", nil)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), uid, application.UpdateProfileInput{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "failed to update profile", err.Error())
		return
	}
	response.Success(c, http.StatusOK, profileView(u), "profile updated", nil)
}

// CompleteRegistration upgrades a finder to a seeker so they can file
// lost reports.
func (h *UserHandler) CompleteRegistration(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req completeRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.CompleteRegistration(c.Request.Context(), uid, req.PhoneNumber, req.IDNumber)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "failed to complete registration", err.Error())
		return
	}
	response.Success(c, http.StatusOK, profileView(u), "registration completed", nil)
}

func profileView(u *entity.User) gin.H {
	return gin.H{
		"id":           u.ID,
		"email":        u.Email,
		"full_name":    u.FullName,
		"role":         u.Role,
		"phone_number": u.PhoneNumber,
		"id_number":    u.IDNumber,
		"is_admin":     u.IsAdmin,
		"created_at":   u.CreatedAt,
		"updated_at":   u.UpdatedAt,
	}
}
