package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"student-compass/internal/domain"
	"student-compass/internal/service"
)

// UserHandler mantiene dependencias para endpoints de usuarios.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
	jwtServ  *service.JWTService
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(logger *zap.Logger, userServ *service.UserService, jwtServ *service.JWTService) *UserHandler {
	return &UserHandler{
		logger:   logger,
		userServ: userServ,
		jwtServ:  jwtServ,
	}
}

type authResponse struct {
	domain.UserView
	Tokens *service.TokenPair `json:"tokens,omitempty"`
}

// Register maneja POST /register.
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Username       string `json:"username" binding:"required"`
		Password       string `json:"password" binding:"required"`
		EducationLevel string `json:"education_level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err, "register")
		return
	}

	view, err := h.userServ.Register(c.Request.Context(), service.RegisterInput{
		Username:       req.Username,
		Password:       req.Password,
		EducationLevel: req.EducationLevel,
	})
	if err != nil {
		respondError(c, h.logger, err, "register user")
		return
	}
	c.JSON(http.StatusCreated, view)
}

// Login maneja POST /login. Los tokens solo se emiten con JWT configurado.
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err, "login")
		return
	}

	user, view, err := h.userServ.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, h.logger, err, "login")
		return
	}

	resp := authResponse{UserView: view}
	if h.jwtServ.Enabled() {
		tokens, err := h.jwtServ.GeneratePair(c.Request.Context(), user)
		if err != nil {
			h.logger.Error("jwt issue failed", zap.Error(err))
			writeError(c, http.StatusInternalServerError, "could not issue tokens")
			return
		}
		resp.Tokens = &tokens
	}
	c.JSON(http.StatusOK, resp)
}

// RefreshToken maneja POST /auth/refresh.
func (h *UserHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err, "refresh")
		return
	}
	if !h.jwtServ.Enabled() {
		writeError(c, http.StatusInternalServerError, "jwt not configured")
		return
	}
	tokens, err := h.jwtServ.RefreshPair(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, http.StatusUnauthorized, "invalid token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// Logout maneja POST /auth/logout.
func (h *UserHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err, "logout")
		return
	}
	if !h.jwtServ.Enabled() {
		writeError(c, http.StatusInternalServerError, "jwt not configured")
		return
	}
	_ = h.jwtServ.RevokeRefresh(c.Request.Context(), req.RefreshToken)
	c.Status(http.StatusNoContent)
}

// GetUser maneja GET /user/:id.
func (h *UserHandler) GetUser(c *gin.Context) {
	view, err := h.userServ.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "get user")
		return
	}
	c.JSON(http.StatusOK, view)
}
