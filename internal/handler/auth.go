package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/flatwise/internal/auth"
	"github.com/mmynk/flatwise/internal/service"
)

// AuthHandler serves registration, token issuance and /me.
type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(s *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: s}
}

type registerReq struct {
	FirstName string `json:"first_name" binding:"required,max=64"`
	LastName  string `json:"last_name" binding:"max=64"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
}

// tokenReq accepts an OAuth2 password form (username=email) or JSON.
type tokenReq struct {
	Email    string `form:"username" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type tokenResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Register handles POST /users.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, badRequest("%v", err))
		return
	}

	user, err := h.auth.Register(c.Request.Context(), auth.Registration{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}, req.Password)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusCreated, newUserView(user))
}

// Token handles POST /token.
func (h *AuthHandler) Token(c *gin.Context) {
	var req tokenReq
	if err := c.ShouldBind(&req); err != nil {
		Error(c, badRequest("%v", err))
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusOK, tokenResp{
		AccessToken: session.Token,
		TokenType:   "bearer",
		ExpiresIn:   session.ExpiresIn,
	})
}

// Me handles GET /me.
func (h *AuthHandler) Me(c *gin.Context) {
	Success(c, http.StatusOK, newUserView(actor(c)))
}
