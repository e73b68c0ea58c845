// server/internal/api/handlers/auth_handler.go
package handlers

import (
	"net/http"

	"coffee-os-api-server/internal/api/middleware"
	"coffee-os-api-server/internal/services"

	"github.com/gin-gonic/gin"
)

const EventSessionRevoked = "session.revoked"

type AuthHandler struct {
	Auth  *services.AuthService
	Users *services.UserService
	// Sessions is optional; it tells the user's open sockets about a logout.
	Sessions Notifier
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.Auth.Register(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully logged in",
		"user":    res.User,
		"token":   res.Token,
	})
}

// Logout revokes the token the request was authenticated with.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, _ := middleware.Claims(c)
	if claims != nil {
		if err := h.Auth.Logout(c.Request.Context(), claims); err != nil {
			_ = c.Error(err)
			return
		}
		if h.Sessions != nil {
			h.Sessions.Send(claims.UserID, EventSessionRevoked, gin.H{"jti": claims.ID})
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.Users.Get(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
