package api

import (
	"net/http"

	"shop-service/internal/models"
	"shop-service/internal/service"
	"shop-service/internal/session"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func sessionUser(u *models.User) *session.User {
	return &session.User{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Avatar: u.Avatar,
	}
}

// register creates an account and signs the new user in.
func (h *Handler) register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.session(c).User = sessionUser(user)
	c.JSON(http.StatusCreated, gin.H{"user": user.Public()})
}

// login verifies credentials and attaches the user to the session. The cart
// built while browsing as a guest is kept.
func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.session(c).User = sessionUser(user)
	c.JSON(http.StatusOK, gin.H{"user": user.Public()})
}

// logout detaches the user from the session.
func (h *Handler) logout(c *gin.Context) {
	h.session(c).User = nil
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// currentUser returns the signed-in account's profile.
func (h *Handler) currentUser(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), h.session(c).User.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.Public()})
}

// updateProfile edits the signed-in account's profile fields.
func (h *Handler) updateProfile(c *gin.Context) {
	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), h.session(c).User.ID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.session(c).User = sessionUser(user)
	c.JSON(http.StatusOK, gin.H{"user": user.Public()})
}

// changePassword rotates the signed-in account's password.
func (h *Handler) changePassword(c *gin.Context) {
	var req service.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.users.ChangePassword(c.Request.Context(), h.session(c).User.ID, &req); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
