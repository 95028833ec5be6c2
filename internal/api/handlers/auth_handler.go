// server/internal/api/handlers/auth_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"garden-application-api-server/internal/api/middleware"
	"garden-application-api-server/internal/auth"
	"garden-application-api-server/internal/docstore"
	"garden-application-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type AuthHandler struct {
	Store  docstore.Store
	Issuer *auth.Issuer
	Logger *zap.Logger
}

type SignUpRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// SignUp creates an account and signs the new user in.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := normalizeEmail(req.Email)

	existing, err := h.Store.List(c.Request.Context(), docstore.Users, bson.M{"email": email})
	if err != nil {
		h.Logger.Error("Failed to query users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking for user"})
		return
	}
	if len(existing) > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Email:       email,
		DisplayName: strings.TrimSpace(req.Username),
		Password:    hashedPassword,
		CreatedAt:   time.Now().UTC(),
	}
	user.ID, err = h.Store.Add(c.Request.Context(), docstore.Users, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
		h.Logger.Error("Failed to create user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	h.respondWithToken(c, http.StatusCreated, user)
}

// SignIn exchanges email and password for a token.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	docs, err := h.Store.List(c.Request.Context(), docstore.Users, bson.M{"email": normalizeEmail(req.Email)})
	if err != nil {
		h.Logger.Error("Failed to query users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}

	var user models.User
	if len(docs) == 0 || bson.Unmarshal(docs[0], &user) != nil || !auth.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

// Me returns the signed-in user.
func (h *AuthHandler) Me(c *gin.Context) {
	raw, err := h.Store.Get(c.Request.Context(), docstore.Users, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.Logger.Error("Failed to load user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}

	var user models.User
	if err := bson.Unmarshal(raw, &user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, user models.User) {
	token, err := h.Issuer.Generate(user.ID, user.Email, user.DisplayName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(status, AuthResponse{Token: token, User: user})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
