package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/drishyamitra/drishyamitra/auth"
	"github.com/drishyamitra/drishyamitra/config"
	"github.com/drishyamitra/drishyamitra/db"
	"github.com/drishyamitra/drishyamitra/log"
)

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup handles POST /api/auth/signup
func Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name, email, and password are required"})
		return
	}

	if len(req.Password) < config.Get().MinPasswordLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password is too short"})
		return
	}

	existing, err := db.GetUserByEmail(req.Email)
	if err != nil {
		log.Error().Err(err).Msg("signup lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("password hashing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	user, err := db.CreateUser(strings.TrimSpace(req.Name), req.Email, hash)
	if err != nil {
		log.Error().Err(err).Msg("user creation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	token, err := auth.IssueToken(user.ID, user.Email)
	if err != nil {
		log.Error().Err(err).Msg("token issue failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	log.Info().Str("userId", user.ID).Msg("account created")
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// Login handles POST /api/auth/login
func Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	user, err := db.GetUserByEmail(req.Email)
	if err != nil {
		log.Error().Err(err).Msg("login lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := auth.IssueToken(user.ID, user.Email)
	if err != nil {
		log.Error().Err(err).Msg("token issue failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Me handles GET /api/auth/me
func Me(c *gin.Context) {
	user, err := db.GetUserByID(currentUserID(c))
	if err != nil {
		log.Error().Err(err).Msg("me lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load account"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
