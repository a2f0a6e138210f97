package handlers

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mango-roulette-backend/internal/config"
	"mango-roulette-backend/internal/models"
	"mango-roulette-backend/internal/services"
)

// AuthHandler is the login adapter in front of the core: it resolves
// credentials into a username once, and everything behind the
// middleware trusts that resolution.
type AuthHandler struct {
	redisService *services.RedisService
	jwtService   *services.JWTService
	cfg          *config.Config
}

func NewAuthHandler(redisService *services.RedisService, jwtService *services.JWTService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		redisService: redisService,
		jwtService:   jwtService,
		cfg:          cfg,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	salt := generateSalt()
	auth := &models.UserAuth{
		Username:     req.Username,
		PasswordHash: hashPassword(req.Password, salt),
		Salt:         salt,
		CreatedAt:    time.Now().Unix(),
	}

	created, err := h.redisService.SaveUserAuth(c.Request.Context(), auth)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to register",
			"details": err.Error(),
		})
		return
	}
	if !created {
		c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
		return
	}

	// Registration creates the account with all balances at zero.
	if _, err := h.redisService.GetAccount(c.Request.Context(), req.Username); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create account",
			"details": err.Error(),
		})
		return
	}

	h.issueSession(c, req.Username)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	auth, err := h.redisService.GetUserAuth(c.Request.Context(), req.Username)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	expected := hashPassword(req.Password, auth.Salt)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(auth.PasswordHash)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	h.issueSession(c, req.Username)
}

func (h *AuthHandler) issueSession(c *gin.Context, username string) {
	isAdmin := h.cfg.IsAdmin(username)
	sessionID := models.GenerateSessionID()

	session := &models.UserSession{
		Username:     username,
		SessionID:    sessionID,
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now().Unix(),
		LastAccessed: time.Now().Unix(),
	}

	if err := h.redisService.StoreUserSession(c.Request.Context(), session); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create session",
			"details": err.Error(),
		})
		return
	}

	token, err := h.jwtService.GenerateToken(username, sessionID, isAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to issue token",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"token":    token,
		"username": username,
		"is_admin": isAdmin,
	})
}

func generateSalt() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func hashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(salt + ":" + password))
	return hex.EncodeToString(sum[:])
}
