package handlers

import (
	"net/http"
	"strings"

	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/auth"
	"github.com/gin-gonic/gin"
)

// AuthHandler exposes the registration/login/verification pipelines.
type AuthHandler struct {
	svc *auth.Service
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// rejectionJSON renders a pipeline rejection with its stable code.
func rejectionJSON(c *gin.Context, rej *auth.Rejection) {
	body := gin.H{"code": rej.Code, "error": rej.Message}
	if rej.Code == auth.CodeMeteredIPMismatch {
		body["registered_ip"] = rej.RegisteredIP
		body["current_ip"] = rej.CurrentIP
	}
	if rej.Code == auth.CodeNeedsVerification {
		body["needs_verification"] = true
	}
	c.JSON(rej.Status, body)
}

// registerRequest defines the request body for registration.
type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Username    string `json:"username"`
	DateOfBirth string `json:"date_of_birth"`
}

// Register creates a new player account.
func (h *AuthHandler) Register(c *gin.Context) {
	var body registerRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	result, rej, errRegister := h.svc.Register(c.Request.Context(), auth.RegisterInput{
		Email:       body.Email,
		Password:    body.Password,
		Username:    body.Username,
		DateOfBirth: body.DateOfBirth,
		IP:          c.ClientIP(),
		UserAgent:   c.GetHeader("User-Agent"),
	})
	if errRegister != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	if rej != nil {
		rejectionJSON(c, rej)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"user_id":    result.UserID,
		"email":      result.Email,
		"username":   result.Username,
		"verified":   result.Verified,
		"email_sent": result.EmailSent,
	})
}

// loginRequest defines the request body for login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a player and issues a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	result, rej, errLogin := h.svc.Login(c.Request.Context(), auth.LoginInput{
		Email:     body.Email,
		Password:  body.Password,
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	})
	if errLogin != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	if rej != nil {
		rejectionJSON(c, rej)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":    result.Token,
		"user_id":  result.UserID,
		"email":    result.Email,
		"username": result.Username,
	})
}

// Verify consumes an email verification token.
func (h *AuthHandler) Verify(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	rej, errVerify := h.svc.Verify(c.Request.Context(), token)
	if errVerify != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		return
	}
	if rej != nil {
		rejectionJSON(c, rej)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": true})
}

// resendRequest defines the request body for verification resend.
type resendRequest struct {
	Email string `json:"email"`
}

// Resend issues a fresh verification token and mails it.
func (h *AuthHandler) Resend(c *gin.Context) {
	var body resendRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	result, rej, errResend := h.svc.Resend(c.Request.Context(), body.Email)
	if errResend != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "resend failed"})
		return
	}
	if rej != nil {
		rejectionJSON(c, rej)
		return
	}
	c.JSON(http.StatusOK, gin.H{"email_sent": result.EmailSent})
}
