package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"memberportal/internal/auth"
	"memberportal/internal/metrics"
	"memberportal/internal/roster"
)

func sessionResponse(profile roster.Profile, pair auth.TokenPair) gin.H {
	return gin.H{
		"user":             profile,
		"accessToken":      pair.AccessToken,
		"refreshToken":     pair.RefreshToken,
		"accessExpiresAt":  pair.AccessExp,
		"refreshExpiresAt": pair.RefreshExp,
	}
}

// Signup creates an account and opens a session.
func (h *Handler) Signup(c *gin.Context) {
	var req struct {
		Email           string `json:"email" binding:"required"`
		Password        string `json:"password" binding:"required"`
		ConfirmPassword string `json:"confirmPassword" binding:"required"`
		FirstName       string `json:"firstName" binding:"required"`
		LastName        string `json:"lastName" binding:"required"`
		Classification  string `json:"classification"`
		CaptchaToken    string `json:"captchaToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	profile, pair, err := h.auth.Signup(c.Request.Context(), auth.SignupInput{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Classification:  roster.Classification(req.Classification),
		CaptchaToken:    req.CaptchaToken,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionResponse(profile, pair))
}

// Login checks credentials and opens a session.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email        string `json:"email" binding:"required"`
		Password     string `json:"password" binding:"required"`
		CaptchaToken string `json:"captchaToken"`
		Remember     bool   `json:"remember"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	profile, pair, err := h.auth.Login(c.Request.Context(), auth.LoginInput{
		Email:        req.Email,
		Password:     req.Password,
		CaptchaToken: req.CaptchaToken,
		Remember:     req.Remember,
	})
	if err != nil {
		metrics.Logins.WithLabelValues("failure").Inc()
		fail(c, err)
		return
	}
	metrics.Logins.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, sessionResponse(profile, pair))
}

// Logout ends the caller's session.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), actor(c).ID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// RequestReset emails a password reset link. The response is the same
// whether or not the address is registered.
func (h *Handler) RequestReset(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.auth.RequestReset(c.Request.Context(), req.Email); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "if that address is registered, a reset link is on its way"})
}

// ConfirmReset sets a new password from a reset token.
func (h *Handler) ConfirmReset(c *gin.Context) {
	var req struct {
		Token           string `json:"token" binding:"required"`
		Password        string `json:"password" binding:"required"`
		ConfirmPassword string `json:"confirmPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.auth.ConfirmReset(c.Request.Context(), req.Token, req.Password, req.ConfirmPassword); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "password updated"})
}

// Me returns the caller's own profile.
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, actor(c))
}

// UpdateClassification lets members update their own academic year.
func (h *Handler) UpdateClassification(c *gin.Context) {
	var req struct {
		Classification string `json:"classification" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := h.roster.UpdateOwnClassification(c.Request.Context(), actor(c), roster.Classification(req.Classification))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}
