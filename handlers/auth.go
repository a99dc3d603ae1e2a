package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/lifeshield/lifeshield-api/internal/config"
	"github.com/lifeshield/lifeshield-api/internal/identity"
	"github.com/lifeshield/lifeshield-api/internal/resource"
	"github.com/lifeshield/lifeshield-api/internal/tokens"
	"github.com/lifeshield/lifeshield-api/pkg/logger"
	"github.com/lifeshield/lifeshield-api/pkg/metrics"
	"github.com/lifeshield/lifeshield-api/pkg/middleware"
)

// LoginRequest carries the Firebase ID token the client obtained from its
// sign-in flow.
type LoginRequest struct {
	IDToken string `json:"idToken"`
}

// AuthHandler exchanges verified external credentials for local bearer tokens
// and keeps a customer record per sign-in.
type AuthHandler struct {
	cfg       *config.Config
	verifier  identity.Verifier
	customers resource.Store
}

func NewAuthHandler(cfg *config.Config, v identity.Verifier, customers resource.Store) *AuthHandler {
	return &AuthHandler{cfg: cfg, verifier: v, customers: customers}
}

// Register mounts the customer auth routes. limit is applied to login only;
// pass nil to skip rate limiting (tests).
func (h *AuthHandler) Register(rg *gin.RouterGroup, limit gin.HandlerFunc) {
	login := []gin.HandlerFunc{h.Login}
	if limit != nil {
		login = append([]gin.HandlerFunc{limit}, login...)
	}
	rg.POST("/customer/login", login...)
	rg.GET("/customer/protected", middleware.Auth(h.cfg.JWT.Secret), h.Protected)
	rg.DELETE("/admin/delete", middleware.Auth(h.cfg.JWT.Secret), middleware.RequireAdmin(h.cfg.Admin.Email), h.AdminDelete)
}

// Login verifies the supplied Firebase ID token, upserts the customer record
// keyed by uid and returns a locally signed bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IDToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "idToken missing"})
		return
	}

	id, err := h.verifier.Verify(c.Request.Context(), req.IDToken)
	if err != nil {
		logger.Warnf("id token verification failed: %v", err)
		metrics.LoginExchanges.WithLabelValues("invalid_token").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid ID token"})
		return
	}

	user := bson.M{
		"uid":         id.UID,
		"email":       id.Email,
		"name":        id.Name,
		"lastLoginAt": time.Now().UTC(),
	}
	if _, err := h.customers.Upsert(c.Request.Context(), bson.M{"uid": id.UID}, user); err != nil {
		logger.Errorf("customer upsert failed: %v", err)
		metrics.LoginExchanges.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record login"})
		return
	}

	token, err := tokens.Generate(h.cfg.JWT.Secret, id, h.cfg.JWT.TokenTTL)
	if err != nil {
		logger.Errorf("token generation failed: %v", err)
		metrics.LoginExchanges.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	metrics.LoginExchanges.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": id})
}

// Protected is a token check endpoint: it echoes the verified claims back.
func (h *AuthHandler) Protected(c *gin.Context) {
	claims, _ := c.Get(middleware.ClaimsKey)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Protected content", "user": claims})
}

// AdminDelete confirms the caller holds an admin token. The destructive work
// itself happens through the resource routes.
func (h *AuthHandler) AdminDelete(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Admin deletion access granted"})
}
