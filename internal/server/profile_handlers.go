package server

import (
	"errors"
	"net/http"

	"github.com/MarcoPoloResearchLab/arcana/backend/internal/users"
	"github.com/MarcoPoloResearchLab/arcana/backend/internal/validation"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *httpHandler) handleGetProfile(c *gin.Context) {
	userID := c.GetString(userIDContextKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errorUnauthorized})
		return
	}
	user, found, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load profile", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": errorStorageFailed, "code": "users.get.query_failed"})
		return
	}
	if !found {
		respondNotFound(c)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *httpHandler) handleUpdateProfile(c *gin.Context) {
	userID := c.GetString(userIDContextKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errorUnauthorized})
		return
	}
	var update users.ProfileUpdate
	if !h.bindJSON(c, &update) {
		return
	}
	user, found, err := h.users.Update(c.Request.Context(), userID, update)
	var validationErr *validation.Error
	if errors.As(err, &validationErr) {
		h.respondError(c, err)
		return
	}
	if err != nil {
		h.logger.Error("failed to update profile", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": errorStorageFailed, "code": "users.update.query_failed"})
		return
	}
	if !found {
		respondNotFound(c)
		return
	}
	c.JSON(http.StatusOK, user)
}
